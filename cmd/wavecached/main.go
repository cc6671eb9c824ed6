// Command wavecached serves the ingestion, cache, query and alignment
// HTTP/JSON API over one process-local dataset registry.
package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Wavecache/api"
	"Wavecache/cache"
	"Wavecache/cli"
	"Wavecache/internal/config"
	"Wavecache/internal/logger"
	"Wavecache/internal/logrotate"
	"Wavecache/registry"
)

// Exit codes.
const (
	exitSuccess     = 0
	exitServerError = 1
)

func main() {
	flags := cli.ParseFlags()
	logger.Init(flags.Verbose, flags.Silent)
	initLogFile(flags)

	cfg := config.NewDefault()
	cfg.Port = flags.Port
	cfg.CacheDir = flags.CacheDir
	cfg.UploadDir = flags.UploadDir
	cfg.Verbose = flags.Verbose
	cfg.Silent = flags.Silent
	cfg.LoadEnv(flags.EnvFile)
	if err := cfg.Validate(); err != nil {
		logger.Fatal("config: %v", err)
	}

	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		logger.Fatal("cannot create cache directory %s: %v", cfg.CacheDir, err)
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Fatal("cannot create upload directory %s: %v", cfg.UploadDir, err)
	}

	idx, err := cache.OpenIndex(cfg.CacheDir)
	if err != nil {
		logger.Warn("cache index unavailable, falling back to filesystem checks only: %v", err)
		idx = nil
	}
	defer idx.Close()

	reg := registry.New(cfg.CacheDir, idx, cfg.LargeFileThreshold)
	server := api.NewServer(reg, cfg)

	if err := server.Start(); err != nil {
		logger.Fatal("failed to start API server: %v", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
	if err := server.Stop(time.Duration(flags.ShutdownTimeout) * time.Second); err != nil {
		logger.Error("error during shutdown: %v", err)
		os.Exit(exitServerError)
	}
	os.Exit(exitSuccess)
}

func initLogFile(flags *cli.Flags) {
	if flags.LogFile == "" {
		return
	}
	writer := logrotate.NewWriter(flags.LogFile, logrotate.Config{
		MaxSize:    flags.LogMaxSize,
		MaxAge:     flags.LogMaxAge,
		MaxBackups: flags.LogMaxBackups,
		Compress:   flags.LogCompress,
		LocalTime:  true,
	})
	logger.SetOutput(io.MultiWriter(os.Stdout, writer))
}
