// Package config loads and validates Wavecache's runtime configuration,
// following the defaults-struct-plus-Validate pattern used throughout the
// pack, with environment overrides loaded via godotenv.
package config

import (
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"

	"Wavecache/internal/logger"
)

// Config holds every tunable the server needs at startup.
type Config struct {
	Port           int    // HTTP listen port
	CacheDir       string // root of the columnar cache
	UploadDir      string // root where uploaded CSVs are spooled
	MaxUploadBytes int64  // upload size cap, default 1 GiB
	UploadChunk    int    // spool chunk size, default 1 MiB

	LargeFileThreshold  int64 // bytes; at/above this, multi-channel files are cache-backed
	DefaultTargetPoints int   // default downsample target when a request omits one
	Workers             int   // concurrency hint; cache materialization runs on one goroutine and does not read it

	Verbose bool
	Silent  bool
}

// NewDefault returns a Config populated with conservative production defaults.
func NewDefault() *Config {
	return &Config{
		Port:                8080,
		CacheDir:            "./data/cache",
		UploadDir:           "./data/uploads",
		MaxUploadBytes:      1 << 30, // 1 GiB
		UploadChunk:         1 << 20, // 1 MiB
		LargeFileThreshold:  50 * 1024 * 1024,
		DefaultTargetPoints: 5000,
		Workers:             runtime.NumCPU(),
	}
}

// LoadEnv applies ".env" overrides, if present, on top of c. A missing
// .env file is not an error; godotenv.Load simply has nothing to apply.
func (c *Config) LoadEnv(path string) {
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("config: loading %s: %v", path, err)
	}

	if v := os.Getenv("WAVECACHE_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Port = n
		}
	}
	if v := os.Getenv("WAVECACHE_CACHE_DIR"); v != "" {
		c.CacheDir = v
	}
	if v := os.Getenv("WAVECACHE_UPLOAD_DIR"); v != "" {
		c.UploadDir = v
	}
	if v := os.Getenv("WAVECACHE_LARGE_FILE_THRESHOLD"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.LargeFileThreshold = n
		}
	}
	if v := os.Getenv("WAVECACHE_VERBOSE"); v != "" {
		c.Verbose = v == "1" || v == "true"
	}
	if v := os.Getenv("WAVECACHE_SILENT"); v != "" {
		c.Silent = v == "1" || v == "true"
	}
}

// Validate clamps out-of-range fields to their defaults.
func (c *Config) Validate() error {
	d := NewDefault()

	if c.Port <= 0 || c.Port > 65535 {
		c.Port = d.Port
	}
	if c.CacheDir == "" {
		c.CacheDir = d.CacheDir
	}
	if c.UploadDir == "" {
		c.UploadDir = d.UploadDir
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = d.MaxUploadBytes
	}
	if c.UploadChunk <= 0 {
		c.UploadChunk = d.UploadChunk
	}
	if c.LargeFileThreshold <= 0 {
		c.LargeFileThreshold = d.LargeFileThreshold
	}
	if c.DefaultTargetPoints <= 0 {
		c.DefaultTargetPoints = d.DefaultTargetPoints
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	return nil
}
