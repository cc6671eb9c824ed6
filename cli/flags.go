// Package cli parses the command-line flags for the wavecached server
// binary.
package cli

import (
	"flag"
)

// Flags holds the command-line configuration for wavecached.
type Flags struct {
	Port      int
	CacheDir  string
	UploadDir string
	EnvFile   string

	LogFile       string
	LogMaxSize    int
	LogMaxAge     int
	LogMaxBackups int
	LogCompress   bool

	ShutdownTimeout int

	Verbose bool
	Silent  bool
}

// ParseFlags parses os.Args and returns the resulting Flags.
func ParseFlags() *Flags {
	f := &Flags{}

	flag.IntVar(&f.Port, "port", 8080, "Port to use for the API server")
	flag.StringVar(&f.CacheDir, "cache-dir", "./data/cache", "Directory for the columnar cache")
	flag.StringVar(&f.UploadDir, "upload-dir", "./data/uploads", "Directory for spooled uploads")
	flag.StringVar(&f.EnvFile, "env-file", ".env", "Path to an optional .env file of config overrides")

	flag.StringVar(&f.LogFile, "log-file", "", "Path to log file (if empty, logs to stdout only)")
	flag.IntVar(&f.LogMaxSize, "log-max-size", 100, "Maximum size of log file in megabytes before rotation")
	flag.IntVar(&f.LogMaxAge, "log-max-age", 7, "Maximum number of days to retain old log files")
	flag.IntVar(&f.LogMaxBackups, "log-max-backups", 5, "Maximum number of old log files to retain")
	flag.BoolVar(&f.LogCompress, "log-compress", true, "Compress rotated log files")

	flag.IntVar(&f.ShutdownTimeout, "shutdown-timeout", 15, "Timeout in seconds for graceful shutdown")

	flag.BoolVar(&f.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&f.Silent, "silent", false, "Disable all console output except errors")

	flag.Parse()
	return f
}
