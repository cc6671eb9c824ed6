// Package logrotate wraps lumberjack so wavecached's optional log file
// rotates under sustained ingest/query traffic instead of growing
// unbounded, without pulling in an external log shipper.
package logrotate

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/lumberjack"
)

// Config configures the log rotation behavior.
type Config struct {
	// MaxSize is the maximum size in megabytes of the log file before it gets rotated
	MaxSize int

	// MaxAge is the maximum number of days to retain old log files
	MaxAge int

	// MaxBackups is the maximum number of old log files to retain
	MaxBackups int

	// Compress determines if the rotated log files should be compressed using gzip
	Compress bool

	// LocalTime determines if the time used for formatting the timestamps in
	// backup files is the computer's local time
	LocalTime bool
}

// Writer is a wrapper around lumberjack.Logger that implements io.Writer.
type Writer struct {
	logger *lumberjack.Logger
	mu     sync.Mutex
}

// NewWriter creates a new log writer with rotation. If filename's directory
// cannot be created, the returned Writer falls back to stderr rather than
// failing server startup over a log path.
func NewWriter(filename string, config Config) *Writer {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &Writer{logger: nil}
	}

	return &Writer{
		logger: &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    config.MaxSize,
			MaxAge:     config.MaxAge,
			MaxBackups: config.MaxBackups,
			Compress:   config.Compress,
			LocalTime:  config.LocalTime,
		},
	}
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.logger == nil {
		return os.Stderr.Write(p)
	}
	return w.logger.Write(p)
}

// Close implements io.Closer.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.logger == nil {
		return nil
	}
	return w.logger.Close()
}
