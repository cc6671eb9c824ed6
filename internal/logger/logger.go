// Package logger is the process-wide leveled logger. Output goes to stdout
// by default; cmd/wavecached redirects it through the rotating file writer
// when a log file is configured.
package logger

import (
	"io"
	"log"
	"os"
)

var (
	defaultLogger *log.Logger

	verbose bool
	silent  bool
)

func init() {
	// A usable default so packages that log during package-level tests
	// (which never call Init) don't panic on a nil logger.
	defaultLogger = log.New(os.Stdout, "", log.LstdFlags)
}

// Init applies the verbose/silent flags and resets output to stdout.
// cmd/wavecached calls it once at startup before any other package logs.
func Init(verboseMode bool, silentMode bool) {
	verbose = verboseMode
	silent = silentMode

	defaultLogger = log.New(os.Stdout, "", log.LstdFlags)
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags)
}

// SetOutput redirects both this logger and the standard log package, used
// to tee server logs into the rotating log file.
func SetOutput(w io.Writer) {
	defaultLogger.SetOutput(w)
	log.SetOutput(w)
}

// Info logs an informational message unless silent mode is on.
func Info(format string, v ...interface{}) {
	if !silent {
		defaultLogger.Printf("[INFO] "+format, v...)
	}
}

// Debug logs a debug message, only in verbose mode.
func Debug(format string, v ...interface{}) {
	if verbose && !silent {
		defaultLogger.Printf("[DEBUG] "+format, v...)
	}
}

// Warn logs a warning unless silent mode is on.
func Warn(format string, v ...interface{}) {
	if !silent {
		defaultLogger.Printf("[WARN] "+format, v...)
	}
}

// Error logs an error message. Errors are emitted even in silent mode.
func Error(format string, v ...interface{}) {
	defaultLogger.Printf("[ERROR] "+format, v...)
}

// Fatal logs a fatal error message and exits the process.
func Fatal(format string, v ...interface{}) {
	defaultLogger.Fatalf("[FATAL] "+format, v...)
}
