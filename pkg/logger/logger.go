// Package logger provides the process-wide log used by the replay engine.
// All output goes to a log file so device interaction stays readable on
// the terminal.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

var (
	mu      sync.Mutex
	std     *log.Logger
	logFile *os.File
	verbose bool
)

// Init opens (or creates) the log file at path and routes all subsequent
// log calls to it. Calling Init again closes the previous file.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	logFile = f
	std = log.New(f, "", log.Ltime|log.Lmicroseconds)
	return nil
}

// SetVerbose enables Debug output. Debug calls are dropped otherwise.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// Close closes the log file. Safe to call when Init never ran.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
		std = nil
	}
}

// Info logs an informational message.
func Info(format string, v ...interface{}) { write("[INFO] ", format, v...) }

// Warn logs a warning.
func Warn(format string, v ...interface{}) { write("[WARN] ", format, v...) }

// Error logs an error message.
func Error(format string, v ...interface{}) { write("[ERROR] ", format, v...) }

// Debug logs a debug message when verbose mode is on.
func Debug(format string, v ...interface{}) {
	mu.Lock()
	on := verbose
	mu.Unlock()
	if on {
		write("[DEBUG] ", format, v...)
	}
}

func write(prefix, format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if std != nil {
		std.Printf(prefix+format, v...)
	}
}

// Writer returns the underlying log writer for components that keep their
// own log.Logger (e.g. the device transport).
func Writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		return logFile
	}
	return io.Discard
}
