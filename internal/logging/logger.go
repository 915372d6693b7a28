package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

var (
	// Logger is the process-wide logger. It discards output until Init is called.
	Logger = log.NewWithOptions(io.Discard, log.Options{Level: log.InfoLevel})

	logFile *os.File
)

// Init points the logger at path. The terminal belongs to the TUI, so logs
// only ever go to a file; an empty path keeps logging disabled.
func Init(path, level string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	lvl := log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			file.Close()
			return fmt.Errorf("parse log level %q: %w", level, err)
		}
		lvl = parsed
	}

	logFile = file
	Logger = log.NewWithOptions(file, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           lvl,
	})
	Logger.Info("souljournal started")
	return nil
}

// Close flushes the shutdown line and releases the log file.
func Close() {
	if logFile == nil {
		return
	}
	Logger.Info("souljournal shutting down")
	logFile.Close()
	logFile = nil
	Logger = log.NewWithOptions(io.Discard, log.Options{Level: log.InfoLevel})
}

// Debug logs a debug message
func Debug(msg string, keyvals ...interface{}) {
	Logger.Debug(msg, keyvals...)
}

// Info logs an info message
func Info(msg string, keyvals ...interface{}) {
	Logger.Info(msg, keyvals...)
}

// Warn logs a warning message
func Warn(msg string, keyvals ...interface{}) {
	Logger.Warn(msg, keyvals...)
}

// Error logs an error message
func Error(msg string, keyvals ...interface{}) {
	Logger.Error(msg, keyvals...)
}
