// Package output provides terminal output utilities for lbake.
package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// logger is the package-level logger used by the helper functions.
var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
})

// LogConfig controls logger setup.
type LogConfig struct {
	// Verbose enables debug level, caller reporting and forces timestamps on.
	Verbose bool

	// Timestamps toggles timestamps when not verbose. Nil means on.
	Timestamps *bool
}

// SetupLogging replaces the package logger according to cfg.
func SetupLogging(cfg LogConfig) {
	logger = newLogger(os.Stderr, cfg)
}

func newLogger(w io.Writer, cfg LogConfig) *log.Logger {
	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}
	timestamps := cfg.Verbose || cfg.Timestamps == nil || *cfg.Timestamps

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: timestamps,
		ReportCaller:    cfg.Verbose,
		TimeFormat:      "15:04:05",
	})
}

// Logger returns the configured logger.
func Logger() *log.Logger {
	return logger
}

// RenderSetLogger returns a child logger whose messages are prefixed with the
// render set name.
func RenderSetLogger(name string) *log.Logger {
	return logger.WithPrefix(fmt.Sprintf("set:%s", name))
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

// Debug logs a debug message.
func Debug(msg string, keyvals ...interface{}) {
	logger.Debug(msg, keyvals...)
}

// Info logs an info message.
func Info(msg string, keyvals ...interface{}) {
	logger.Info(msg, keyvals...)
}

// Warn logs a warning message.
func Warn(msg string, keyvals ...interface{}) {
	logger.Warn(msg, keyvals...)
}

// Error logs an error message.
func Error(msg string, keyvals ...interface{}) {
	logger.Error(msg, keyvals...)
}

// Println prints a message to stdout with a newline.
func Println(msg string) {
	os.Stdout.WriteString(msg + "\n")
}
