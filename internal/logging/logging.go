// Package logging provides leveled, structured logging for the coordination
// core. It wraps charmbracelet/log with a process-wide default logger so
// packages can log without threading a logger through every constructor.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"
)

var (
	mu  sync.RWMutex
	std = clog.NewWithOptions(os.Stderr, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           clog.WarnLevel,
	})
)

// SetLevel sets the minimum level for the default logger. Accepted values are
// "debug", "info", "warn" and "error"; anything else falls back to warn.
func SetLevel(level string) {
	mu.Lock()
	defer mu.Unlock()
	std.SetLevel(parseLevel(level))
}

// SetOutput redirects the default logger, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	std.SetOutput(w)
}

func parseLevel(level string) clog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return clog.DebugLevel
	case "info":
		return clog.InfoLevel
	case "warn", "warning":
		return clog.WarnLevel
	case "error":
		return clog.ErrorLevel
	default:
		return clog.WarnLevel
	}
}

// With returns a logger carrying additional key-value context.
func With(keyvals ...any) *clog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return std.With(keyvals...)
}

// Debug logs at debug level with optional key-value pairs.
func Debug(msg string, keyvals ...any) {
	mu.RLock()
	defer mu.RUnlock()
	std.Debug(msg, keyvals...)
}

// Info logs at info level with optional key-value pairs.
func Info(msg string, keyvals ...any) {
	mu.RLock()
	defer mu.RUnlock()
	std.Info(msg, keyvals...)
}

// Warn logs at warn level with optional key-value pairs.
func Warn(msg string, keyvals ...any) {
	mu.RLock()
	defer mu.RUnlock()
	std.Warn(msg, keyvals...)
}

// Error logs at error level with optional key-value pairs.
func Error(msg string, keyvals ...any) {
	mu.RLock()
	defer mu.RUnlock()
	std.Error(msg, keyvals...)
}
