// Package logging is the shared structured logger for sash.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Logger is the process logger. Packages log through the helpers below so
// Configure can swap the destination at startup.
var Logger *log.Logger

var (
	mu   sync.Mutex
	file *os.File
)

func init() {
	Logger = log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "sash",
		ReportTimestamp: true,
	})
	Logger.SetLevel(ParseLevel(os.Getenv("SASH_LOG_LEVEL")))
}

// ParseLevel maps a level name to a log level. Unknown or empty names
// default to info.
func ParseLevel(name string) log.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG", "TRACE":
		return log.DebugLevel
	case "WARN", "WARNING":
		return log.WarnLevel
	case "ERROR":
		return log.ErrorLevel
	case "FATAL":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// Configure sets the level and, when path is non-empty, redirects output to
// an append-only log file.
func Configure(level, path string) error {
	mu.Lock()
	defer mu.Unlock()

	Logger.SetLevel(ParseLevel(level))
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	if file != nil {
		file.Close()
	}
	file = f
	Logger.SetOutput(f)
	return nil
}

// SetOutput points the logger at w. Tests use it to capture output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	Logger.SetOutput(w)
}

// With returns a child logger carrying the given key/value pairs.
func With(keyvals ...interface{}) *log.Logger {
	return Logger.With(keyvals...)
}

func Debug(msg interface{}, keyvals ...interface{}) {
	Logger.Debug(msg, keyvals...)
}

func Info(msg interface{}, keyvals ...interface{}) {
	Logger.Info(msg, keyvals...)
}

func Warn(msg interface{}, keyvals ...interface{}) {
	Logger.Warn(msg, keyvals...)
}

func Error(msg interface{}, keyvals ...interface{}) {
	Logger.Error(msg, keyvals...)
}

func Debugf(format string, args ...interface{}) {
	Logger.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	Logger.Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	Logger.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	Logger.Errorf(format, args...)
}
