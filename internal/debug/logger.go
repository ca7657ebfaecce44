// Package debug provides the process-wide structured logger using log/slog
package debug

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	// logger is the global logger instance
	logger *slog.Logger
	// level controls the minimum level logger emits
	level = new(slog.LevelVar)
	// enabled indicates if debug logging is enabled
	enabled bool
	// mu protects the logger and enabled flag
	mu sync.RWMutex
)

func init() {
	level.Set(slog.LevelInfo)
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Options controls where and how logs are written
type Options struct {
	Output io.Writer
	// Format is "text" or "json"
	Format string
	Debug  bool
}

// Init initializes the logger writing text to os.Stderr.
// If enable is true, debug records are emitted as well.
func Init(enable bool) {
	Configure(Options{Output: os.Stderr, Debug: enable})
}

// Configure replaces the global logger
func Configure(opts Options) {
	mu.Lock()
	defer mu.Unlock()

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	logger = slog.New(handler)
	setDebugLocked(opts.Debug)
}

// SetDebug toggles debug records without replacing the handler
func SetDebug(enable bool) {
	mu.Lock()
	defer mu.Unlock()
	setDebugLocked(enable)
}

func setDebugLocked(enable bool) {
	enabled = enable
	if enable {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
}

// Enabled returns whether debug logging is enabled
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

// With returns a logger with the given attributes
func With(args ...any) *slog.Logger {
	return Logger().With(args...)
}

// Logger returns the underlying slog.Logger instance
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}
