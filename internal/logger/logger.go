// Package logger provides the application-wide logging interface backed by slog.
package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the logging surface every layer takes as a dependency. Beyond the
// usual leveled methods it carries a toggle for per-request HTTP logging,
// which the router middleware consults on every request.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	SetLevel(level slog.Level)
	GetLevel() slog.Level
	EnableHTTPLogging()
	DisableHTTPLogging()
	IsHTTPLoggingEnabled() bool
}

// SlogLogger is the slog-backed Logger used by the server. The level can be
// changed at runtime through its LevelVar; the HTTP toggle is independent of
// the level so request logging can be switched on without going to debug.
type SlogLogger struct {
	logger      *slog.Logger
	level       *slog.LevelVar
	httpLogging atomic.Bool
}

// New returns a SlogLogger at info level with HTTP logging off
func New() *SlogLogger {
	return NewWithLevel(slog.LevelInfo)
}

// NewWithLevel returns a SlogLogger writing text records to stdout at the
// given level
func NewWithLevel(level slog.Level) *SlogLogger {
	levelVar := &slog.LevelVar{}
	levelVar.Set(level)

	sl := &SlogLogger{
		logger: slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: levelVar,
		})),
		level: levelVar,
	}
	sl.httpLogging.Store(false)
	return sl
}

// ParseLevel maps a level name (debug, info, warn/warning, error; any case)
// to its slog.Level. Unrecognized names fall back to info rather than
// erroring, so a typo in -loglevel degrades instead of refusing to start.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *SlogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

func (l *SlogLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l *SlogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l *SlogLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// SetLevel adjusts the minimum level at runtime
func (l *SlogLogger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// GetLevel reports the current minimum level
func (l *SlogLogger) GetLevel() slog.Level {
	return l.level.Level()
}

// EnableHTTPLogging turns on per-request logging in the router middleware
func (l *SlogLogger) EnableHTTPLogging() {
	l.httpLogging.Store(true)
}

// DisableHTTPLogging turns per-request logging back off
func (l *SlogLogger) DisableHTTPLogging() {
	l.httpLogging.Store(false)
}

// IsHTTPLoggingEnabled reports the HTTP logging toggle
func (l *SlogLogger) IsHTTPLoggingEnabled() bool {
	return l.httpLogging.Load()
}

// Noop is a Logger that discards all output. Used as a default in tests.
type Noop struct{}

func (Noop) Debug(msg string, args ...any) {}
func (Noop) Info(msg string, args ...any)  {}
func (Noop) Warn(msg string, args ...any)  {}
func (Noop) Error(msg string, args ...any) {}

func (Noop) SetLevel(level slog.Level)  {}
func (Noop) GetLevel() slog.Level       { return slog.LevelInfo }
func (Noop) EnableHTTPLogging()         {}
func (Noop) DisableHTTPLogging()        {}
func (Noop) IsHTTPLoggingEnabled() bool { return false }

var _ Logger = Noop{}
