// Package logx provides the levelled logger used across pubctl.
package logx

import (
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

type LoggingLevel string

const (
	LogLevelDebug LoggingLevel = "debug"
	LogLevelInfo  LoggingLevel = "info"
	LogLevelWarn  LoggingLevel = "warn"
	LogLevelError LoggingLevel = "error"
)

// Logger defines the interface for logging.
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
	SetLevel(level LoggingLevel)
}

// DefaultLogger writes prefixed, levelled lines through the standard log package.
type DefaultLogger struct {
	logger *log.Logger
	level  LoggingLevel
	mu     sync.Mutex
}

// Ensure interface compliance
var _ Logger = (*DefaultLogger)(nil)

// NewDefaultLogger creates a new logger writing to stderr at info level.
func NewDefaultLogger() *DefaultLogger {
	return NewLogger(os.Stderr, LogLevelInfo)
}

// NewLogger creates a logger writing to w that drops messages below level.
func NewLogger(w io.Writer, level LoggingLevel) *DefaultLogger {
	return &DefaultLogger{
		logger: log.New(w, "[pubctl] ", log.LstdFlags|log.Lmsgprefix),
		level:  normalize(level),
	}
}

// ParseLevel maps a config value onto a LoggingLevel, defaulting to info.
func ParseLevel(s string) LoggingLevel {
	return normalize(LoggingLevel(strings.ToLower(strings.TrimSpace(s))))
}

func (l *DefaultLogger) Debug(msg string, args ...interface{}) { l.logf(LogLevelDebug, "DEBUG: ", msg, args...) }
func (l *DefaultLogger) Info(msg string, args ...interface{}) { l.logf(LogLevelInfo, "INFO: ", msg, args...) }
func (l *DefaultLogger) Warn(msg string, args ...interface{}) { l.logf(LogLevelWarn, "WARN: ", msg, args...) }
func (l *DefaultLogger) Error(msg string, args ...interface{}) {
	l.logf(LogLevelError, "ERROR: ", msg, args...)
}

// SetLevel updates the minimum level that is written.
func (l *DefaultLogger) SetLevel(level LoggingLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = normalize(level)
}

func (l *DefaultLogger) logf(level LoggingLevel, tag, msg string, args ...interface{}) {
	l.mu.Lock()
	min := l.level
	l.mu.Unlock()
	if levelToSeverity(level) < levelToSeverity(min) {
		return
	}
	l.logger.Printf(tag+msg, args...)
}

// NopLogger discards everything.
type NopLogger struct{}

var _ Logger = NopLogger{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{}) {}
func (NopLogger) Warn(string, ...interface{}) {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) SetLevel(LoggingLevel) {}

func normalize(level LoggingLevel) LoggingLevel {
	switch level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return level
	default:
		return LogLevelInfo
	}
}

func levelToSeverity(level LoggingLevel) int {
	switch level {
	case LogLevelDebug:
		return 0
	case LogLevelInfo:
		return 1
	case LogLevelWarn:
		return 2
	default:
		return 3
	}
}
