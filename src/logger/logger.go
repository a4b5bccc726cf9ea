package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"stock-screener/src/models"
)

// Log levels, lowest first.
const (
	LevelDebug = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelCritical
)

// -----------------------------------------------------------------------------

// Logger provides structured logging functionality
type Logger struct {
	name   string
	level  int
	logger *log.Logger
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance writing to stdout.
// cfg may be nil, in which case INFO is used.
func NewLogger(cfg *models.MConfig, name string) *Logger {
	return NewLoggerWithWriter(cfg, name, os.Stdout)
}

// -----------------------------------------------------------------------------

// NewLoggerWithWriter creates a Logger on an arbitrary writer (tests pass
// io.Discard or a buffer).
func NewLoggerWithWriter(cfg *models.MConfig, name string, w io.Writer) *Logger {
	level := LevelInfo
	if cfg != nil {
		level = ParseLevel(cfg.LogLevel)
	}
	return &Logger{
		name:   name,
		level:  level,
		logger: log.New(w, "", log.LstdFlags),
	}
}

// -----------------------------------------------------------------------------

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewLoggerWithWriter(nil, "discard", io.Discard)
}

// -----------------------------------------------------------------------------

// Named derives a logger for a sub-component sharing the same output and level.
func (l *Logger) Named(name string) *Logger {
	return &Logger{name: name, level: l.level, logger: l.logger}
}

// -----------------------------------------------------------------------------

// ParseLevel maps a config string to a level. Unknown values mean INFO.
func ParseLevel(s string) int {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARNING", "WARN":
		return LevelWarning
	case "ERROR":
		return LevelError
	case "CRITICAL":
		return LevelCritical
	default:
		return LevelInfo
	}
}

// -----------------------------------------------------------------------------

func (l *Logger) output(level int, tag, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] %s: %s", l.name, tag, msg)
}

// -----------------------------------------------------------------------------

// Debug logs diagnostic messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.output(LevelDebug, "DEBUG", format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	l.output(LevelWarning, "WARNING", format, args...)
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.output(LevelInfo, "INFO", format, args...)
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.output(LevelError, "ERROR", format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] CRITICAL: %s", l.name, msg)
	os.Exit(1)
}
