// Package logger provides a simple logging interface for sysmonify components.
// It allows samplers, hubs, and collectors to log debug, info, warn, and error
// messages without being coupled to a specific logging implementation.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Logger defines the interface for logging operations.
// All methods accept a format string and arguments, similar to fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// envLogger implements Logger on top of a dedicated log.Logger so its output
// never mixes with the process-global logger. Debug messages are only printed
// when SYSMONIFY_DEBUG is set at construction time.
type envLogger struct {
	out    *log.Logger
	prefix string
	debug  bool
}

// NewEnvLogger creates a logger that respects the SYSMONIFY_DEBUG environment
// variable. The prefix is prepended to all log messages (e.g., "[sampler]" or
// "[hub]"). Lines go to stderr with microsecond timestamps; stdout stays
// reserved for command output such as snapshot JSON.
func NewEnvLogger(prefix string) Logger {
	return newEnvLogger(os.Stderr, prefix)
}

func newEnvLogger(w io.Writer, prefix string) *envLogger {
	return &envLogger{
		out:    log.New(w, "", log.LstdFlags|log.Lmicroseconds),
		prefix: prefix,
		debug:  os.Getenv("SYSMONIFY_DEBUG") != "",
	}
}

func (l *envLogger) Debug(format string, args ...interface{}) {
	if l.debug {
		l.out.Printf(l.prefix+" "+format, args...)
	}
}

func (l *envLogger) Info(format string, args ...interface{}) {
	l.out.Printf(l.prefix+" "+format, args...)
}

func (l *envLogger) Warn(format string, args ...interface{}) {
	l.out.Printf(l.prefix+" WARN: "+format, args...)
}

func (l *envLogger) Error(format string, args ...interface{}) {
	l.out.Printf(l.prefix+" ERROR: "+format, args...)
}

// noopLogger implements Logger but discards all messages.
// Useful for testing or when logging is not desired.
type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(format string, args ...interface{}) {}
func (l *noopLogger) Info(format string, args ...interface{})  {}
func (l *noopLogger) Warn(format string, args ...interface{})  {}
func (l *noopLogger) Error(format string, args ...interface{}) {}

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures log messages for testing. Logging is safe from
// multiple goroutines; read Messages directly only after the goroutines
// doing the logging have stopped.
type BufferLogger struct {
	mu       sync.Mutex
	Messages []LogMessage
}

// NewBufferLogger creates a logger that captures messages for inspection.
// Useful for testing that code logs expected messages.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{
		Messages: make([]LogMessage, 0),
	}
}

func (l *BufferLogger) Debug(format string, args ...interface{}) {
	l.capture("debug", format, args...)
}

func (l *BufferLogger) Info(format string, args ...interface{}) {
	l.capture("info", format, args...)
}

func (l *BufferLogger) Warn(format string, args ...interface{}) {
	l.capture("warn", format, args...)
}

func (l *BufferLogger) Error(format string, args ...interface{}) {
	l.capture("error", format, args...)
}

func (l *BufferLogger) capture(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, LogMessage{Level: level, Message: fmt.Sprintf(format, args...)})
}

// HasLevel returns true if any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.Messages {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = l.Messages[:0]
}

// defaultLogger is the package-level default logger.
var defaultLogger = NewEnvLogger("")

// Default returns the default logger for the package.
// This is an environment-based logger with no prefix.
func Default() Logger {
	return defaultLogger
}

// SetDefault sets the default logger for the package.
// This is useful for testing or to configure logging globally.
func SetDefault(l Logger) {
	defaultLogger = l
}
