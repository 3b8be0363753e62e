// Package log provides category-tagged logging for loom.
// Logging is a no-op until initialized (the CLI does so for --log-file);
// every line carries a timestamp, level, and category.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/loomkit/loom/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Category groups related log messages.
type Category string

const (
	CatReader   Category = "reader"   // document walking and registration
	CatResource Category = "resource" // resource resolution and probing
	CatRegistry Category = "registry" // definition and alias registration
	CatEnv      Category = "env"      // profiles and placeholder resolution
	CatConfig   Category = "config"   // configuration loading
	CatWatcher  Category = "watcher"  // file watcher events
)

// Logger provides structured logging.
type Logger struct {
	mu       sync.Mutex
	file     *os.File
	writer   io.Writer
	enabled  bool
	minLevel Level
	broker   *pubsub.Broker[string] // pub/sub for log lines
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Init initializes the global logger writing to the given file path.
// Returns a cleanup function that closes the log file.
func Init(path string) (func(), error) {
	var initErr error
	once.Do(func() {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			initErr = fmt.Errorf("opening log file: %w", err)
			return
		}
		defaultLogger = &Logger{
			file:    f,
			writer:  f,
			enabled: true,
			broker:  pubsub.NewBroker[string](),
		}
	})
	if initErr != nil {
		return nil, initErr
	}
	return func() {
		if defaultLogger != nil {
			defaultLogger.Close()
		}
	}, nil
}

// InitWithWriter initializes the global logger against an arbitrary writer.
// Used by tests and by commands that stream log lines to the terminal.
func InitWithWriter(w io.Writer) {
	defaultLogger = &Logger{
		writer:  w,
		enabled: true,
		broker:  pubsub.NewBroker[string](),
	}
}

// SetMinLevel sets the minimum severity that will be written.
func SetMinLevel(l Level) {
	if defaultLogger != nil {
		defaultLogger.mu.Lock()
		defaultLogger.minLevel = l
		defaultLogger.mu.Unlock()
	}
}

// Enabled reports whether the global logger is active.
func Enabled() bool {
	return defaultLogger != nil && defaultLogger.enabled
}

// Broker returns the log line broker, or nil if logging is not initialized.
func Broker() *pubsub.Broker[string] {
	if defaultLogger == nil {
		return nil
	}
	return defaultLogger.broker
}

// Close flushes and closes the logger.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.broker != nil {
		l.broker.Close()
	}
	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
	}
	l.enabled = false
}

func (l *Logger) log(level Level, cat Category, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled || level < l.minLevel || l.writer == nil {
		return
	}
	line := fmt.Sprintf("%s [%s] [%s] %s\n",
		time.Now().Format("15:04:05.000"), level, cat, fmt.Sprintf(format, args...))
	_, _ = io.WriteString(l.writer, line)
	if l.broker != nil {
		l.broker.Publish(pubsub.EventType(level.String()), line)
	}
}

// Debug logs a debug message under the given category.
func Debug(cat Category, format string, args ...any) {
	if defaultLogger != nil {
		defaultLogger.log(LevelDebug, cat, format, args...)
	}
}

// Info logs an info message under the given category.
func Info(cat Category, format string, args ...any) {
	if defaultLogger != nil {
		defaultLogger.log(LevelInfo, cat, format, args...)
	}
}

// Warn logs a warning under the given category.
func Warn(cat Category, format string, args ...any) {
	if defaultLogger != nil {
		defaultLogger.log(LevelWarn, cat, format, args...)
	}
}

// Error logs an error under the given category.
func Error(cat Category, format string, args ...any) {
	if defaultLogger != nil {
		defaultLogger.log(LevelError, cat, format, args...)
	}
}
