// Package log provides structured logging for hopper.
// Entries carry a level, a category and key=value fields. Logging is off
// until Init is called, which the CLI does for --debug or HOPPER_DEBUG.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/zjrosen/hopper/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel maps a level name to a Level. Anything unrecognised, such as
// HOPPER_DEBUG=1, is LevelDebug.
func ParseLevel(s string) Level {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i)
		}
	}
	return LevelDebug
}

// Category groups related log messages.
type Category string

const (
	CatRegistry Category = "registry" // Instance registry mutations
	CatStore    Category = "store"    // Registry persistence (yaml, sqlite)
	CatNav      Category = "nav"      // Hop algorithm
	CatSelect   Category = "select"   // Active instance selection
	CatConfig   Category = "config"   // Configuration loading/saving
	CatWatcher  Category = "watcher"  // Registry file watcher
	CatCache    Category = "cache"    // Compiled pattern cache
	CatUI       Category = "ui"       // Chooser
	CatSession  Category = "session"  // Interactive session
)

// EnvDebug enables logging when set to a non-empty value. A level name
// (info, warn, error) also raises the minimum level.
const EnvDebug = "HOPPER_DEBUG"

// Logger writes formatted entries and republishes them to subscribers.
type Logger struct {
	mu       sync.Mutex
	file     *os.File
	out      io.Writer
	enabled  bool
	minLevel Level
	entries  *pubsub.Broker[string]
}

var (
	defaultLogger *Logger
	once          sync.Once
)

func newLogger(out io.Writer) *Logger {
	return &Logger{
		out:      out,
		enabled:  true,
		minLevel: LevelDebug,
		entries:  pubsub.NewBroker[string](),
	}
}

// Init initializes the global logger appending to path.
// Returns a cleanup function to close the log file.
func Init(path string) (func(), error) {
	var initErr error
	once.Do(func() {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //nolint:gosec // G304: path is the user-controlled debug log path
		if err != nil {
			initErr = err
			return
		}
		l := newLogger(f)
		l.file = f
		defaultLogger = l
	})
	if initErr != nil {
		return nil, initErr
	}
	if defaultLogger == nil {
		return nil, fmt.Errorf("logger initialization failed or already attempted")
	}
	l := defaultLogger
	return func() {
		if l.file != nil {
			_ = l.file.Close()
		}
	}, nil
}

// InitWriter installs a logger writing to w.
func InitWriter(w io.Writer) {
	defaultLogger = newLogger(w)
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := defaultLogger; l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if l := defaultLogger; l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	write(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	write(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	write(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	write(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	errText := "<nil>"
	if err != nil {
		errText = err.Error()
	}
	write(LevelError, cat, msg, append(fields, "error", errText)...)
}

// formatEntry renders one line:
//
//	2026-01-02T10:45:00 [ERROR] [nav] message key=value key2=value2
func formatEntry(at time.Time, level Level, cat Category, msg string, fields []any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", at.Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i < len(fields); i += 2 {
		if i+1 == len(fields) {
			fmt.Fprintf(&b, " %v=<missing>", fields[i])
			break
		}
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	b.WriteByte('\n')
	return b.String()
}

func write(level Level, cat Category, msg string, fields ...any) {
	l := defaultLogger
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled || level < l.minLevel {
		return
	}

	entry := formatEntry(time.Now(), level, cat, msg, fields)
	if l.out != nil {
		_, _ = io.WriteString(l.out, entry)
	}
	l.entries.Publish(pubsub.CreatedEvent, entry)
}

// Subscribe streams formatted log entries until ctx is cancelled.
// Returns nil when logging has not been initialized.
func Subscribe(ctx context.Context) <-chan pubsub.Event[string] {
	if defaultLogger == nil {
		return nil
	}
	return defaultLogger.entries.Subscribe(ctx)
}
