package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level is the logging level.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "INFO"
	}
}

// Options configures the global logger.
type Options struct {
	Enabled bool
	Level   string
	File    string
	Console bool
	// Output replaces stdout for console logging; used by tests.
	Output io.Writer
}

type sink struct {
	level   Level
	logger  *log.Logger
	enabled bool
	closer  io.Closer
}

var (
	mu     sync.RWMutex
	global *sink
)

// Init initializes the global logger. Calling it again replaces the previous
// configuration and closes its log file.
func Init(opts Options) error {
	next := &sink{enabled: opts.Enabled}
	if opts.Enabled {
		var writers []io.Writer
		if opts.File != "" {
			dir := filepath.Dir(opts.File)
			if dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("failed to create log directory: %w", err)
				}
			}
			f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			writers = append(writers, f)
			next.closer = f
		}
		if opts.Console || len(writers) == 0 {
			out := opts.Output
			if out == nil {
				out = os.Stdout
			}
			writers = append(writers, out)
		}
		next.level = ParseLevel(opts.Level)
		next.logger = log.New(io.MultiWriter(writers...), "", 0)
	}

	mu.Lock()
	prev := global
	global = next
	mu.Unlock()

	if prev != nil && prev.closer != nil {
		prev.closer.Close()
	}
	return nil
}

// ParseLevel maps a level name to a Level, defaulting to Info.
func ParseLevel(levelStr string) Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return Debug
	case "info":
		return Info
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

func logf(level Level, component, format string, args ...interface{}) {
	mu.RLock()
	s := global
	mu.RUnlock()
	if s == nil || !s.enabled || s.level > level {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05")
	msg := fmt.Sprintf(format, args...)
	if component != "" {
		s.logger.Printf("[%s] [%s] [%s] %s", ts, level, component, msg)
		return
	}
	s.logger.Printf("[%s] [%s] %s", ts, level, msg)
}

// Debugf logs a debug message.
func Debugf(format string, args ...interface{}) { logf(Debug, "", format, args...) }

// Infof logs an info message.
func Infof(format string, args ...interface{}) { logf(Info, "", format, args...) }

// Warnf logs a warning.
func Warnf(format string, args ...interface{}) { logf(Warn, "", format, args...) }

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) { logf(Error, "", format, args...) }

// Scoped tags every message with a component name.
type Scoped struct {
	component string
}

// For returns a logger scoped to component.
func For(component string) Scoped {
	return Scoped{component: component}
}

func (s Scoped) Debugf(format string, args ...interface{}) { logf(Debug, s.component, format, args...) }
func (s Scoped) Infof(format string, args ...interface{})  { logf(Info, s.component, format, args...) }
func (s Scoped) Warnf(format string, args ...interface{})  { logf(Warn, s.component, format, args...) }
func (s Scoped) Errorf(format string, args ...interface{}) { logf(Error, s.component, format, args...) }
