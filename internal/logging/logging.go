package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"cleanstore/internal/config"
)

// New creates the run logger. With a log file configured, output goes to a
// size-rotated file; otherwise it is discarded so the console stays owned by
// the reporter. The returned close function flushes and releases the file.
func New(cfg *config.Config) (*log.Logger, func() error) {
	if cfg == nil || cfg.Logging.File == "" {
		return NewWithWriter(io.Discard), func() error { return nil }
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0o755); err != nil {
		log.Printf("failed to ensure log directory for %s: %v", cfg.Logging.File, err)
		return NewWithWriter(io.Discard), func() error { return nil }
	}

	w := &lumberjack.Logger{
		Filename:   cfg.Logging.File,
		MaxSize:    cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	}
	return NewWithWriter(w), w.Close
}

// NewWithWriter creates a logger with the standard flags writing to w
func NewWithWriter(w io.Writer) *log.Logger {
	return log.New(w, "", log.LstdFlags|log.Lmicroseconds)
}

// Leveled is the key/value logging surface used by the engine packages.
type Leveled interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// stdLogger adapts *log.Logger to Leveled
type stdLogger struct {
	*log.Logger
}

// Wrap returns a Leveled logger writing through l. A nil l uses log.Default().
func Wrap(l *log.Logger) Leveled {
	if l == nil {
		l = log.Default()
	}
	return &stdLogger{Logger: l}
}

func (l *stdLogger) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *stdLogger) Warn(msg string, args ...interface{}) {
	l.logWithLevel("WARN", msg, args...)
}

func (l *stdLogger) Error(msg string, args ...interface{}) {
	l.logWithLevel("ERROR", msg, args...)
}

func (l *stdLogger) Debug(msg string, args ...interface{}) {
	l.logWithLevel("DEBUG", msg, args...)
}

func (l *stdLogger) logWithLevel(level, msg string, args ...interface{}) {
	// key-value pairs follow the message
	var parts []interface{}
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)
	parts = append(parts, args...)
	l.Logger.Println(parts...)
}
