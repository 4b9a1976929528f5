package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger is a wrapper around logrus.Logger
type Logger struct {
	*logrus.Logger
}

// New creates a logger writing to stdout at info level
func New() *Logger {
	return NewWithOutput(os.Stdout)
}

// NewWithOutput creates a logger writing to w
func NewWithOutput(w io.Writer) *Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	log.SetLevel(logrus.InfoLevel)

	return &Logger{Logger: log}
}

// Discard creates a logger that drops everything, for tests
func Discard() *Logger {
	return NewWithOutput(io.Discard)
}

// SetLevel sets the logging level; unknown levels fall back to info
func (l *Logger) SetLevel(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		l.Logger.SetLevel(logrus.DebugLevel)
	case "info":
		l.Logger.SetLevel(logrus.InfoLevel)
	case "warn", "warning":
		l.Logger.SetLevel(logrus.WarnLevel)
	case "error":
		l.Logger.SetLevel(logrus.ErrorLevel)
	default:
		l.Logger.SetLevel(logrus.InfoLevel)
	}
}

// ValidLevel reports whether SetLevel recognises level
func ValidLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// WithComponent returns an entry tagged with the emitting component
func (l *Logger) WithComponent(name string) *logrus.Entry {
	return l.Logger.WithField("component", name)
}
