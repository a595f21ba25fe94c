// Package logger wraps logrus with the settings spinup exposes.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus with component and instance helpers.
type Logger struct {
	*logrus.Logger
}

// Fields represents structured logging fields.
type Fields map[string]interface{}

var defaultLogger *Logger

// Init configures the default logger. Level is any logrus level name and
// format is "text" or "json". Output defaults to stderr so that stdout
// carries only the run summary.
func Init(level, format string, out io.Writer) error {
	l, err := New(level, format, out)
	if err != nil {
		return err
	}
	defaultLogger = l
	return nil
}

// New builds a standalone logger with the given settings.
func New(level, format string, out io.Writer) (*Logger, error) {
	lg := logrus.New()

	if out == nil {
		out = os.Stderr
	}
	lg.SetOutput(out)

	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	lg.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", "text":
		lg.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.TimeOnly,
		})
	case "json":
		lg.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	default:
		return nil, fmt.Errorf("invalid log format %q (valid: text, json)", format)
	}

	return &Logger{Logger: lg}, nil
}

// GetDefault returns the default logger instance.
func GetDefault() *Logger {
	if defaultLogger == nil {
		lg := logrus.New()
		lg.SetOutput(os.Stderr)
		lg.SetLevel(logrus.InfoLevel)
		defaultLogger = &Logger{Logger: lg}
	}
	return defaultLogger
}

// WithFields creates a new logger entry with structured fields.
func (l *Logger) WithFields(fields Fields) *logrus.Entry {
	return l.Logger.WithFields(logrus.Fields(fields))
}

// WithComponent tags entries with the component that produced them.
func (l *Logger) WithComponent(component string) *logrus.Entry {
	return l.Logger.WithField("component", component)
}

// WithInstance tags entries with the instance name and run ID.
func (l *Logger) WithInstance(name, runID string) *logrus.Entry {
	return l.Logger.WithFields(logrus.Fields{
		"instance": name,
		"run":      runID,
	})
}

// WithComponent tags a default-logger entry with a component name.
func WithComponent(component string) *logrus.Entry {
	return GetDefault().WithComponent(component)
}

// WithFields creates a default-logger entry with structured fields.
func WithFields(fields Fields) *logrus.Entry {
	return GetDefault().WithFields(fields)
}
