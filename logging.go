package layers

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger records non-fatal conditions surfaced by the layer model, such as
// duplicate channel additions or preview graphs that need rebuilding.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Warnf(string, ...any)  {}

// NoopLogger returns a logger that discards everything.
func NoopLogger() Logger {
	return noopLogger{}
}

type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger builds the default Logger backed by logrus. The level is
// read from the LOG_LEVEL environment variable, defaulting to warn.
func NewLogrusLogger() Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{})
	logger.SetLevel(logrus.WarnLevel)
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		if parsed, err := logrus.ParseLevel(level); err == nil {
			logger.SetLevel(parsed)
		}
	}
	return &logrusLogger{entry: logrus.NewEntry(logger).WithField("component", "layers")}
}

// WrapLogrus adapts an existing logrus entry to the Logger interface.
func WrapLogrus(entry *logrus.Entry) Logger {
	if entry == nil {
		return noopLogger{}
	}
	return &logrusLogger{entry: entry}
}

func (l *logrusLogger) Debugf(format string, args ...any) {
	l.entry.Debugf(format, args...)
}

func (l *logrusLogger) Warnf(format string, args ...any) {
	l.entry.Warnf(format, args...)
}
