package utils

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger provides structured, leveled logging throughout the application.
type Logger struct {
	entry *logrus.Entry
}

// NewLogger creates a new Logger writing to stdout at info level.
func NewLogger() *Logger {
	return NewLoggerWithOutput(os.Stdout)
}

// NewLoggerWithOutput creates a Logger writing to w.
func NewLoggerWithOutput(w io.Writer) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return &Logger{entry: logrus.NewEntry(l)}
}

// SetLevel parses level (debug, info, warn, error) and applies it. Unknown
// levels leave the current level in place and return the parse error.
func (l *Logger) SetLevel(level string) error {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	l.entry.Logger.SetLevel(parsed)
	return nil
}

// With returns a derived logger that attaches key=value to every line.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

func (l *Logger) Info(format string, args ...any) {
	l.entry.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.entry.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.entry.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.entry.Debugf(format, args...)
}
