package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger общий логгер процесса.
var Logger = newLogger(os.Stdout)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	return l
}

// Configure выставляет уровень; пустая строка оставляет info.
func Configure(level string) error {
	if strings.TrimSpace(level) == "" {
		Logger.SetLevel(logrus.InfoLevel)
		return nil
	}
	parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return err
	}
	Logger.SetLevel(parsed)
	return nil
}

// SetOutput перенаправляет вывод, например в буфер теста.
func SetOutput(w io.Writer) {
	Logger.SetOutput(w)
}

// WithFields запись с набором полей.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Logger.WithFields(fields)
}

// WithField запись с одним полем.
func WithField(key string, value interface{}) *logrus.Entry {
	return Logger.WithField(key, value)
}

// WithError запись с полем error.
func WithError(err error) *logrus.Entry {
	return Logger.WithError(err)
}

// Info пишет сообщение уровня info.
func Info(msg string) {
	Logger.Info(msg)
}
