package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Option настраивает логгер
type Option func(*logrus.Logger)

// WithOutput направляет логи в w вместо stdout
func WithOutput(w io.Writer) Option {
	return func(l *logrus.Logger) { l.SetOutput(w) }
}

// WithText включает текстовый формат, удобный для CLI
func WithText() Option {
	return func(l *logrus.Logger) {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func New(logLevel string, opts ...Option) *logrus.Logger {
	log := logrus.New()

	log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})

	log.SetOutput(os.Stdout)

	// Уровень логирования
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel // Уровень по умолчанию, если передан некорректный
	}
	log.SetLevel(level)

	for _, opt := range opts {
		opt(log)
	}
	return log
}
