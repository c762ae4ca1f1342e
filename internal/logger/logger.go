package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	log  *logrus.Logger
	once sync.Once
)

// Options control the console logger.
type Options struct {
	Level  string // logrus level name, defaults to info
	Format string // "text" or "json"
	Output io.Writer
}

// Init configures the shared logger. Only the first call has any effect.
func Init(opts Options) {
	once.Do(func() {
		log = build(opts)
	})
}

func build(opts Options) *logrus.Logger {
	l := logrus.New()

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	l.SetOutput(out)

	if strings.EqualFold(opts.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	return l
}

// Get returns the shared logger, initialising it with defaults if needed.
func Get() *logrus.Logger {
	Init(Options{})
	return log
}

func Info(msg string) {
	Get().Info(msg)
}

func Error(err error, msg string) {
	Get().WithError(err).Error(msg)
}

func Fatal(err error, msg string) {
	Get().WithError(err).Fatal(msg)
}
