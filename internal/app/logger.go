package app

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"parkride/internal/config"
)

// NewLogger builds the process logger. When cfg.File is set, output goes to
// a size-rotated file as well as stdout; the returned closer flushes it.
func NewLogger(cfg config.LogConfig) (*logrus.Logger, io.Closer) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	if cfg.File == "" {
		logger.SetOutput(os.Stdout)
		return logger, nopCloser{}
	}

	rotating := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     28,
		LocalTime:  true,
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, rotating))
	return logger, rotating
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
