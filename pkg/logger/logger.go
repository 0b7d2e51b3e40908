package logger

import (
	"io"
	"os"
	"path/filepath"

	"sikseb/pkg/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Logger = logrus.New()

// Initialize configures the package logger from cfg.Log.
func Initialize(cfg *config.Config) error {
	l, err := New(cfg.Log)
	if err != nil {
		return err
	}
	Logger = l
	return nil
}

// New builds a standalone logger. Output goes to stderr so stdout stays
// free for command output; with FilePath set it is mirrored to a rotated file.
func New(cfg config.LogConfig) (*logrus.Logger, error) {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	l.SetOutput(os.Stderr)
	if cfg.FilePath != "" {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, err
		}

		rotateLogger := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		l.SetOutput(io.MultiWriter(os.Stderr, rotateLogger))
	}

	return l, nil
}

func GetLogger() *logrus.Logger {
	return Logger
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
