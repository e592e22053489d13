package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"dyarize/internal/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Configure sets up logrus on stderr, teeing into a rotated file when
// logging.file is set.
func Configure(cfg *config.Config) (*logrus.Logger, error) {
	return configure(cfg, os.Stderr)
}

func configure(cfg *config.Config, stderr io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	switch strings.ToLower(cfg.Logging.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if lvl, err := logrus.ParseLevel(strings.ToLower(cfg.Logging.Level)); err == nil {
		logger.SetLevel(lvl)
	}
	if cfg.Logging.File == "" {
		logger.SetOutput(stderr)
		return logger, nil
	}
	path := os.ExpandEnv(cfg.Logging.File)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    20, // megabytes
		MaxBackups: 3,
		MaxAge:     30,
	}
	logger.SetOutput(io.MultiWriter(stderr, rotator))
	return logger, nil
}
