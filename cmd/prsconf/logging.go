package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/vanderheijden86/prsconf/pkg/config"
)

// newLogger returns a JSON logger appending to the configured file. The
// terminal belongs to the UI, so nothing is logged to stderr unless the file
// is set to "-".
func newLogger(cfg config.LogConfig) (*logrus.Logger, func(), error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log.level: %w", err)
	}

	log := logrus.New()
	log.SetLevel(level)
	log.SetFormatter(&logrus.JSONFormatter{})

	switch cfg.File {
	case "":
		log.SetOutput(io.Discard)
		return log, func() {}, nil
	case "-":
		log.SetOutput(os.Stderr)
		return log, func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	log.SetOutput(f)
	return log, func() { f.Close() }, nil
}
