// Package logs configures the process-wide structured logger. Every package
// logs through the standard logrus instance with a component field; this
// package sets its level, format, and optional rotated file output from
// configuration.
package logs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rustyeddy/riskgate/config"
)

// fileHook duplicates every entry into a rotated file with its own plain
// formatter, keeping console output colored and file output grep-friendly.
type fileHook struct {
	formatter logrus.Formatter
	writer    io.Writer
}

func (h *fileHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *fileHook) Fire(entry *logrus.Entry) error {
	b, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(b)
	return err
}

var rotator *lumberjack.Logger

// Init applies the log configuration to the standard logger. Safe to call
// once at startup; a second call replaces the previous file hook target.
func Init(cfg config.LogConfig) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.JSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	logrus.SetOutput(os.Stdout)

	if cfg.File == "" {
		return nil
	}

	dir := filepath.Dir(cfg.File)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	rotator = &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    orDefault(cfg.MaxSizeMB, 50),
		MaxBackups: orDefault(cfg.MaxBackups, 5),
		MaxAge:     orDefault(cfg.MaxAgeDays, 30),
	}
	logrus.AddHook(&fileHook{
		writer: rotator,
		formatter: &logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		},
	})
	return nil
}

// Close flushes and closes the rotated file, if one was configured.
func Close() error {
	if rotator == nil {
		return nil
	}
	return rotator.Close()
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
