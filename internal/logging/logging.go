// Package logging builds the shared zap loggers. The TUI owns stdout, so
// its logger writes to a rotated file only; the serve command adds a
// console core on top of the same file core.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/unneeks/stewardagent/internal/config"
)

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func fileCore(cfg *config.Config) (zapcore.Core, error) {
	path, err := cfg.LogPath()
	if err != nil {
		return nil, fmt.Errorf("resolve log path: %w", err)
	}
	level, err := zapcore.ParseLevel(cfg.Logs.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %s: %w", cfg.Logs.Level, err)
	}
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.Logs.MaxSizeMB,
		MaxBackups: cfg.Logs.MaxBackups,
		MaxAge:     cfg.Logs.MaxAgeDays,
		Compress:   true,
	}
	return zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.AddSync(rotator),
		level,
	), nil
}

// NewFileLogger returns a logger that writes only to the rotated log
// file. The dashboard uses this so log lines never corrupt the terminal.
func NewFileLogger(cfg *config.Config) (*zap.Logger, error) {
	core, err := fileCore(cfg)
	if err != nil {
		return nil, err
	}
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// NewServerLogger tees to the rotated file and stderr.
func NewServerLogger(cfg *config.Config) (*zap.Logger, error) {
	fc, err := fileCore(cfg)
	if err != nil {
		return nil, err
	}
	level, err := zapcore.ParseLevel(cfg.Logs.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %s: %w", cfg.Logs.Level, err)
	}
	console := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.Lock(os.Stderr),
		level,
	)
	core := zapcore.NewTee(fc, console)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}
