// Package logging builds the process zap logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Supported formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

var levels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// New produces a logger honoring the requested level and format.
func New(level, format string) (*zap.Logger, error) {
	cfg, err := Config(level, format)
	if err != nil {
		return nil, err
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// Config returns the zap configuration New builds from.
func Config(level, format string) (zap.Config, error) {
	lvl, ok := levels[level]
	if !ok {
		return zap.Config{}, fmt.Errorf("unsupported log level: %s", level)
	}
	cfg := zap.NewProductionConfig()
	switch format {
	case FormatJSON:
	case FormatConsole:
		cfg.Encoding = FormatConsole
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return zap.Config{}, fmt.Errorf("unsupported log format: %s", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg, nil
}
