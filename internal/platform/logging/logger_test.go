package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestConfigLevelsAndFormats(t *testing.T) {
	cases := []struct {
		level    string
		format   string
		want     zapcore.Level
		encoding string
	}{
		{"debug", FormatJSON, zapcore.DebugLevel, "json"},
		{"info", FormatConsole, zapcore.InfoLevel, "console"},
		{"warn", FormatJSON, zapcore.WarnLevel, "json"},
		{"error", FormatConsole, zapcore.ErrorLevel, "console"},
	}
	for _, tc := range cases {
		cfg, err := Config(tc.level, tc.format)
		if err != nil {
			t.Fatalf("%s/%s: %v", tc.level, tc.format, err)
		}
		if cfg.Level.Level() != tc.want || cfg.Encoding != tc.encoding {
			t.Fatalf("%s/%s: got level %s encoding %s", tc.level, tc.format, cfg.Level.Level(), cfg.Encoding)
		}
	}
}

func TestNewRejectsUnknownValues(t *testing.T) {
	if _, err := New("trace", FormatJSON); err == nil {
		t.Fatalf("expected unsupported level error")
	}
	if _, err := New("info", "xml"); err == nil {
		t.Fatalf("expected unsupported format error")
	}
	logger, err := New("debug", FormatJSON)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug logging enabled")
	}
}
