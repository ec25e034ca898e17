package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		input    string
		expected zapcore.Level
		wantErr  bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"", zapcore.InfoLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{" error ", zapcore.ErrorLevel, false},
		{"verbose", zapcore.InfoLevel, true},
	}
	for _, tc := range cases {
		got, err := ParseLevel(tc.input)
		if (err != nil) != tc.wantErr {
			t.Fatalf("%q: unexpected error state %v", tc.input, err)
		}
		if got != tc.expected {
			t.Fatalf("%q: expected %v, got %v", tc.input, tc.expected, got)
		}
	}
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv("DEBUG", "")
	t.Setenv("LOG_LEVEL", "")
	if got := LevelFromEnv(); got != "info" {
		t.Fatalf("expected info default, got %q", got)
	}

	t.Setenv("LOG_LEVEL", "Warn")
	if got := LevelFromEnv(); got != "warn" {
		t.Fatalf("expected warn, got %q", got)
	}

	t.Setenv("DEBUG", "true")
	if got := LevelFromEnv(); got != "debug" {
		t.Fatalf("DEBUG should win over LOG_LEVEL, got %q", got)
	}
}

func TestNew(t *testing.T) {
	for _, level := range []string{"debug", "info", "error"} {
		logger, err := New(level)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", level, err)
		}
		if logger == nil {
			t.Fatalf("%s: nil logger", level)
		}
	}
	if _, err := New("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}

	logger, _ := New("warn")
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("warn logger should drop info entries")
	}
}
