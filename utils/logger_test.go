package utils

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevels(t *testing.T) {
	cases := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{" WARN ", zapcore.WarnLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tc := range cases {
		logger, err := NewLogger(tc.level, "production")
		if err != nil {
			t.Fatalf("level %q: unexpected error: %v", tc.level, err)
		}
		if !logger.Core().Enabled(tc.want) {
			t.Errorf("level %q: expected %s to be enabled", tc.level, tc.want)
		}
		if tc.want > zapcore.DebugLevel && logger.Core().Enabled(tc.want-1) {
			t.Errorf("level %q: expected %s to be disabled", tc.level, tc.want-1)
		}
	}
}

func TestNewLoggerDevelopment(t *testing.T) {
	logger, err := NewLogger("info", "dev")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Info("console encoder works")
}
