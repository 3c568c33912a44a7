package stepfs_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/stepfs/pkg/stepfs"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := stepfs.NewLogger(&buf, zerolog.InfoLevel)

	logger.Info().Msg("test message")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("Expected log output to contain 'test message', got: %s", output)
	}
	if !strings.HasSuffix(strings.TrimSpace(output), "lib=stepfs") {
		t.Errorf("Expected log output to end with 'lib=stepfs', got: %s", output)
	}
}

func TestNewTestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := stepfs.NewTestLogger(&buf, 0)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("Info message should be filtered at verbosity 0: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("Warn message should pass at verbosity 0: %s", buf.String())
	}
}

func TestLogLevelFromString(t *testing.T) {
	testCases := []struct {
		levelStr string
		expected zerolog.Level
		wantErr  bool
	}{
		{"trace", zerolog.TraceLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"invalid", zerolog.NoLevel, true},
	}

	for _, tc := range testCases {
		t.Run(tc.levelStr, func(t *testing.T) {
			level, err := stepfs.LogLevelFromString(tc.levelStr)
			if tc.wantErr {
				if err == nil {
					t.Errorf("Expected error for invalid level %q", tc.levelStr)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}
			if level != tc.expected {
				t.Errorf("Expected level %v, got %v", tc.expected, level)
			}
		})
	}
}
