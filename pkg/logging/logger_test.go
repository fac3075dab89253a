package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Expected default level to be Info, got %s", cfg.Level)
	}
	if cfg.Pretty != false {
		t.Error("Expected default pretty to be false")
	}
}

func TestSetup(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := Setup(Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: buf,
	})

	logger.Info().Str("query", "user_repository_list").Msg("Query loaded from cache")

	output := buf.String()
	if !strings.Contains(output, "Query loaded from cache") {
		t.Errorf("Expected output to contain the message, got %q", output)
	}
	if !strings.Contains(output, "user_repository_list") {
		t.Errorf("Expected output to contain the query field, got %q", output)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    LogLevel
		expected zerolog.Level
	}{
		{LevelDebug, zerolog.DebugLevel},
		{LevelInfo, zerolog.InfoLevel},
		{LevelWarn, zerolog.WarnLevel},
		{LevelError, zerolog.ErrorLevel},
		{"invalid", zerolog.InfoLevel}, // Should default to Info
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			result := parseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: buf,
	})

	logger := NewLogger("resource-cache")
	logger.Info().Msg("test message")

	output := buf.String()
	if !strings.Contains(output, "resource-cache") {
		t.Errorf("Expected output to contain the component, got %q", output)
	}
}

func TestLogLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{
		Level:  LevelWarn,
		Pretty: false,
		Output: buf,
	})

	logger := NewLogger("test")

	logger.Debug().Msg("debug message")
	logger.Info().Msg("info message")
	logger.Warn().Msg("warn message")
	logger.Error().Msg("error message")

	output := buf.String()

	if strings.Contains(output, "debug message") {
		t.Error("Debug message should be filtered out at Warn level")
	}
	if strings.Contains(output, "info message") {
		t.Error("Info message should be filtered out at Warn level")
	}
	if !strings.Contains(output, "warn message") {
		t.Error("Warn message should be included at Warn level")
	}
	if !strings.Contains(output, "error message") {
		t.Error("Error message should be included at Warn level")
	}
}
