package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	logger := NewLogger()
	if logger == nil {
		t.Fatal("NewLogger() returned nil")
	}
	if logger.Logger == nil {
		t.Fatal("Logger.Logger is nil")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected slog.Level
	}{
		{"debug level", "DEBUG", slog.LevelDebug},
		{"info level", "INFO", slog.LevelInfo},
		{"warn level", "WARN", slog.LevelWarn},
		{"warning level", "WARNING", slog.LevelWarn},
		{"error level", "ERROR", slog.LevelError},
		{"lowercase debug", "debug", slog.LevelDebug},
		{"padded", " warn ", slog.LevelWarn},
		{"invalid level", "INVALID", slog.LevelInfo},
		{"empty value", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if level := ParseLevel(tt.value); level != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.value, level, tt.expected)
			}
		})
	}
}

func TestLevelAndFormatFromEnv(t *testing.T) {
	origLevel, hadLevel := os.LookupEnv(EnvLogLevel)
	origFormat, hadFormat := os.LookupEnv(EnvLogFormat)
	defer func() {
		if hadLevel {
			os.Setenv(EnvLogLevel, origLevel)
		} else {
			os.Unsetenv(EnvLogLevel)
		}
		if hadFormat {
			os.Setenv(EnvLogFormat, origFormat)
		} else {
			os.Unsetenv(EnvLogFormat)
		}
	}()

	os.Setenv(EnvLogLevel, "debug")
	os.Setenv(EnvLogFormat, "TEXT")
	if got := getLogLevelFromEnv(); got != slog.LevelDebug {
		t.Errorf("getLogLevelFromEnv() = %v, want DEBUG", got)
	}
	if got := getFormatFromEnv(); got != FormatText {
		t.Errorf("getFormatFromEnv() = %v, want text", got)
	}

	os.Setenv(EnvLogFormat, "yaml")
	if got := getFormatFromEnv(); got != FormatJSON {
		t.Errorf("getFormatFromEnv() = %v, want json for unknown values", got)
	}
}

func TestCorrelationID(t *testing.T) {
	t.Run("generate correlation ID", func(t *testing.T) {
		id1 := GenerateCorrelationID()
		id2 := GenerateCorrelationID()

		if id1 == "" || id2 == "" {
			t.Error("GenerateCorrelationID() returned empty string")
		}
		if id1 == id2 {
			t.Error("GenerateCorrelationID() returned duplicate IDs")
		}
		if len(id1) != 36 {
			t.Errorf("GenerateCorrelationID() returned wrong length: %d", len(id1))
		}
	})

	t.Run("context with correlation ID", func(t *testing.T) {
		ctx := WithCorrelationID(context.Background(), "test-correlation-id")
		if got := GetCorrelationID(ctx); got != "test-correlation-id" {
			t.Errorf("GetCorrelationID() = %q, want %q", got, "test-correlation-id")
		}
	})

	t.Run("context without correlation ID", func(t *testing.T) {
		if id := GetCorrelationID(context.Background()); id != "" {
			t.Errorf("GetCorrelationID() = %q, want empty string", id)
		}
	})

	t.Run("auto-generate correlation ID", func(t *testing.T) {
		ctx := WithCorrelationID(context.Background(), "")
		if id := GetCorrelationID(ctx); len(id) != 36 {
			t.Errorf("auto-generated correlation ID = %q", id)
		}
	})
}

func TestSanitizeAttributes(t *testing.T) {
	tests := []struct {
		name     string
		attr     slog.Attr
		expected string
	}{
		{"password field", slog.String("password", "secret123"), "[REDACTED]"},
		{"token field", slog.String("auth_token", "bearer-token"), "[REDACTED]"},
		{"secret field", slog.String("api_secret", "my-secret"), "[REDACTED]"},
		{"normal field", slog.String("shape", "circle"), "circle"},
		{"case insensitive", slog.String("PASSWORD", "secret123"), "[REDACTED]"},
		{"partial match authorization", slog.String("authorization_header", "Bearer token"), "[REDACTED]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sanitizeAttributes(tt.attr)
			if result.Value.String() != tt.expected {
				t.Errorf("sanitizeAttributes() = %q, want %q", result.Value.String(), tt.expected)
			}
		})
	}
}

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return New(Options{Level: slog.LevelDebug, Format: FormatJSON, Writer: buf})
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log JSON: %v (%q)", err, buf.String())
	}
	return entry
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)
	ctx := WithCorrelationID(context.Background(), "test-id-123")

	t.Run("info logging", func(t *testing.T) {
		buf.Reset()
		logger.Info(ctx, "test info message", "shapes", 3)

		entry := decode(t, &buf)
		if entry["msg"] != "test info message" {
			t.Errorf("msg = %v", entry["msg"])
		}
		if entry["level"] != "INFO" {
			t.Errorf("level = %v", entry["level"])
		}
		if entry["correlation_id"] != "test-id-123" {
			t.Errorf("correlation_id = %v", entry["correlation_id"])
		}
		if entry["shapes"] != float64(3) {
			t.Errorf("shapes = %v", entry["shapes"])
		}
	})

	t.Run("error logging", func(t *testing.T) {
		buf.Reset()
		logger.Error(ctx, "test error message", errors.New("test error"), "context", "test")

		entry := decode(t, &buf)
		if entry["level"] != "ERROR" {
			t.Errorf("level = %v", entry["level"])
		}
		if entry["error"] != "test error" {
			t.Errorf("error = %v", entry["error"])
		}
	})

	t.Run("debug logging", func(t *testing.T) {
		buf.Reset()
		logger.Debug(ctx, "debug message")
		if entry := decode(t, &buf); entry["level"] != "DEBUG" {
			t.Errorf("level = %v", entry["level"])
		}
	})

	t.Run("warn logging", func(t *testing.T) {
		buf.Reset()
		logger.Warn(ctx, "warning message")
		if entry := decode(t, &buf); entry["level"] != "WARN" {
			t.Errorf("level = %v", entry["level"])
		}
	})

	t.Run("redaction applies to records and With", func(t *testing.T) {
		buf.Reset()
		logger.With("api_key", "abc").Info(ctx, "configured", "password", "hunter2")

		entry := decode(t, &buf)
		if entry["api_key"] != "[REDACTED]" || entry["password"] != "[REDACTED]" {
			t.Errorf("sensitive values leaked: %v", entry)
		}
	})
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: slog.LevelInfo, Format: FormatText, Writer: &buf})

	logger.Info(context.Background(), "engine created", "shapes", 12, "token", "xyz")
	logger.Debug(context.Background(), "hidden")

	out := buf.String()
	if !strings.Contains(out, "engine created") {
		t.Errorf("text output missing message: %q", out)
	}
	if strings.Contains(out, "xyz") {
		t.Errorf("text output leaked a sensitive value: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record written at info level: %q", out)
	}
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	logger.Error(context.Background(), "ignored", errors.New("boom"))
}

func TestWrapError(t *testing.T) {
	t.Run("wrap nil error", func(t *testing.T) {
		if result := WrapError(nil, "context"); result != nil {
			t.Errorf("WrapError(nil) should return nil, got %v", result)
		}
	})

	t.Run("wrap error with context", func(t *testing.T) {
		originalErr := errors.New("original error")
		wrapped := WrapError(originalErr, "additional context")

		if wrapped.Error() != "additional context: original error" {
			t.Errorf("WrapError() = %q", wrapped.Error())
		}
		if !errors.Is(wrapped, originalErr) {
			t.Error("WrapError() should preserve original error")
		}
	})

	t.Run("wrap error with formatted context", func(t *testing.T) {
		wrapped := WrapError(errors.New("original error"), "context with %s and %d", "string", 42)
		if wrapped.Error() != "context with string and 42: original error" {
			t.Errorf("WrapError() = %q", wrapped.Error())
		}
	})
}

func TestLogWithoutCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.Info(context.Background(), "test message")
	if strings.Contains(buf.String(), "correlation_id") {
		t.Error("Log should not contain correlation_id when none is set in context")
	}
}
