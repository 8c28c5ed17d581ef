package logger

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"vscoscraper/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantError bool
	}{
		{"debug level", "debug", false},
		{"info level", "info", false},
		{"warn level", "warn", false},
		{"warning alias", "warning", false},
		{"error level", "error", false},
		{"uppercase level", "INFO", false},
		{"invalid level", "verbose", true},
		{"empty level", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&config.LoggingConfig{Level: tt.level})
			if (err != nil) != tt.wantError {
				t.Errorf("New() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"disabled", zerolog.Disabled},
	}

	for _, tt := range tests {
		got, err := parseLogLevel(tt.input)
		if err != nil {
			t.Errorf("parseLogLevel(%q) returned error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestGetLoggerReturnsDefault(t *testing.T) {
	// Reset the global so GetLogger has to build a default
	globalLogger = nil

	log := GetLogger()
	if log == nil {
		t.Fatal("Expected GetLogger to return a default logger")
	}

	// The same instance comes back on subsequent calls
	if GetLogger() != log {
		t.Error("Expected GetLogger to return the same instance")
	}
}

func TestTestLoggerCapturesMessages(t *testing.T) {
	log := NewTestLogger()

	log.Info("first")
	log.Warn("second")
	log.ErrorWithFields("third", map[string]interface{}{"media_id": "abc123"})

	messages := log.GetMessages()
	if len(messages) != 3 {
		t.Fatalf("Expected 3 captured messages, got %d", len(messages))
	}

	if !log.HasMessage("first") {
		t.Error("Expected 'first' to be captured")
	}

	warns := log.GetMessagesByLevel("WARN")
	if len(warns) != 1 || warns[0].Message != "second" {
		t.Errorf("Expected one WARN message 'second', got %v", warns)
	}

	errs := log.GetMessagesByLevel("ERROR")
	if len(errs) != 1 {
		t.Fatalf("Expected one ERROR message, got %d", len(errs))
	}
	if errs[0].Fields["media_id"] != "abc123" {
		t.Errorf("Expected media_id field to survive capture, got %v", errs[0].Fields)
	}

	if !log.HasError() {
		t.Error("Expected HasError to report the captured error message")
	}
}

func TestTestLoggerFieldChaining(t *testing.T) {
	log := NewTestLogger()

	log.WithField("component", "pool").WithField("context_id", "c1").Info("context created")

	messages := log.GetMessages()
	if len(messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(messages))
	}

	fields := messages[0].Fields
	if fields["component"] != "pool" || fields["context_id"] != "c1" {
		t.Errorf("Expected chained fields to merge, got %v", fields)
	}
}

func TestTestLoggerWithError(t *testing.T) {
	log := NewTestLogger()
	boom := errors.New("boom")

	log.WithError(boom).Error("operation failed")

	messages := log.GetMessagesByLevel("ERROR")
	if len(messages) != 1 {
		t.Fatalf("Expected 1 error message, got %d", len(messages))
	}
	if messages[0].Error != boom {
		t.Errorf("Expected captured error %v, got %v", boom, messages[0].Error)
	}
}

func TestTestLoggerClear(t *testing.T) {
	log := NewTestLogger()
	log.Info("something")
	log.Clear()

	if len(log.GetMessages()) != 0 {
		t.Error("Expected no messages after Clear")
	}
	if log.String() != "" {
		t.Error("Expected empty buffer after Clear")
	}
}

func TestNopLoggerDoesNothing(t *testing.T) {
	log := NewNopLogger()

	// None of these should panic or write anywhere
	log.Debug("debug")
	log.Info("info")
	log.WithField("k", "v").Warn("warn")
	log.WithError(errors.New("x")).Error("error")
	log.InfoWithFields("fields", map[string]interface{}{"a": 1})

	if log.GetZerolog() != nil {
		t.Error("Expected nop logger to have no zerolog instance")
	}
}
