package log

import (
	"testing"

	"quantlab/internal/config"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggingConfig{
		Level:    "debug",
		Encoding: "console",
	})
	if err != nil {
		t.Fatalf("NewLogger returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("NewLogger returned nil logger")
	}
	_ = logger.Sync()
}

// 未指定编码时默认 console。
func TestNewLogger_DefaultEncoding(t *testing.T) {
	logger, err := NewLogger(config.LoggingConfig{Level: "info"})
	if err != nil {
		t.Fatalf("NewLogger returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("NewLogger returned nil logger")
	}
	_ = logger.Sync()
}

func TestNewLogger_BadLevel(t *testing.T) {
	if _, err := NewLogger(config.LoggingConfig{Level: "loudest", Encoding: "console"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
