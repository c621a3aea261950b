package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{" DEBUG ", zapcore.DebugLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_FileGetsJSON(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "nested", "battlewatch.log")

	log, closeFn, err := New(Options{Level: "info", File: path})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	log.Debug("hidden")
	log.Info("combat started", zap.String("log", "a.log"))
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("log lines = %q, want one info line", lines)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if entry["msg"] != "combat started" || entry["log"] != "a.log" || entry["level"] != "info" {
		t.Fatalf("entry = %v, want info combat started with log field", entry)
	}
}

func TestNew_ConsoleHonoursEnvLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	var buf bytes.Buffer

	log, closeFn, err := New(Options{Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	log.Debug("tick")
	_ = closeFn()

	if !strings.Contains(buf.String(), "DEBUG") || !strings.Contains(buf.String(), "tick") {
		t.Fatalf("console output = %q, want a DEBUG tick line", buf.String())
	}
}

func TestNew_NoSinksIsNop(t *testing.T) {
	log, closeFn, err := New(Options{})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	log.Info("dropped")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNew_BadLevelFails(t *testing.T) {
	if _, _, err := New(Options{Level: "loud"}); err == nil {
		t.Fatalf("New returned nil error, want unknown level")
	}
}
