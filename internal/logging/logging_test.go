package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_ConsoleLevels(t *testing.T) {
	var buf bytes.Buffer
	lg, err := New(Options{Level: "warn", Console: true, Out: &buf, NoColor: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	lg.Info().Msg("info message")
	lg.Warn().Msg("warn message")

	out := buf.String()
	if strings.Contains(out, "info message") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "warn message") {
		t.Error("expected warn message in output")
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "skipad.log")
	lg, err := New(Options{File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ml := Module(lg.Logger, "monitor")
	ml.Info().Str("app", "com.example").Msg("launched")
	if err := lg.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{`"module":"monitor"`, `"app":"com.example"`, `"message":"launched"`, `"time":`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}

func TestNew_NoOutputs(t *testing.T) {
	lg, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	lg.Info().Msg("dropped")
	if err := lg.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
