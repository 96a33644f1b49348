package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"climate-api/internal/config"
)

func TestNewLogger_ReleaseWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{AppEnv: "prod", LogLevel: slog.LevelInfo}

	logger := NewWriter(&buf, cfg, "1.2.3", "climate-api")
	logger.Info("hello", "key", "value")

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	for key, want := range map[string]string{
		"msg":     "hello",
		"key":     "value",
		"app":     "climate-api",
		"version": "1.2.3",
		"env":     "prod",
	} {
		if got[key] != want {
			t.Errorf("%s = %v; want %q", key, got[key], want)
		}
	}
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{AppEnv: "prod", LogLevel: slog.LevelWarn}

	logger := NewWriter(&buf, cfg, "1.2.3", "climate-api")
	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info line written at warn level: %q", buf.String())
	}
	logger.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("warn line missing: %q", buf.String())
	}
}

func TestNewLogger_DevUsesTint(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{AppEnv: "prod", LogLevel: slog.LevelDebug}

	logger := NewWriter(&buf, cfg, "dev", "climate-api")
	logger.Debug("tinted", "station", "USC00519281")

	out := buf.String()
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("dev logger wrote JSON: %q", out)
	}
	if !strings.Contains(out, "tinted") || !strings.Contains(out, "station=USC00519281") {
		t.Errorf("dev log line = %q; want message and attrs", out)
	}
}
