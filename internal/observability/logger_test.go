package observability

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{
		Level:       "info",
		Format:      "json",
		Output:      &buf,
		ServiceName: "drawmark",
	})

	log.Info().Str("pdf", "doc.pdf").Msg("starting conversion")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["service"] != "drawmark" {
		t.Errorf("service = %v", entry["service"])
	}
	if entry["pdf"] != "doc.pdf" {
		t.Errorf("pdf = %v", entry["pdf"])
	}
	if entry["message"] != "starting conversion" {
		t.Errorf("message = %v", entry["message"])
	}
}

func TestWithStageAndPage(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "info", Format: "json", Output: &buf})

	log.WithStage("classify").WithPage(3).Warn().Msg("preview render failed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["stage"] != "classify" {
		t.Errorf("stage = %v", entry["stage"])
	}
	if entry["page"] != float64(3) {
		t.Errorf("page = %v", entry["page"])
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	// Must not panic and must not write anywhere.
	Nop().Error().Msg("dropped")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{"debug", "debug"},
		{"warn", "warn"},
		{"error", "error"},
		{"info", "info"},
		{"unknown", "info"},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.level).String(); got != tt.want {
			t.Errorf("parseLevel(%q) = %q, want %q", tt.level, got, tt.want)
		}
	}
}
