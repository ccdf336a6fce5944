package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWideEvent(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "info")

	ctx, event := NewEventContext(context.Background())
	AddToEvent(ctx, slog.String("operation", "similar_records"))
	event.Add(slog.Int("pairs", 3))

	Get().InfoContext(ctx, "request completed", event.Attrs()...)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["operation"] != "similar_records" {
		t.Errorf("expected operation attr, got %v", entry["operation"])
	}
	if entry["pairs"] != float64(3) {
		t.Errorf("expected pairs=3, got %v", entry["pairs"])
	}
	if entry["service"] != serviceName {
		t.Errorf("expected service attr, got %v", entry["service"])
	}
}

func TestAddToEventWithoutEvent(t *testing.T) {
	// sem evento no contexto: não deve entrar em pânico
	AddToEvent(context.Background(), slog.String("k", "v"))
	if EventFromContext(context.Background()) != nil {
		t.Error("expected nil event")
	}
}
