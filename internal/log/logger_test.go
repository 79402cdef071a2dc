package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf, Component: ComponentStorage})
	logger.WithComponent(ComponentAMQP).Info("published", FieldJobID, "a")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode record %q: %v", buf.String(), err)
	}
	if rec[FieldComponent] != ComponentAMQP || rec[FieldJobID] != "a" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestStructuredLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelDebug, Output: &buf}))
	r := httptest.NewRequest("GET", "/api/totals?period=week", nil)

	sl.LogHTTPEnd(context.Background(), r, "req_1", 404, 3, "127.0.0.1")
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "component=trace") ||
		!strings.Contains(buf.String(), "duration_human=3ms") {
		t.Fatalf("expected warn record for 404, got %q", buf.String())
	}

	buf.Reset()
	sl.LogError(context.Background(), "save failed", errors.New("boom"), ComponentStorage, OpCreate, nil)
	out := buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "error=boom") || !strings.Contains(out, "component=storage") {
		t.Fatalf("unexpected error record %q", out)
	}
}

func TestFromContextFallsBack(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != "unknown" {
		t.Fatalf("expected fallback logger, got %+v", l)
	}
	logger := Discard()
	if got := FromContext(NewContext(context.Background(), logger)); got != logger {
		t.Fatalf("expected logger from context")
	}
}
