package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewJSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn", "json")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("hidden")
	logger.Warn("shown", "component", "test")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("json.Unmarshal() error = %v, body=%q", err, buf.String())
	}
	if entry["msg"] != "shown" || entry["component"] != "test" {
		t.Fatalf("entry = %v, want warn entry only", entry)
	}
}

func TestNewRejectsUnknownLevelAndFormat(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "loud", "json"); err == nil {
		t.Fatal("New() error = nil for unknown level")
	}
	if _, err := New(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Fatal("New() error = nil for unknown format")
	}
}

func TestStartSpanCarriesTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx, span := StartSpan(context.Background(), logger, "login")
	traceID := TraceIDFromContext(ctx)
	if traceID == "" {
		t.Fatal("TraceIDFromContext() = empty, want generated id")
	}

	FromContext(ctx).Debug("inside")
	span.End(nil)

	var entry map[string]any
	line := bytes.SplitN(buf.Bytes(), []byte("\n"), 2)[0]
	if err := json.Unmarshal(line, &entry); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if entry["trace_id"] != traceID || entry["op"] != "login" {
		t.Fatalf("entry = %v, want trace_id %q and op login", entry, traceID)
	}

	nested, _ := StartSpan(ctx, nil, "fetch-profile")
	if TraceIDFromContext(nested) != traceID {
		t.Fatal("nested span should reuse the parent trace id")
	}
}
