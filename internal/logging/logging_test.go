package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewWritesToConfiguredOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", Output: &buf})

	log.With(String("component", "classifier")).Info(context.Background(), "slice classified",
		Int("accepted", 3),
		Float64("radius", 250.5),
		Err(errors.New("boom")),
	)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["msg"] != "slice classified" {
		t.Fatalf("msg = %v, want %q", entry["msg"], "slice classified")
	}
	if entry["component"] != "classifier" {
		t.Fatalf("component = %v, want classifier", entry["component"])
	}
	if entry["accepted"] != float64(3) {
		t.Fatalf("accepted = %v, want 3", entry["accepted"])
	}
	if entry["error"] != "boom" {
		t.Fatalf("error = %v, want boom", entry["error"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line emitted at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestWithRunLoggerAssignsStableID(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Format: "json", Output: &buf})

	ctx, log := WithRunLogger(context.Background(), base)
	id := RunIDFromContext(ctx)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("run id %q is not a UUID: %v", id, err)
	}
	if LoggerFromContext(ctx) == nil {
		t.Fatalf("logger not stored on context")
	}

	again, _ := EnsureRunID(ctx)
	if RunIDFromContext(again) != id {
		t.Fatalf("EnsureRunID replaced existing id")
	}

	log.Info(ctx, "run started")
	if !strings.Contains(buf.String(), id) {
		t.Fatalf("log line %q does not carry run id %s", buf.String(), id)
	}
}

func TestNoopAndNilContext(t *testing.T) {
	_, log := WithRunLogger(context.Background(), nil)
	log.Error(context.Background(), "dropped")

	if got := RunIDFromContext(nil); got != "" {
		t.Fatalf("RunIDFromContext(nil) = %q, want empty", got)
	}
}
