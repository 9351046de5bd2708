package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := ContextWithLogger(context.Background(), logger)

	if got := FromContext(ctx); got != logger {
		t.Fatal("expected the attached logger back")
	}
	if got := FromContext(context.Background()); got != nil {
		t.Fatal("expected nil for a bare context")
	}
	if ctx := ContextWithLogger(context.Background(), nil); FromContext(ctx) != nil {
		t.Fatal("expected nil logger to not be attached")
	}
}

func TestNewLoggerFormats(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo, "json")
	logger.Info("started", "component", "test")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if record["component"] != "test" {
		t.Fatalf("expected attribute in record, got %v", record)
	}

	buf.Reset()
	logger = NewLogger(&buf, slog.LevelInfo, "text")
	logger.Info("started")
	if !strings.Contains(buf.String(), "msg=started") {
		t.Fatalf("expected text output, got %q", buf.String())
	}
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn, "json")
	logger.Info("suppressed")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be suppressed, got %q", buf.String())
	}
	logger.Warn("kept")
	if buf.Len() == 0 {
		t.Fatal("expected warn to be emitted")
	}
}
