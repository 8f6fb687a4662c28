package logging

import (
	"context"
	"strings"
	"testing"

	"log/slog"
)

type captureWriter struct {
	lines []string
}

func (w *captureWriter) Write(p []byte) (int, error) {
	w.lines = append(w.lines, string(p))
	return len(p), nil
}

func TestPrettyHandlerHoistsComponent(t *testing.T) {
	writer := &captureWriter{}
	levelVar := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(writer, levelVar, false))

	logger.With(String(FieldComponent, "merge")).Info("session merged", String(FieldSession, "20021"))

	if len(writer.lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(writer.lines))
	}
	line := writer.lines[0]
	if !strings.Contains(line, "merge: session merged") {
		t.Fatalf("component not hoisted into prefix: %q", line)
	}
	if !strings.Contains(line, "session=20021") {
		t.Fatalf("missing session attr: %q", line)
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	for _, input := range []string{"", "unknown", "INFO"} {
		if got := parseLevel(input); got != slog.LevelInfo {
			t.Fatalf("parseLevel(%q) = %v", input, got)
		}
	}
	if got := parseLevel("debug"); got != slog.LevelDebug {
		t.Fatalf("parseLevel(debug) = %v", got)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	writer := &captureWriter{}
	levelVar := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(writer, levelVar, false))

	ctx := context.Background()
	if fields := ContextFields(ctx); len(fields) != 0 {
		t.Fatalf("expected no fields from empty context, got %d", len(fields))
	}
	WithContext(ctx, logger).Info("plain")
	if len(writer.lines) != 1 || strings.Contains(writer.lines[0], FieldSession+"=") {
		t.Fatalf("unexpected output %v", writer.lines)
	}
}
