package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	t.Parallel()
	log := Default()
	if log == nil {
		t.Fatal("Default() returned nil")
	}
	log.Debug("basis table ready")
	log.Info("timestep complete")
}

func TestJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.Info("timestep complete", "backend", "cpu")

	output := buf.String()
	for _, want := range []string{"timestep complete", `"backend":"cpu"`, `"level":"INFO"`} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %s in output, got: %s", want, output)
		}
	}
}

func TestJSONLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelWarn)
	log.Info("scene loaded")
	log.Debug("chunk dispatched")
	if buf.Len() > 0 {
		t.Fatalf("expected no output below warn, got: %s", buf.String())
	}

	log.Warn("basis table fell back to default")
	if !strings.Contains(buf.String(), "fell back") {
		t.Fatalf("expected warn message in output, got: %s", buf.String())
	}
}

func TestSetup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{"", "cells=12", false},
		{"pretty", "cells=12", false},
		{"JSON", `"cells":12`, false},
		{"text", "cells=12", false},
		{"xml", "", true},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		log, err := Setup(&buf, tc.format, slog.LevelInfo)
		if tc.wantErr {
			if err == nil {
				t.Errorf("Setup(%q): expected error", tc.format)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Setup(%q): %v", tc.format, err)
		}
		log.Info("accumulated", "cells", 12)
		if !strings.Contains(buf.String(), tc.want) {
			t.Errorf("Setup(%q): expected %s in output, got: %s", tc.format, tc.want, buf.String())
		}
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	log := Discard()
	log.Error("dropped")
	log.With("k", "v").WithGroup("g").Info("dropped")
}

func TestWith(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo).With("component", "simulate")
	log.Info("batch started")

	output := buf.String()
	if !strings.Contains(output, `"component":"simulate"`) {
		t.Fatalf("expected component attribute in output, got: %s", output)
	}
}

func TestWithGroup(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo).WithGroup("scene")
	log.Info("loaded", "name", "eor0")

	if !strings.Contains(buf.String(), `"scene":{"name":"eor0"}`) {
		t.Fatalf("expected grouped attribute in output, got: %s", buf.String())
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext with no logger returned nil")
	}

	var buf bytes.Buffer
	ctx := WithContext(context.Background(), JSON(&buf, slog.LevelInfo))
	FromContext(ctx).Info("from context")
	if !strings.Contains(buf.String(), "from context") {
		t.Fatalf("expected message via context logger, got: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" info ", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tc := range tests {
		if got := ParseLevel(tc.input); got != tc.expected {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tc.input, tc.expected, got)
		}
	}
}

func TestPrettyFormat(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := Pretty(&buf, slog.LevelInfo)
	log.Info("timestep complete", "scene", "eor0", "elapsed", 1500*time.Microsecond, "peak", 12.3456789)

	output := buf.String()
	for _, want := range []string{"INFO  timestep complete", "scene=eor0", "elapsed=1.5ms", "peak=12.3457", ".go:"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in output, got: %s", want, output)
		}
	}
	// A buffer is not a terminal.
	if strings.Contains(output, "\033[") {
		t.Fatalf("expected no colour codes, got: %q", output)
	}
}

func TestPrettyHandlerEnabled(t *testing.T) {
	t.Parallel()
	h := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected info to be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("expected error to be enabled at warn level")
	}
}

func TestPrettyHandlerGroups(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func(h slog.Handler) slog.Handler
		want  string
	}{
		{"attrs", func(h slog.Handler) slog.Handler {
			return h.WithAttrs([]slog.Attr{slog.String("backend", "cpu")})
		}, "backend=cpu"},
		{"group", func(h slog.Handler) slog.Handler {
			return h.WithGroup("pool")
		}, "pool.workers=4"},
		{"nested", func(h slog.Handler) slog.Handler {
			return h.WithGroup("a").WithGroup("b")
		}, "a.b.workers=4"},
		{"attrs before group", func(h slog.Handler) slog.Handler {
			return h.WithAttrs([]slog.Attr{slog.Int("run", 2)}).WithGroup("pool")
		}, "run=2 pool.workers=4"},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		slog.New(tc.build(NewPrettyHandler(&buf, nil))).Info("started", "workers", 4)
		if !strings.Contains(buf.String(), tc.want) {
			t.Errorf("%s: expected %q in output, got: %s", tc.name, tc.want, buf.String())
		}
	}
}

func TestPrettyHandlerEmptyGroup(t *testing.T) {
	t.Parallel()
	h := NewPrettyHandler(&bytes.Buffer{}, nil)
	if h.WithGroup("") != slog.Handler(h) {
		t.Fatal("WithGroup empty string should return same handler")
	}
}

func TestPrettyQuoting(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, nil)).Info("loaded", "path", "my scenes/a.json", "format", "json")

	output := buf.String()
	if !strings.Contains(output, `path="my scenes/a.json"`) {
		t.Fatalf("expected quoted string with spaces, got: %s", output)
	}
	if !strings.Contains(output, "format=json") {
		t.Fatalf("expected unquoted simple string, got: %s", output)
	}
}

func TestNeedsQuoting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected bool
	}{
		{"simple", false},
		{"has space", true},
		{"has\ttab", true},
		{"has\nnewline", true},
		{`has"quote`, true},
		{"k=v", true},
		{"", false},
	}
	for _, tc := range tests {
		if got := needsQuoting(tc.input); got != tc.expected {
			t.Errorf("needsQuoting(%q): expected %v, got %v", tc.input, tc.expected, got)
		}
	}
}
