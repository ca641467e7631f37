package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Output: &buf, Component: ComponentApp}).WithComponent(ComponentStorage)

	l.Warn("file unreadable", FieldPath, "alice_expenses.csv")

	out := buf.String()
	if !strings.Contains(out, "component=storage") {
		t.Fatalf("missing component: %s", out)
	}
	if !strings.Contains(out, "path=alice_expenses.csv") {
		t.Fatalf("missing field: %s", out)
	}
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Format: "json", Output: &buf, Component: ComponentLedger})

	l.LogError(context.Background(), "save failed", errors.New("disk full"), OpSave, NewFields().WithUser("alice"))

	out := buf.String()
	for _, want := range []string{`"component":"ledger"`, `"error":"disk full"`, `"operation":"save"`, `"username":"alice"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %s in %s", want, out)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
