package vlog

import (
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"trace":   slog.LevelDebug,
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
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

func TestHandlerFormat(t *testing.T) {
	var buf strings.Builder
	logger := NewLogger(slog.LevelInfo, &buf)

	logger.Info("listening", "addr", "127.0.0.1:8080")

	got := buf.String()
	if !strings.HasPrefix(got, "INFO  listening") {
		t.Errorf("unexpected prefix: %q", got)
	}
	if !strings.Contains(got, "addr=127.0.0.1:8080") {
		t.Errorf("missing attr: %q", got)
	}
}

func TestHandlerRespectsLevel(t *testing.T) {
	var buf strings.Builder
	logger := NewLogger(slog.LevelWarn, &buf)

	logger.Debug("noise")
	logger.Info("noise")

	if buf.Len() != 0 {
		t.Errorf("below-level records were written: %q", buf.String())
	}
}
