package sysutil

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" INFO ", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"Warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tc := range cases {
		if got := ParseLogLevel(tc.in); got != tc.want {
			t.Fatalf("ParseLogLevel(%q) = %v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestSetupLogging_JSONAndContextFallback(t *testing.T) {
	prevLevel, prevLog, prevCtx := zerolog.GlobalLevel(), log.Logger, zerolog.DefaultContextLogger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prevLevel)
		log.Logger = prevLog
		zerolog.DefaultContextLogger = prevCtx
	})

	var buf bytes.Buffer
	SetupLogging(&buf, "warn", false, "lead-api")

	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Fatalf("global level = %v", zerolog.GlobalLevel())
	}

	zerolog.Ctx(context.Background()).Info().Msg("dropped")
	zerolog.Ctx(context.Background()).Warn().Msg("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("want one line, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("json: %v", err)
	}
	if entry["service"] != "lead-api" || entry["message"] != "kept" || entry["level"] != "warn" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestSetupLogging_Pretty(t *testing.T) {
	prevLevel, prevLog, prevCtx := zerolog.GlobalLevel(), log.Logger, zerolog.DefaultContextLogger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prevLevel)
		log.Logger = prevLog
		zerolog.DefaultContextLogger = prevCtx
	})

	var buf bytes.Buffer
	l := SetupLogging(&buf, "info", true, "svc")
	l.Info().Msg("hello")
	if out := buf.String(); strings.HasPrefix(out, "{") || !strings.Contains(out, "hello") {
		t.Fatalf("expected console output, got %q", out)
	}
}

func TestVersion_NotEmpty(t *testing.T) {
	if Version() == "" {
		t.Fatal("empty version")
	}
}
