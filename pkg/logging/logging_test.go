package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"INFO":    zerolog.InfoLevel,
		"debug":   zerolog.DebugLevel,
		"verbose": zerolog.TraceLevel,
		" warn ":  zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"quiet":   zerolog.Disabled,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("warn", false, &buf)
	if err != nil {
		t.Fatal(err)
	}
	log.Info().Msg("hidden")
	log.Warn().Str("device", "d").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info must be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"device":"d"`) || !strings.Contains(out, `"message":"shown"`) {
		t.Fatalf("unexpected output %s", out)
	}

	if _, err := New("nope", false, &buf); err == nil {
		t.Fatal("expected error for bad level")
	}
}
