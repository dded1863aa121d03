package event

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/LeonardoBeccarini/connevents/internal/model"
)

func TestConsoleSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSink(&buf)
	_ = s.Emit(context.Background(), model.DecodedEvent{}, "a,b,c,d")
	_ = s.Emit(context.Background(), model.DecodedEvent{}, "e,f,g,h")
	if got := buf.String(); got != "a,b,c,d\ne,f,g,h\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestMultiSink_AttemptsEverySink(t *testing.T) {
	boom := errors.New("boom")
	var calls []string
	failing := SinkFunc(func(context.Context, model.DecodedEvent, string) error {
		calls = append(calls, "bad")
		return boom
	})
	ok := SinkFunc(func(context.Context, model.DecodedEvent, string) error {
		calls = append(calls, "good")
		return nil
	})

	var failed []string
	m := NewMultiSink(func(name string, _ error) { failed = append(failed, name) },
		NamedSink{Name: "bad", Sink: failing},
		NamedSink{Name: "good", Sink: ok},
	)
	err := m.Emit(context.Background(), model.DecodedEvent{}, "line")
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined boom error, got %v", err)
	}
	if len(calls) != 2 || calls[1] != "good" {
		t.Fatalf("every sink must be attempted, calls=%v", calls)
	}
	if len(failed) != 1 || failed[0] != "bad" {
		t.Fatalf("unexpected onError calls %v", failed)
	}
	if m.Len() != 2 {
		t.Fatalf("Len() = %d", m.Len())
	}
}

func TestMultiSink_Empty(t *testing.T) {
	if err := NewMultiSink(nil).Emit(context.Background(), model.DecodedEvent{}, ""); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
