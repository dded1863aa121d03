package event

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/LeonardoBeccarini/connevents/internal/model"
)

// Sink receives decoded events. line is the formatted output line of evt.
type Sink interface {
	Emit(ctx context.Context, evt model.DecodedEvent, line string) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, evt model.DecodedEvent, line string) error

func (f SinkFunc) Emit(ctx context.Context, evt model.DecodedEvent, line string) error {
	return f(ctx, evt, line)
}

// ConsoleSink writes one formatted line per event.
type ConsoleSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleSink writes to w, or stdout when w is nil.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleSink{w: w}
}

func (s *ConsoleSink) Emit(_ context.Context, _ model.DecodedEvent, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintln(s.w, line)
	return err
}

// NamedSink is a sink with a label for metrics and logs.
type NamedSink struct {
	Name string
	Sink Sink
}

// MultiSink fans an event out to every sink, even after a failure, and
// returns the joined errors.
type MultiSink struct {
	sinks   []NamedSink
	onError func(name string, err error)
}

func NewMultiSink(onError func(name string, err error), sinks ...NamedSink) *MultiSink {
	return &MultiSink{sinks: sinks, onError: onError}
}

func (m *MultiSink) Emit(ctx context.Context, evt model.DecodedEvent, line string) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Sink.Emit(ctx, evt, line); err != nil {
			if m.onError != nil {
				m.onError(s.Name, err)
			}
			errs = append(errs, fmt.Errorf("%s sink: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) Len() int { return len(m.sinks) }
