package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"

	"github.com/LeonardoBeccarini/connevents/internal/model"
)

type fakeWriteAPI struct {
	api.WriteAPI
	mu      sync.Mutex
	points  []*write.Point
	flushed int
	errs    chan error
}

func (f *fakeWriteAPI) WritePoint(p *write.Point) {
	f.mu.Lock()
	f.points = append(f.points, p)
	f.mu.Unlock()
}

func (f *fakeWriteAPI) Flush() { f.flushed++ }

func (f *fakeWriteAPI) Errors() <-chan error { return f.errs }

func TestWriter_EmitAndCount(t *testing.T) {
	fw := &fakeWriteAPI{}
	w := NewWriter(fw, zerolog.Nop())

	evt := model.DecodedEvent{DeviceID: "d", Event: "PING_DNS", Message: "PING_DNS success", Known: true}
	for i := 0; i < 2; i++ {
		if err := w.Emit(context.Background(), evt, ""); err != nil {
			t.Fatal(err)
		}
	}
	if len(fw.points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(fw.points))
	}
	if w.Count("PING_DNS") != 2 || w.Count("OTHER") != 0 {
		t.Fatalf("unexpected counts %d/%d", w.Count("PING_DNS"), w.Count("OTHER"))
	}
	w.Flush()
	if fw.flushed != 1 {
		t.Fatal("Flush must reach the write API")
	}
	if w.LastErrorAge() < time.Hour {
		t.Fatal("a fresh writer must report an old last error")
	}
}

func TestWriter_AsyncErrors(t *testing.T) {
	fw := &fakeWriteAPI{errs: make(chan error, 1)}
	w := NewWriter(fw, zerolog.Nop())

	fw.errs <- context.DeadlineExceeded
	deadline := time.Now().Add(2 * time.Second)
	for w.LastErrorAge() > time.Minute {
		if time.Now().After(deadline) {
			t.Fatal("write error was not recorded")
		}
		time.Sleep(5 * time.Millisecond)
	}
	close(fw.errs)
}

func TestWriter_Nil(t *testing.T) {
	var w *Writer
	w.Flush()
	w.MarkIngest("x")
	if w.Count("x") != 0 || w.LastErrorAge() < time.Hour {
		t.Fatal("nil writer must be inert")
	}
}
