package event

import (
	"context"
	"sync"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/rs/zerolog"

	"github.com/LeonardoBeccarini/connevents/internal/model"
)

// Writer incapsula WriteAPI e traccia l'ultimo errore di scrittura per /healthz e /readyz.
// It is also the Influx sink of the pipeline.
type Writer struct {
	api     api.WriteAPI
	mu      sync.RWMutex
	lastErr time.Time
	counts  map[string]int64
}

// NewWriter inizializza il writer e attiva il listener degli errori asincroni di Influx.
func NewWriter(w api.WriteAPI, log zerolog.Logger) *Writer {
	ww := &Writer{
		api:     w,
		lastErr: time.Now().Add(-24 * time.Hour), // di default "lontano nel tempo"
		counts:  make(map[string]int64),
	}
	if errs := w.Errors(); errs != nil {
		go func() {
			for err := range errs {
				if err != nil {
					ww.markError()
					log.Warn().Err(err).Msg("influx write error")
				}
			}
		}()
	}
	return ww
}

// Emit queues the event as a point; write errors surface asynchronously.
func (w *Writer) Emit(_ context.Context, evt model.DecodedEvent, _ string) error {
	w.api.WritePoint(EventToPoint(evt))
	w.MarkIngest(evt.Event)
	return nil
}

// Flush forces pending points out, used on shutdown.
func (w *Writer) Flush() {
	if w != nil && w.api != nil {
		w.api.Flush()
	}
}

func (w *Writer) markError() {
	w.mu.Lock()
	w.lastErr = time.Now()
	w.mu.Unlock()
}

// LastErrorAge ritorna da quanto tempo non si verificano errori di scrittura.
func (w *Writer) LastErrorAge() time.Duration {
	if w == nil {
		// se per qualche motivo non è stato inizializzato, ritorna un'età grande
		return 99999 * time.Hour
	}
	w.mu.RLock()
	t := w.lastErr
	w.mu.RUnlock()
	return time.Since(t)
}

// MarkIngest incrementa un contatore interno per tipo evento.
func (w *Writer) MarkIngest(event string) {
	if w == nil {
		return
	}
	w.mu.Lock()
	w.counts[event]++
	w.mu.Unlock()
}

// Count permette di leggere il contatore per tipo evento.
func (w *Writer) Count(event string) int64 {
	if w == nil {
		return 0
	}
	w.mu.RLock()
	c := w.counts[event]
	w.mu.RUnlock()
	return c
}
