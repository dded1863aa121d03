package event

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// connChecker is the slice of mqtt.Client the health handlers need.
type connChecker interface {
	IsConnectionOpen() bool
}

type healthHandler struct {
	mqtt   connChecker
	writer *Writer
	influx bool
	kafka  *KafkaSink
}

// NewHealthHandler reports broker, Influx and Kafka breaker state. w and k
// may be nil when the corresponding sink is disabled.
func NewHealthHandler(m connChecker, w *Writer, k *KafkaSink) http.Handler {
	return &healthHandler{mqtt: m, writer: w, influx: w != nil, kafka: k}
}

func (h *healthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	type status struct {
		Status          string   `json:"status"`
		MQTTConnected   bool     `json:"mqtt_connected"`
		InfluxEnabled   bool     `json:"influx_enabled"`
		LastWriteErrorS *float64 `json:"last_write_error_age_sec,omitempty"`
		KafkaBreaker    string   `json:"kafka_breaker,omitempty"`
	}
	st := status{
		MQTTConnected: h.mqtt != nil && h.mqtt.IsConnectionOpen(),
		InfluxEnabled: h.influx,
	}
	writeOK := true
	if h.influx {
		age := h.writer.LastErrorAge()
		secs := age.Seconds()
		st.LastWriteErrorS = &secs
		writeOK = age > 30*time.Second
	}
	if h.kafka != nil {
		state := h.kafka.State()
		st.KafkaBreaker = state.String()
		if state == gobreaker.StateOpen {
			writeOK = false
		}
	}

	// ok se deps ok e nessun errore recente di scrittura
	switch {
	case st.MQTTConnected && writeOK:
		st.Status = "ok"
	case st.MQTTConnected:
		st.Status = "degraded"
	default:
		st.Status = "down"
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(st)
}

// Handler /readyz: 200 solo se tutte le dipendenze sono ok.
type readyHandler struct {
	mqtt     connChecker
	writer   *Writer
	minError time.Duration
}

func NewReadyHandler(m connChecker, w *Writer, minOkErrorAge time.Duration) http.Handler {
	return &readyHandler{mqtt: m, writer: w, minError: minOkErrorAge}
}

func (h *readyHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	ready := h.mqtt != nil && h.mqtt.IsConnectionOpen()
	if ready && h.writer != nil {
		ready = h.writer.LastErrorAge() > h.minError
	}
	w.Header().Set("Content-Type", "application/json")
	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	type resp struct {
		Ready bool `json:"ready"`
	}
	_ = json.NewEncoder(w).Encode(resp{Ready: ready})
}

// ServiceName is the gRPC health service name of the decoder.
const ServiceName = "connevents.EventDecoder"

// WatchHealth mirrors the broker connection into a gRPC health server until
// ctx is done, then marks everything NOT_SERVING.
func WatchHealth(ctx context.Context, hs *health.Server, m connChecker, every time.Duration) {
	if every <= 0 {
		every = 2 * time.Second
	}
	set := func() {
		st := healthpb.HealthCheckResponse_NOT_SERVING
		if m != nil && m.IsConnectionOpen() {
			st = healthpb.HealthCheckResponse_SERVING
		}
		hs.SetServingStatus("", st)
		hs.SetServingStatus(ServiceName, st)
	}
	set()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-t.C:
			set()
		}
	}
}
