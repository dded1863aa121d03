package event

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/LeonardoBeccarini/connevents/internal/model"
)

type fakeConn struct{ open bool }

func (f fakeConn) IsConnectionOpen() bool { return f.open }

func TestHealthHandler(t *testing.T) {
	cases := []struct {
		name   string
		conn   connChecker
		writer func() *Writer
		kafka  func() *KafkaSink
		want   string
	}{
		{"mqtt only", fakeConn{open: true}, func() *Writer { return nil }, nil, "ok"},
		{"down", fakeConn{open: false}, func() *Writer { return nil }, nil, "down"},
		{"with influx", fakeConn{open: true}, func() *Writer { return NewWriter(&fakeWriteAPI{}, zerolog.Nop()) }, nil, "ok"},
		{"recent write error", fakeConn{open: true}, func() *Writer {
			w := NewWriter(&fakeWriteAPI{}, zerolog.Nop())
			w.markError()
			return w
		}, nil, "degraded"},
		{"kafka breaker closed", fakeConn{open: true}, func() *Writer { return nil }, func() *KafkaSink {
			return newKafkaSink(&fakeKafkaWriter{}, "test", 1, time.Minute)
		}, "ok"},
		{"kafka breaker open", fakeConn{open: true}, func() *Writer { return nil }, func() *KafkaSink {
			ks := newKafkaSink(&fakeKafkaWriter{err: errors.New("broker down")}, "test", 1, time.Minute)
			_ = ks.Emit(context.Background(), model.DecodedEvent{DeviceID: "d"}, "")
			return ks
		}, "degraded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			var ks *KafkaSink
			if tc.kafka != nil {
				ks = tc.kafka()
			}
			NewHealthHandler(tc.conn, tc.writer(), ks).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			var body map[string]interface{}
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("bad json: %v", err)
			}
			if body["status"] != tc.want {
				t.Fatalf("status = %v, want %s", body["status"], tc.want)
			}
			if ks != nil && body["kafka_breaker"] != ks.State().String() {
				t.Fatalf("kafka_breaker = %v, want %s", body["kafka_breaker"], ks.State())
			}
		})
	}
}

func TestReadyHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	NewReadyHandler(fakeConn{open: true}, nil, time.Second).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	w := NewWriter(&fakeWriteAPI{}, zerolog.Nop())
	w.markError()
	rr = httptest.NewRecorder()
	NewReadyHandler(fakeConn{open: true}, w, time.Minute).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 after a write error, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	NewReadyHandler(fakeConn{open: false}, nil, time.Second).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without broker, got %d", rr.Code)
	}
}

func TestWatchHealth(t *testing.T) {
	hs := health.NewServer()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		WatchHealth(ctx, hs, fakeConn{open: true}, 10*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := hs.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
		if err == nil && resp.Status == healthpb.HealthCheckResponse_SERVING {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("service never became SERVING: %v %v", resp, err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	<-done
	resp, err := hs.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil || resp.Status != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("expected NOT_SERVING after shutdown, got %v %v", resp, err)
	}
}
