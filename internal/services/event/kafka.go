package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"

	"github.com/LeonardoBeccarini/connevents/internal/model"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig configures the Kafka forwarder.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration

	// circuit breaker: open after BreakerFailures consecutive failures,
	// probe again after BreakerOpenFor
	BreakerFailures int
	BreakerOpenFor  time.Duration
}

// KafkaSink forwards decoded events as JSON, keyed by device id so that the
// events of one device stay ordered within a partition.
type KafkaSink struct {
	w  messageWriter
	cb *gobreaker.CircuitBreaker
}

func NewKafkaSink(cfg KafkaConfig) *KafkaSink {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{}, // partizionamento per chiave (device id)
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireOne,
	}
	return newKafkaSink(w, "kafka-"+cfg.Topic, cfg.BreakerFailures, cfg.BreakerOpenFor)
}

func newKafkaSink(w messageWriter, name string, fails int, openFor time.Duration) *KafkaSink {
	return &KafkaSink{w: w, cb: mkCB(name, fails, openFor)}
}

func mkCB(name string, fails int, openFor time.Duration) *gobreaker.CircuitBreaker {
	if fails < 1 {
		fails = 5
	}
	if openFor <= 0 {
		openFor = 10 * time.Second
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: openFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(fails)
		},
	})
}

func (s *KafkaSink) Emit(ctx context.Context, evt model.DecodedEvent, _ string) error {
	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = s.cb.Execute(func() (interface{}, error) {
		return nil, s.w.WriteMessages(ctx, kafka.Message{
			Key:   []byte(evt.DeviceID),
			Value: value,
			Time:  evt.ReceivedAt,
		})
	})
	return err
}

// State exposes the breaker state for /healthz.
func (s *KafkaSink) State() gobreaker.State { return s.cb.State() }

func (s *KafkaSink) Close() error { return s.w.Close() }
