package device_simulator

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/LeonardoBeccarini/connevents/pkg/broker"
)

// DeviceSimulator publishes the packed event log of one simulated device.
type DeviceSimulator struct {
	deviceID  string
	topic     string
	queue     *Queue
	generator *Generator
	publisher broker.IPublisher
	log       zerolog.Logger
}

func NewDeviceSimulator(deviceID, topic string, q *Queue, g *Generator, p broker.IPublisher, log zerolog.Logger) *DeviceSimulator {
	return &DeviceSimulator{
		deviceID:  deviceID,
		topic:     topic,
		queue:     q,
		generator: g,
		publisher: p,
		log:       log.With().Str("device", deviceID).Logger(),
	}
}

// Start boots the device and steps it every interval until ctx is done.
// Pending records are flushed whenever the publish rate limit allows.
func (s *DeviceSimulator) Start(ctx context.Context, interval time.Duration) {
	s.generator.Boot()

	step := time.NewTicker(interval)
	defer step.Stop()
	flush := time.NewTicker(PublishMinPeriod)
	defer flush.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-step.C:
			s.generator.Step()
		case <-flush.C:
			s.PublishPending()
		}
	}
}

// PublishPending sends one packed payload if the queue has records and the
// rate limit allows it. A failed publish keeps nothing: the firmware does
// not retry either.
func (s *DeviceSimulator) PublishPending() {
	if !s.queue.CanPublish() {
		return
	}
	payload := s.queue.Pack()
	if err := s.publisher.Publish(s.topic, payload); err != nil {
		s.log.Error().Err(err).Msg("publish error")
	} else {
		s.log.Debug().Str("payload", payload).Int("pending", s.queue.Len()).Msg("published events")
	}
	s.queue.CompletedPublish()
}
