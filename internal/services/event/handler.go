package event

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/LeonardoBeccarini/connevents/pkg/dedup"
)

// DefaultEventName is the event name the firmware publishes under.
const DefaultEventName = "connEventStats"

// MQTTHandler trasforma messaggi MQTT in eventi decodificati e li passa al sink.
//
// Two message shapes are accepted:
//   - raw payload on "<prefix>/<deviceID>/<eventName>"
//   - JSON envelope {"coreid": ..., "data": ..., "name": ...} on any subscribed topic,
//     the form cloud webhooks and SSE bridges forward
type MQTTHandler struct {
	engine    *Engine
	sink      Sink
	eventName string
	deduper   *dedup.Deduper
	metrics   *Metrics
	log       zerolog.Logger
	now       func() time.Time
}

type HandlerOption func(*MQTTHandler)

// WithEventName sets the expected event name; other names are ignored.
func WithEventName(name string) HandlerOption {
	return func(h *MQTTHandler) {
		if strings.TrimSpace(name) != "" {
			h.eventName = name
		}
	}
}

// WithDeduper drops QoS1 redeliveries of the same device payload.
func WithDeduper(d *dedup.Deduper) HandlerOption {
	return func(h *MQTTHandler) { h.deduper = d }
}

func WithMetrics(m *Metrics) HandlerOption {
	return func(h *MQTTHandler) { h.metrics = m }
}

func WithLogger(l zerolog.Logger) HandlerOption {
	return func(h *MQTTHandler) { h.log = l }
}

func NewMQTTHandler(engine *Engine, sink Sink, opts ...HandlerOption) *MQTTHandler {
	h := &MQTTHandler{
		engine:    engine,
		sink:      sink,
		eventName: DefaultEventName,
		log:       zerolog.Nop(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Handle has the signature of broker.Handler. Bad records
// never produce an error; only sink failures are returned.
func (h *MQTTHandler) Handle(_ string, m mqtt.Message) error {
	deviceID, payload, ok := h.extract(m.Topic(), m.Payload())
	if !ok {
		if h.metrics != nil {
			h.metrics.IgnoredEvents.Inc()
		}
		h.log.Debug().Str("topic", m.Topic()).Msg("ignoring message")
		return nil
	}
	if h.deduper != nil {
		sum := sha256.Sum256([]byte(deviceID + "|" + payload))
		if !h.deduper.ShouldProcess(hex.EncodeToString(sum[:])) {
			if h.metrics != nil {
				h.metrics.Duplicates.Inc()
			}
			return nil
		}
	}
	return h.Process(context.Background(), deviceID, payload)
}

// Process decodes one payload of deviceID and emits every event to the sink.
func (h *MQTTHandler) Process(ctx context.Context, deviceID, payload string) error {
	if h.metrics != nil {
		h.metrics.Payloads.Inc()
	}
	var firstErr error
	n := 0
	for d := range h.engine.Decode(deviceID, payload, h.now()) {
		n++
		if h.metrics != nil {
			h.metrics.Decoded.WithLabelValues(d.Event.Event).Inc()
			if !d.Event.Known {
				h.metrics.Unknown.Inc()
			}
		}
		if h.sink == nil {
			continue
		}
		if err := h.sink.Emit(ctx, d.Event, d.Line); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	h.log.Debug().Str("device", deviceID).Int("events", n).Msg("payload decoded")
	return firstErr
}

// extract returns device id and raw payload of a message.
func (h *MQTTHandler) extract(topic string, payload []byte) (string, string, bool) {
	if gjson.ValidBytes(payload) && gjson.ParseBytes(payload).IsObject() {
		env := gjson.GetManyBytes(payload, "coreid", "data", "name")
		if name := env[2].String(); name != "" && name != h.eventName {
			return "", "", false
		}
		deviceID := env[0].String()
		if deviceID == "" {
			deviceID, _ = pickDevice(topic)
		}
		if deviceID == "" || !env[1].Exists() {
			return "", "", false
		}
		return deviceID, env[1].String(), true
	}

	deviceID, name := pickDevice(topic)
	if deviceID == "" {
		return "", "", false
	}
	if name != "" && name != h.eventName {
		return "", "", false
	}
	return deviceID, string(payload), true
}

// pickDevice usa il topic "prefix/{device}/{event}".
func pickDevice(topic string) (deviceID, eventName string) {
	parts := strings.Split(strings.Trim(topic, "/"), "/")
	switch {
	case len(parts) >= 3:
		return parts[len(parts)-2], parts[len(parts)-1]
	case len(parts) == 2:
		return parts[1], ""
	}
	return "", ""
}
