package messages

import "time"

// DecodedEvent is the structured form of one decoded connection event,
// handed to the structured sinks (Kafka, Influx).
type DecodedEvent struct {
	DeviceID   string    `json:"device_id"`
	DeviceName string    `json:"device_name"`
	Date       string    `json:"date"`            // ISO-8601 or "no date"
	Epoch      *int64    `json:"epoch,omitempty"` // nil when not numeric
	Millis     string    `json:"millis"`
	Code       *int64    `json:"code,omitempty"`
	Event      string    `json:"event"` // symbolic code name, UNKNOWN if not defined
	Data       *int64    `json:"data,omitempty"`
	Message    string    `json:"message"`
	Known      bool      `json:"known"`
	ReceivedAt time.Time `json:"received_at"`
}

// Time returns the device timestamp, falling back to the receive time when
// the device had no clock.
func (e DecodedEvent) Time() time.Time {
	if e.Epoch != nil && *e.Epoch != 0 {
		return time.Unix(*e.Epoch, 0).UTC()
	}
	return e.ReceivedAt
}
