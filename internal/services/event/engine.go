package event

import (
	"iter"
	"time"

	"github.com/LeonardoBeccarini/connevents/internal/model"
)

// Engine decodes connection event payloads for one device directory.
// It keeps no state between calls and is safe for concurrent use.
type Engine struct {
	dir model.DeviceDirectory
}

func NewEngine(dir model.DeviceDirectory) *Engine {
	return &Engine{dir: dir}
}

// Resolve returns the friendly name of deviceID, or deviceID itself when the
// directory does not know it or has an empty name for it.
func (e *Engine) Resolve(deviceID string) string {
	if e.dir != nil {
		if name, ok := e.dir.Name(deviceID); ok && name != "" {
			return name
		}
	}
	return deviceID
}

// Decoded pairs a structured event with its formatted output line.
type Decoded struct {
	Event model.DecodedEvent
	Line  string
}

// Decode yields one Decoded per valid record of payload, in payload order.
func (e *Engine) Decode(deviceID, payload string, receivedAt time.Time) iter.Seq[Decoded] {
	return func(yield func(Decoded) bool) {
		name := e.Resolve(deviceID)
		for rec := range Records(payload) {
			msg := Decode(rec)
			d := Decoded{
				Event: toDecodedEvent(deviceID, name, rec, msg, receivedAt),
				Line:  FormatLine(name, rec, msg),
			}
			if !yield(d) {
				return
			}
		}
	}
}

// Lines returns the formatted output lines for payload.
func (e *Engine) Lines(deviceID, payload string) []string {
	name := e.Resolve(deviceID)
	var out []string
	for rec := range Records(payload) {
		out = append(out, FormatLine(name, rec, Decode(rec)))
	}
	return out
}

func toDecodedEvent(deviceID, name string, rec model.EventRecord, msg model.Message, receivedAt time.Time) model.DecodedEvent {
	return model.DecodedEvent{
		DeviceID:   deviceID,
		DeviceName: name,
		Date:       FormatDate(rec.Epoch),
		Epoch:      numberPtr(rec.Epoch),
		Millis:     rec.Millis,
		Code:       numberPtr(rec.Code),
		Event:      Name(rec),
		Data:       numberPtr(rec.Data),
		Message:    msg.Text,
		Known:      msg.Known,
		ReceivedAt: receivedAt.UTC(),
	}
}

func numberPtr(n model.Number) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}
