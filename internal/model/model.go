package model

import (
	"github.com/LeonardoBeccarini/connevents/internal/model/entities"
	"github.com/LeonardoBeccarini/connevents/internal/model/messages"
)

// Alias per esporre tipi comuni ai servizi

type (
	Device       = entities.Device
	DecodedEvent = messages.DecodedEvent
)

// DeviceDirectory resolves a device identifier to its friendly name.
// Implementations must be safe for concurrent reads.
type DeviceDirectory interface {
	Name(deviceID string) (string, bool)
}
