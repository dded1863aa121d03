package event

import "github.com/LeonardoBeccarini/connevents/internal/model"

// Directory is an immutable device id -> name map. It is filled once at
// startup and only read afterwards, so concurrent lookups need no locking.
type Directory struct {
	names map[string]string
}

// NewDirectory copies names; later changes to the argument are not seen.
// Devices without a name are left out so they resolve to their id.
func NewDirectory(names map[string]string) *Directory {
	cp := make(map[string]string, len(names))
	for id, name := range names {
		if name == "" {
			continue
		}
		cp[id] = name
	}
	return &Directory{names: cp}
}

// DirectoryFromDevices builds a Directory from a roster listing.
// Entries without an id or a name are ignored; a later duplicate id wins.
func DirectoryFromDevices(devices []model.Device) *Directory {
	names := make(map[string]string, len(devices))
	for _, d := range devices {
		if d.ID == "" || d.Name == "" {
			continue
		}
		names[d.ID] = d.Name
	}
	return &Directory{names: names}
}

func (d *Directory) Name(deviceID string) (string, bool) {
	if d == nil {
		return "", false
	}
	name, ok := d.names[deviceID]
	return name, ok
}

func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}
