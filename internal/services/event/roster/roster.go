// Package roster loads the device id -> name listing the decoder resolves
// names from. Loaders run once at startup; nothing here refreshes.
package roster

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/LeonardoBeccarini/connevents/internal/model"
)

// ErrEmptyRoster is returned when a source yields no devices.
var ErrEmptyRoster = errors.New("roster: no devices")

type fileRoster struct {
	Devices []model.Device `yaml:"devices"`
}

// LoadFile reads a YAML roster:
//
//	devices:
//	  - id: e00fce68...
//	    name: electron-01
func LoadFile(path string) ([]model.Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) ([]model.Device, error) {
	var r fileRoster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	out := r.Devices[:0]
	for _, d := range r.Devices {
		if d.ID != "" {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return nil, ErrEmptyRoster
	}
	return out, nil
}
