package event

import (
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/LeonardoBeccarini/connevents/internal/model"
)

const measurement = "connection_event"

// EventToPoint normalizza un DecodedEvent in un *write.Point per InfluxDB.
func EventToPoint(evt model.DecodedEvent) *write.Point {
	tags := map[string]string{
		"device_id": evt.DeviceID,
		"event":     evt.Event,
	}
	if evt.DeviceName != "" {
		tags["device_name"] = evt.DeviceName
	}

	fields := map[string]interface{}{
		"millis":  evt.Millis,
		"message": evt.Message,
		"known":   evt.Known,
	}
	if evt.Code != nil {
		fields["code"] = *evt.Code
	}
	if evt.Data != nil {
		fields["data"] = *evt.Data
	}

	return influxdb2.NewPoint(measurement, tags, fields, evt.Time())
}
