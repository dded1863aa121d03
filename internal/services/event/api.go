package event

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

// RecentEvent is one row of the recent events endpoint.
type RecentEvent struct {
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name,omitempty"`
	Event      string `json:"event"`
	Message    string `json:"message"`
	Time       string `json:"time"` // RFC3339
}

type recentQueryParams struct {
	Minutes   int
	Limit     int
	TimeoutMS int
	Device    string
}

func parseRecent(r *http.Request, defMin, defLim, defTOms int) recentQueryParams {
	q := r.URL.Query()
	get := func(k string, def, min, max int) int {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				if n < min {
					return min
				}
				if max > 0 && n > max {
					return max
				}
				return n
			}
		}
		return def
	}
	return recentQueryParams{
		Minutes:   get("minutes", defMin, 1, 7*24*60),
		Limit:     get("limit", defLim, 1, 500),
		TimeoutMS: get("timeout_ms", defTOms, 200, 5000),
		Device:    strings.TrimSpace(q.Get("device")),
	}
}

func buildFlux(bucket string, p recentQueryParams) string {
	deviceFilter := ""
	if p.Device != "" {
		deviceFilter = fmt.Sprintf("\n  |> filter(fn: (r) => r.device_id == %q or r.device_name == %q)", p.Device, p.Device)
	}
	return fmt.Sprintf(`
from(bucket: %q)
  |> range(start: -%dm)
  |> filter(fn: (r) => r._measurement == %q and r._field == "message")%s
  |> group()
  |> keep(columns: ["_time","_value","device_id","device_name","event"])
  |> sort(columns: ["_time"], desc: true)
  |> limit(n:%d)
`, bucket, p.Minutes, measurement, deviceFilter, p.Limit)
}

func runRecent(w http.ResponseWriter, r *http.Request, influx influxdb2.Client, org, bucket string) {
	p := parseRecent(r, 60, 50, 2000)

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(p.TimeoutMS)*time.Millisecond)
	defer cancel()

	res, err := influx.QueryAPI(org).Query(ctx, buildFlux(bucket, p))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Error", "influx-query-error")
		_, _ = w.Write([]byte("[]"))
		return
	}
	defer func() { _ = res.Close() }()

	out := make([]RecentEvent, 0, p.Limit)
	for res.Next() {
		rec := res.Record()
		ev := RecentEvent{Time: rec.Time().UTC().Format(time.RFC3339)}
		if s, ok := rec.Value().(string); ok {
			ev.Message = s
		}
		ev.DeviceID = stringValue(rec.ValueByKey("device_id"))
		ev.DeviceName = stringValue(rec.ValueByKey("device_name"))
		ev.Event = stringValue(rec.ValueByKey("event"))
		out = append(out, ev)
	}
	if res.Err() != nil {
		w.Header().Set("X-Error", "influx-iter-error")
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func stringValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// NewRecentEventsHandler serves
// GET /events/recent?minutes=60&limit=50[&device=<id or name>]
func NewRecentEventsHandler(influx influxdb2.Client, org, bucket string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		runRecent(w, r, influx, org, bucket)
	})
}
