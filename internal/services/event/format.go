package event

import (
	"strings"
	"time"

	"github.com/LeonardoBeccarini/connevents/internal/model"
)

const (
	noDate = "no date"

	// isoMillis matches the ISO-8601 form the rest of the tooling prints
	// (always UTC, always three fractional digits).
	isoMillis = "2006-01-02T15:04:05.000Z"

	// device clocks outside years 0000-9999 are garbage; they also cannot be
	// written in the four-digit form above
	minEpoch = -62167219200 // 0000-01-01T00:00:00Z
	maxEpoch = 253402300799 // 9999-12-31T23:59:59Z
)

// FormatDate renders the record timestamp, or "no date" when the device had
// no clock (epoch 0) or the field is not a usable number. Instants past year
// 9999 also give "no date" rather than an extended "+010000-..." year.
func FormatDate(epoch model.Number) string {
	if !epoch.Valid || epoch.Value == 0 || epoch.Value < minEpoch || epoch.Value > maxEpoch {
		return noDate
	}
	return time.UnixMilli(epoch.Value * 1000).UTC().Format(isoMillis)
}

// FormatLine builds the "deviceName,date,millis,message" output line.
// An unknown code leaves the message column empty.
func FormatLine(deviceName string, rec model.EventRecord, msg model.Message) string {
	var b strings.Builder
	b.WriteString(deviceName)
	b.WriteByte(',')
	b.WriteString(FormatDate(rec.Epoch))
	b.WriteByte(',')
	b.WriteString(rec.Millis)
	b.WriteByte(',')
	b.WriteString(msg.Text)
	return b.String()
}
