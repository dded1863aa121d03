package event

import (
	"iter"
	"strings"

	"github.com/LeonardoBeccarini/connevents/internal/model"
)

const (
	recordSep = ";"
	fieldSep  = ","
	numFields = 4
)

// Records yields the well-formed records of a connection event payload, in
// order. Candidates that do not split into exactly four fields are skipped
// without error so that one corrupt entry does not hide its neighbours.
// The payload is re-split on every range over the result.
func Records(payload string) iter.Seq[model.EventRecord] {
	return func(yield func(model.EventRecord) bool) {
		for _, candidate := range strings.Split(payload, recordSep) {
			rec, ok := ParseRecord(candidate)
			if !ok {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// ParseRecord parses a single "epoch,millis,code,data" entry.
func ParseRecord(candidate string) (model.EventRecord, bool) {
	fields := strings.Split(candidate, fieldSep)
	if len(fields) != numFields {
		return model.EventRecord{}, false
	}
	return model.EventRecord{
		Epoch:  model.ParseNumber(fields[0]),
		Millis: fields[1],
		Code:   model.ParseNumber(fields[2]),
		Data:   model.ParseNumber(fields[3]),
	}, true
}
