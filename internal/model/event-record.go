package model

// EventRecord is one "epoch,millis,code,data" entry of a connection event
// payload. It is a value type: decoding reads it and never changes it.
type EventRecord struct {
	Epoch  Number // unix seconds, 0 = the device had no clock yet
	Millis string // device millis() counter, passed through verbatim
	Code   Number
	Data   Number
}

// EventCode returns the record's code and whether it is numeric.
func (r EventRecord) EventCode() (EventCode, bool) {
	if !r.Code.Valid {
		return 0, false
	}
	return EventCode(r.Code.Value), true
}

// Message is the decoded meaning of a record. Known is false when the event
// code is not one the firmware defines a message for; Text is then empty.
type Message struct {
	Text  string
	Known bool
}
