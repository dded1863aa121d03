package device_simulator

import (
	"strconv"
	"sync"
	"time"

	"github.com/LeonardoBeccarini/connevents/internal/model"
)

const (
	// MaxEvents is how many records the firmware keeps in retained memory.
	MaxEvents = 32
	// MaxPublishBytes is the data limit of one cloud publish (255 + NUL).
	MaxPublishBytes = 255
	// PublishMinPeriod keeps the device under the cloud publish rate limit.
	PublishMinPeriod = 1010 * time.Millisecond
)

type queuedEvent struct {
	epoch  int64
	millis uint32
	code   model.EventCode
	data   int64
}

// Queue is the device-side event log: a bounded FIFO that loses its oldest
// record when full and is drained into packed payloads.
type Queue struct {
	mu       sync.Mutex
	events   []queuedEvent
	clock    func() time.Time
	bootedAt time.Time
	lastSent time.Time
	noClock  bool
}

// NewQueue starts a queue whose millis counter begins at bootedAt.
func NewQueue(clock func() time.Time) *Queue {
	if clock == nil {
		clock = time.Now
	}
	return &Queue{clock: clock, bootedAt: clock()}
}

// SetClockValid toggles whether the device knows the wall time. Without it
// records carry epoch 0, as a fresh device before its first cloud sync does.
func (q *Queue) SetClockValid(ok bool) {
	q.mu.Lock()
	q.noClock = !ok
	q.mu.Unlock()
}

// Add appends a record, discarding the oldest one when the queue is full.
func (q *Queue) Add(code model.EventCode, data int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.clock()
	if len(q.events) >= MaxEvents {
		q.events = q.events[1:]
	}
	ev := queuedEvent{
		millis: uint32(now.Sub(q.bootedAt).Milliseconds()),
		code:   code,
		data:   data,
	}
	if !q.noClock {
		ev.epoch = now.Unix()
	}
	q.events = append(q.events, ev)
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Pack removes as many records, oldest first, as fit in one publish and
// returns them as "epoch,millis,code,data;" entries. Records that do not
// fit stay queued for the next call.
func (q *Queue) Pack() string {
	q.mu.Lock()
	defer q.mu.Unlock()

	buf := make([]byte, 0, MaxPublishBytes)
	n := 0
	for _, ev := range q.events {
		entry := strconv.AppendInt(nil, ev.epoch, 10)
		entry = append(entry, ',')
		entry = strconv.AppendUint(entry, uint64(ev.millis), 10)
		entry = append(entry, ',')
		entry = strconv.AppendInt(entry, int64(ev.code), 10)
		entry = append(entry, ',')
		entry = strconv.AppendInt(entry, ev.data, 10)
		entry = append(entry, ';')
		if len(buf)+len(entry) >= MaxPublishBytes+1 {
			break
		}
		buf = append(buf, entry...)
		n++
	}
	q.events = q.events[n:]
	return string(buf)
}

// CanPublish reports whether the publish rate limit allows a publish now.
func (q *Queue) CanPublish() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events) > 0 && q.clock().Sub(q.lastSent) >= PublishMinPeriod
}

func (q *Queue) CompletedPublish() {
	q.mu.Lock()
	q.lastSent = q.clock()
	q.mu.Unlock()
}
