package eventqueue

import (
	"errors"
	"time"
)

// Errors returned by Queue operations.
var (
	ErrStopped      = errors.New("eventqueue: queue is stopped")
	ErrNotFound     = errors.New("eventqueue: event id not found")
	ErrAlreadyAdded = errors.New("eventqueue: event id already posted")
)

// ID identifies a posted event so it can later be cancelled.
type ID uint64

// Callback is run on the worker goroutine when an event's scheduled time
// arrives. It receives the ID it was posted under, so a single closure can
// be reused for a family of repeating events if desired.
type Callback func(id ID)

// Event is a unit of delayed work. Kind is informational only (useful for
// logging/metrics); the queue itself only cares about When and the
// callback.
type Event struct {
	ID   ID
	Kind string
	When time.Time
	Run  Callback

	// seq breaks ties between events scheduled for the identical instant,
	// preserving FIFO insertion order within the heap.
	seq uint64
}
