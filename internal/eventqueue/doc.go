// Package eventqueue implements a single-worker, time-ordered event queue.
//
// It is the scheduling backbone of the preview player: every delayed
// callback the player core wants to run — "read the next video frame",
// "fire a progress callback", "finish a seek" — goes through here rather
// than being driven by an ad-hoc timer or goroutine per event.
//
// # Design
//
// One background worker owns a min-heap keyed by scheduled time. Posting an
// event never blocks (the worker is woken through a one-slot buffered
// channel, raced against a timer for the earliest scheduled event).
// Events scheduled for the same instant run in FIFO insertion order.
//
// Cancel(id) removes a pending event but cannot interrupt one already
// dequeued and running — callers that need that are expected to guard their
// own "is this still wanted" flag under their own lock and check it first
// thing inside the callback, exactly as the player core does with its
// *_event_pending flags.
//
// Stop ends the worker once any callback already running returns (events
// still queued are not run) and causes all further Post calls to return
// ErrStopped. Start and Stop are each idempotent.
package eventqueue
