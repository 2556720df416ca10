package gstpipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
)

// BusEvent is a simplified summary of a single bus message, returned by
// PollOnce and handed to a caller-supplied handler by Monitor.
type BusEvent struct {
	Kind  BusEventKind
	Error *gst.GError // set only when Kind == BusEOS is false and an error occurred
}

type BusEventKind int

const (
	BusNone BusEventKind = iota
	BusEOS
	BusError
	BusStateChanged
)

// PollOnce pops a single pending message off pipeline's bus, waiting up to
// timeout, and returns a BusEvent describing it. Returns BusNone if nothing
// arrived in time. Grounded on
// modules/stream-capture/internal/rtsp/monitor.go's MonitorPipelineBus
// polling loop, factored out so a backend can use it without owning its
// own monitor goroutine — the video and audio decoders in
// internal/decoder/gst call PollOnce inline from their Read paths.
func PollOnce(pipeline *gst.Pipeline, timeout time.Duration) BusEvent {
	bus := pipeline.GetPipelineBus()
	msg := bus.TimedPop(timeout)
	if msg == nil {
		return BusEvent{Kind: BusNone}
	}
	switch msg.Type() {
	case gst.MessageEOS:
		return BusEvent{Kind: BusEOS}
	case gst.MessageError:
		return BusEvent{Kind: BusError, Error: msg.ParseError()}
	case gst.MessageStateChanged:
		return BusEvent{Kind: BusStateChanged}
	default:
		return BusEvent{Kind: BusNone}
	}
}

// Monitor runs PollOnce in a loop until ctx is done, invoking handle for
// every non-BusNone event, for a backend that wants asynchronous error
// reporting instead of checking the bus inline on every Read. No backend
// in this module calls it.
func Monitor(ctx context.Context, pipeline *gst.Pipeline, handle func(BusEvent)) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			ev := PollOnce(pipeline, 50*time.Millisecond)
			if ev.Kind == BusNone {
				continue
			}
			if ev.Kind == BusError {
				slog.Debug("gstpipeline: bus error event", "error", ev.Error.Error())
			}
			handle(ev)
		}
	}
}
