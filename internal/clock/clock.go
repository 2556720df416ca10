// Package clock provides the two media-time sources the player core chooses
// between: a monotonic system clock and a bridge onto the shared audio
// player's media clock.
//
// Grounded on the teacher's time handling in modules/stream-capture (all
// telemetry there is time.Time/time.Since based, never wall-clock math) —
// this package generalizes that into an explicit interface so the player
// core can swap sources without caring which one is authoritative.
package clock

import "time"

// Source reports the current media time in microseconds since an
// unspecified but fixed epoch. Two frame timestamps compared through the
// same Source are always comparable; timestamps from different Source
// instances are not.
type Source interface {
	// NowUs returns the current media time in microseconds.
	NowUs() int64
}

// Mapper is implemented by sources that can report a (real, media) time
// pair for delta recalibration, as the audio bridge does.
type Mapper interface {
	// MediaTimeMapping returns the most recent (realTimeUs, mediaTimeUs)
	// pair the source observed, and whether one was available. Sources
	// without a notion of "real time" (e.g. System) never have one.
	MediaTimeMapping() (realTimeUs, mediaTimeUs int64, ok bool)
}

// System is a Source backed by the monotonic wall clock. It becomes
// authoritative once the audio track has reached end-of-stream, or when
// there is no audio track at all.
type System struct {
	epoch time.Time
}

// NewSystem creates a System clock anchored to the current instant.
func NewSystem() *System {
	return &System{epoch: time.Now()}
}

// NowUs implements Source.
func (s *System) NowUs() int64 {
	return time.Since(s.epoch).Microseconds()
}
