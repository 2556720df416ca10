// Package decoder defines the facade the player core uses to pull frames
// out of an audio or video track, independent of what actually decodes
// them. The underlying decoder/demuxer is an external collaborator per the
// spec's scope — this package only defines the contract and a thin facade
// around it; internal/decoder/gst provides one concrete backend, and
// internal/dummysource provides the two synthetic ones the spec calls for.
package decoder

import "time"

// Frame is a single decoded audio or video unit.
type Frame struct {
	// PTSUs is the frame's presentation timestamp in microseconds, relative
	// to the track's own timeline (not the storyboard's).
	PTSUs int64
	// Data holds raw samples: interleaved RGB for video, interleaved PCM
	// for audio. Ownership transfers to the caller of Read until Release is
	// called.
	Data []byte
	// RangeLength is the number of valid bytes in Data; a Read that returns
	// a frame with RangeLength == 0 is a spurious/empty buffer the caller
	// must discard without treating it as real content.
	RangeLength int
	// TraceID uniquely identifies this frame for logging/tracing.
	TraceID string
	// DecodedAt records when the decoder produced the frame (wall clock),
	// used only for latency telemetry.
	DecodedAt time.Time
}

// Format describes a track's media format, as (re-)reported whenever the
// decoder signals a format change.
type Format struct {
	ComponentName string // e.g. "DummyVideoSource", "gst.video", "gst.audio"
	MimeType      string
	Width         int
	Height        int
	SampleRateHz  int
	Channels      int
}

// SeekMode selects how a seek target is resolved against available sync
// points.
type SeekMode int

const (
	// SeekClosest resolves to the frame whose timestamp is closest to (at
	// or after) the target — used for exact-timestamp previews (seekTo).
	SeekClosest SeekMode = iota
	// SeekNextSync resolves to the next available sync/keyframe at or
	// after the target.
	SeekNextSync
)

// ReadOptions modifies a single Read call.
type ReadOptions struct {
	// SeekTargetUs, when non-nil, asks the decoder to seek before reading.
	SeekTargetUs *int64
	SeekMode     SeekMode
}

// Status classifies the outcome of a Read.
type Status int

const (
	StatusOK Status = iota
	StatusInfoFormatChanged
	StatusEndOfStream
	StatusError
)

// Result is the outcome of a single Read call.
type Result struct {
	Status Status
	Frame  *Frame // non-nil only when Status == StatusOK
	Err    error  // non-nil only when Status == StatusError
}
