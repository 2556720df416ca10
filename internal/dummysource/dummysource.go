// Package dummysource implements the two synthetic media sources the
// player core falls back to when a real track is unavailable: silent PCM
// audio, and a single still image repeated for a settable duration.
//
// Grounded on internal/decoder's Decoder contract; structurally these are
// the same "produce frames on demand, report a component name, support
// settable duration" shape as modules/framesupplier's dummy producers used
// in its own examples/demo — but reworked end to end for this domain (these
// are decoders, not frame-bus publishers).
package dummysource

import (
	"context"
	"sync"
	"time"

	"github.com/visiona/previewplayer/internal/decoder"
)

// SilentAudio produces zeroed PCM at a fixed sample rate/channel count for
// a duration that can be extended after construction via SetDuration — the
// mechanism that keeps a shared audio player running, un-glitched, across a
// clip transition to another clip with no audio (see §4.9's
// glitch-avoidance path).
type SilentAudio struct {
	mu           sync.Mutex
	sampleRateHz int
	channels     int
	durationUs   int64
	posUs        int64
	started      bool

	// frameUs is the duration each synthesized PCM buffer represents.
	frameUs int64
}

// NewSilentAudio creates a silent audio source of the given duration.
func NewSilentAudio(sampleRateHz, channels int, duration time.Duration) *SilentAudio {
	return &SilentAudio{
		sampleRateHz: sampleRateHz,
		channels:     channels,
		durationUs:   duration.Microseconds(),
		frameUs:      20_000, // 20ms buffers, a typical audio callback period
	}
}

// SetDuration extends (or shortens) the source's advertised duration
// without resetting playback position.
func (s *SilentAudio) SetDuration(d time.Duration) {
	s.mu.Lock()
	s.durationUs = d.Microseconds()
	s.mu.Unlock()
}

// Start implements decoder.Decoder.
func (s *SilentAudio) Start(ctx context.Context) error {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	return nil
}

// Stop implements decoder.Decoder.
func (s *SilentAudio) Stop() error {
	s.mu.Lock()
	s.started = false
	s.posUs = 0
	s.mu.Unlock()
	return nil
}

// AwaitRelease implements decoder.Decoder; a synthetic source releases
// synchronously.
func (s *SilentAudio) AwaitRelease(ctx context.Context) error { return nil }

// Read implements decoder.Decoder, producing a zeroed PCM buffer per call
// until the advertised duration elapses.
func (s *SilentAudio) Read(opts decoder.ReadOptions) decoder.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if opts.SeekTargetUs != nil {
		s.posUs = *opts.SeekTargetUs
	}

	if s.posUs >= s.durationUs {
		return decoder.Result{Status: decoder.StatusEndOfStream}
	}

	bytesPerSample := 2 // 16-bit PCM
	frameUs := s.frameUs
	if s.posUs+frameUs > s.durationUs {
		frameUs = s.durationUs - s.posUs
	}
	samples := int(float64(s.sampleRateHz) * float64(frameUs) / 1_000_000.0)
	if samples < 0 {
		samples = 0
	}

	frame := &decoder.Frame{
		PTSUs:       s.posUs,
		Data:        make([]byte, samples*s.channels*bytesPerSample),
		RangeLength: samples * s.channels * bytesPerSample,
		DecodedAt:   time.Now(),
	}
	s.posUs += frameUs

	return decoder.Result{Status: decoder.StatusOK, Frame: frame}
}

// GetFormat implements decoder.Decoder.
func (s *SilentAudio) GetFormat() (decoder.Format, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decoder.Format{
		ComponentName: s.ComponentName(),
		MimeType:      "audio/raw",
		SampleRateHz:  s.sampleRateHz,
		Channels:      s.channels,
	}, nil
}

// ComponentName implements decoder.Decoder. The player core's source-swap
// logic in internal/preview matches on this exact string to detect
// dummy-to-dummy transitions.
func (s *SilentAudio) ComponentName() string { return "DummyAudioSource" }
