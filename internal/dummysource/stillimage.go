package dummysource

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/visiona/previewplayer/internal/decoder"
)

// frameIntervalUs is the fixed cadence at which StillImage re-emits its one
// frame — 33ms, matching the video event loop's still-image capped delay
// (the loop never needs to wait longer than one "frame" for a source that
// never actually changes).
const frameIntervalUs = 33_000

// StillImage decodes a single raw RGB buffer from a `.rgb` URI once, at
// construction, and re-emits it on every Read until the configured
// duration has elapsed.
type StillImage struct {
	mu sync.Mutex

	width, height int
	frame         []byte
	durationUs    int64
	posUs         int64
	started       bool
}

// NewStillImage reads width*height*3 bytes of raw RGB24 from path and
// returns a source that will emit that single frame for duration.
func NewStillImage(path string, width, height int, duration time.Duration) (*StillImage, error) {
	want := width * height * 3
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dummysource: read still image %q: %w", path, err)
	}
	if len(data) < want {
		return nil, fmt.Errorf("dummysource: still image %q is %d bytes, want at least %d for %dx%d RGB24", path, len(data), want, width, height)
	}
	return &StillImage{
		width:      width,
		height:     height,
		frame:      data[:want],
		durationUs: duration.Microseconds(),
	}, nil
}

// SetDuration extends (or shortens) the source's advertised duration.
func (s *StillImage) SetDuration(d time.Duration) {
	s.mu.Lock()
	s.durationUs = d.Microseconds()
	s.mu.Unlock()
}

// Start implements decoder.Decoder.
func (s *StillImage) Start(ctx context.Context) error {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	return nil
}

// Stop implements decoder.Decoder.
func (s *StillImage) Stop() error {
	s.mu.Lock()
	s.started = false
	s.posUs = 0
	s.mu.Unlock()
	return nil
}

// AwaitRelease implements decoder.Decoder; a synthetic source releases
// synchronously.
func (s *StillImage) AwaitRelease(ctx context.Context) error { return nil }

// Read implements decoder.Decoder, re-emitting the same frame bytes every
// frameIntervalUs until duration elapses.
func (s *StillImage) Read(opts decoder.ReadOptions) decoder.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if opts.SeekTargetUs != nil {
		s.posUs = *opts.SeekTargetUs
	}

	if s.posUs >= s.durationUs {
		return decoder.Result{Status: decoder.StatusEndOfStream}
	}

	out := make([]byte, len(s.frame))
	copy(out, s.frame)
	frame := &decoder.Frame{
		PTSUs:       s.posUs,
		Data:        out,
		RangeLength: len(out),
		DecodedAt:   time.Now(),
	}
	s.posUs += frameIntervalUs

	return decoder.Result{Status: decoder.StatusOK, Frame: frame}
}

// GetFormat implements decoder.Decoder.
func (s *StillImage) GetFormat() (decoder.Format, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decoder.Format{
		ComponentName: s.ComponentName(),
		MimeType:      "video/raw",
		Width:         s.width,
		Height:        s.height,
	}, nil
}

// ComponentName implements decoder.Decoder. The player core's source-swap
// logic in internal/preview matches on this exact string to detect
// dummy-to-dummy transitions.
func (s *StillImage) ComponentName() string { return "DummyVideoSource" }

// IsStillImage reports true always; used by the renderer to select the
// is_still_image render path.
func (s *StillImage) IsStillImage() bool { return true }
