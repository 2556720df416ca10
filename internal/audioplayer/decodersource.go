package audioplayer

import (
	"sync"

	"github.com/visiona/previewplayer/internal/decoder"
)

// DecoderSource adapts any decoder.Decoder (a real gst.Audio track or a
// dummysource.SilentAudio) into the Source contract this package's Player
// implementations pull from.
type DecoderSource struct {
	mu  sync.Mutex
	dec decoder.Decoder

	pendingSeekUs *int64
}

// NewDecoderSource wraps dec.
func NewDecoderSource(dec decoder.Decoder) *DecoderSource {
	return &DecoderSource{dec: dec}
}

// ComponentName implements Source.
func (d *DecoderSource) ComponentName() string { return d.dec.ComponentName() }

// Read implements Source.
func (d *DecoderSource) Read() ([]byte, int64, bool, error) {
	d.mu.Lock()
	opts := decoder.ReadOptions{}
	if d.pendingSeekUs != nil {
		opts.SeekTargetUs = d.pendingSeekUs
		d.pendingSeekUs = nil
	}
	d.mu.Unlock()

	res := d.dec.Read(opts)
	switch res.Status {
	case decoder.StatusOK:
		if res.Frame == nil || res.Frame.RangeLength == 0 {
			return nil, 0, true, nil // caller should just call Read again; treat as a no-op tick
		}
		return res.Frame.Data[:res.Frame.RangeLength], res.Frame.PTSUs, true, nil
	case decoder.StatusEndOfStream:
		return nil, 0, false, nil
	case decoder.StatusInfoFormatChanged:
		return d.Read() // re-query on the next read; format changes don't carry audio data
	default:
		return nil, 0, false, res.Err
	}
}

// SeekTo implements gst.Seeker, queuing a seek hint consumed by the next
// Read call.
func (d *DecoderSource) SeekTo(targetUs int64) error {
	d.mu.Lock()
	d.pendingSeekUs = &targetUs
	d.mu.Unlock()
	return nil
}

// Stop implements Source.
func (d *DecoderSource) Stop() error { return d.dec.Stop() }

// Unwrap returns the underlying decoder.
func (d *DecoderSource) Unwrap() decoder.Decoder { return d.dec }
