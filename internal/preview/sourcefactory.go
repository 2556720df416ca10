package preview

import (
	"fmt"
	"strings"
	"time"

	"github.com/visiona/previewplayer/internal/decoder"
	decodergst "github.com/visiona/previewplayer/internal/decoder/gst"
	"github.com/visiona/previewplayer/internal/dummysource"
)

// SourceFactory opens the video and audio decoders for a clip's URI. The
// container demuxer/extractor itself is out of scope (§1); this is the
// seam the player core calls into to get decoder.Decoder instances back
// from §4.7's prepare_async_event. DefaultSourceFactory picks the
// still-image source only for a `.rgb` URI suffix; when the video
// decoder cannot be opened, that error is returned and no still-image
// fallback is tried. A failed audio open falls back to silent audio.
type SourceFactory interface {
	OpenVideo(clip ClipContext) (decoder.Decoder, error)
	OpenAudio(clip ClipContext) (decoder.Decoder, error)
}

// DefaultSourceFactory opens real GStreamer decoders for ordinary URIs
// and the §6 still-image path for a `.rgb` suffix.
type DefaultSourceFactory struct {
	SilentAudioSampleRateHz int
	SilentAudioChannels     int
}

// NewDefaultSourceFactory returns a factory with the sample rate/channel
// count the shared audio player and dummy audio sources must agree on.
func NewDefaultSourceFactory(sampleRateHz, channels int) *DefaultSourceFactory {
	return &DefaultSourceFactory{SilentAudioSampleRateHz: sampleRateHz, SilentAudioChannels: channels}
}

func (f *DefaultSourceFactory) isStillImage(clip ClipContext) bool {
	return strings.HasSuffix(strings.ToLower(clip.URI), ".rgb")
}

// OpenVideo implements SourceFactory.
func (f *DefaultSourceFactory) OpenVideo(clip ClipContext) (decoder.Decoder, error) {
	if f.isStillImage(clip) {
		img, err := dummysource.NewStillImage(clip.URI, clip.Width, clip.Height, time.Duration(clip.DurationUs())*time.Microsecond)
		if err != nil {
			return nil, fmt.Errorf("sourcefactory: still image: %w", err)
		}
		return img, nil
	}
	dec, err := decodergst.NewVideo(clip.URI, clip.Width, clip.Height)
	if err != nil {
		return nil, fmt.Errorf("sourcefactory: open video %q: %w", clip.URI, err)
	}
	return dec, nil
}

// OpenAudio implements SourceFactory.
func (f *DefaultSourceFactory) OpenAudio(clip ClipContext) (decoder.Decoder, error) {
	if f.isStillImage(clip) {
		return dummysource.NewSilentAudio(f.SilentAudioSampleRateHz, f.SilentAudioChannels, time.Duration(clip.DurationUs())*time.Microsecond), nil
	}
	dec, err := decodergst.NewAudio(clip.URI, f.SilentAudioSampleRateHz, f.SilentAudioChannels)
	if err != nil {
		// Falls back to silence rather than failing the whole clip —
		// §7's "partial failure" rule and the legacy QCELP-absent-decoder
		// swallow both land here: an audio open failure must not prevent
		// video-only playback.
		return dummysource.NewSilentAudio(f.SilentAudioSampleRateHz, f.SilentAudioChannels, time.Duration(clip.DurationUs())*time.Microsecond), nil
	}
	return dec, nil
}
