package clock

import "sync"

// AudioTimeProvider is the subset of the audio player adapter's contract
// this bridge needs: the current media time, and a (real, media) mapping
// pair for delta recalibration after jitter. See internal/audioplayer.Player.
type AudioTimeProvider interface {
	MediaTimeUs() int64
	MediaTimeMapping() (realTimeUs, mediaTimeUs int64, ok bool)
}

// AudioBridge adapts a shared audio player into a Source + Mapper. It holds
// no lock of its own beyond what's needed to swap the underlying provider —
// the provider itself is expected to be safely shared per
// internal/audioplayer's handle contract.
type AudioBridge struct {
	mu       sync.RWMutex
	provider AudioTimeProvider
}

// NewAudioBridge creates a bridge onto the given provider. provider may be
// nil initially and set later via SetProvider (e.g. before an audio source
// exists).
func NewAudioBridge(provider AudioTimeProvider) *AudioBridge {
	return &AudioBridge{provider: provider}
}

// SetProvider swaps the underlying audio time provider, e.g. when the
// shared audio player changes hands between clips.
func (b *AudioBridge) SetProvider(provider AudioTimeProvider) {
	b.mu.Lock()
	b.provider = provider
	b.mu.Unlock()
}

// NowUs implements Source. Returns 0 if no provider is set.
func (b *AudioBridge) NowUs() int64 {
	b.mu.RLock()
	p := b.provider
	b.mu.RUnlock()
	if p == nil {
		return 0
	}
	return p.MediaTimeUs()
}

// MediaTimeMapping implements Mapper.
func (b *AudioBridge) MediaTimeMapping() (realTimeUs, mediaTimeUs int64, ok bool) {
	b.mu.RLock()
	p := b.provider
	b.mu.RUnlock()
	if p == nil {
		return 0, 0, false
	}
	return p.MediaTimeMapping()
}
