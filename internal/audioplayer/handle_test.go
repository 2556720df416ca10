package audioplayer

import "testing"

// fakePlayer is a minimal Player stub for exercising Handle's
// ownership-token bookkeeping without a real backend.
type fakePlayer struct {
	source Source
	mediaTimeUs int64
}

func (f *fakePlayer) SetSource(src Source) error { f.source = src; return nil }
func (f *fakePlayer) GetSource() Source          { return f.source }
func (f *fakePlayer) SetAudioMixSettings(MixSettings)       {}
func (f *fakePlayer) SetAudioMixPCMHandle(string)           {}
func (f *fakePlayer) SetAudioMixStoryboardSkim(StoryboardSkim) {}
func (f *fakePlayer) SetListener(Listener)                     {}
func (f *fakePlayer) Start(bool) error                      { return nil }
func (f *fakePlayer) Pause(bool) error                       { return nil }
func (f *fakePlayer) Resume() error                           { return nil }
func (f *fakePlayer) SeekTo(int64) error                      { return nil }
func (f *fakePlayer) GetMediaTimeUs() int64                   { return f.mediaTimeUs }
func (f *fakePlayer) GetMediaTimeMapping() (int64, int64, bool) { return 0, f.mediaTimeUs, true }
func (f *fakePlayer) ReachedEOS() EOSStatus                    { return EOSStatus{} }
func (f *fakePlayer) IsSeeking() bool                          { return false }
func (f *fakePlayer) IsStarted() bool                          { return false }

func TestHandle_AcquireReleaseRoundTrip(t *testing.T) {
	h := NewHandle(&fakePlayer{})
	h.Lock()
	token := h.Acquire()
	if token == 0 {
		t.Fatal("Acquire should never return the zero token")
	}
	if err := h.WithOwner(token, func(Player) error { return nil }); err != nil {
		t.Fatalf("WithOwner with the current token should succeed: %v", err)
	}
	h.Release(token)
	if err := h.WithOwner(token, func(Player) error { return nil }); err == nil {
		t.Fatal("WithOwner should fail once the token has been released")
	}
	h.Unlock()
}

func TestHandle_ReleaseIsNoOpForStaleToken(t *testing.T) {
	h := NewHandle(&fakePlayer{})
	h.Lock()
	first := h.Acquire()
	second := h.Acquire() // a newer owner takes over
	h.Release(first)       // stale release must not clobber the new owner
	if err := h.WithOwner(second, func(Player) error { return nil }); err != nil {
		t.Fatalf("expected second owner to still be valid, got %v", err)
	}
	h.Unlock()
}

func TestHandle_MediaTimeProviderDelegatesToPlayer(t *testing.T) {
	fp := &fakePlayer{mediaTimeUs: 42}
	h := NewHandle(fp)
	if got := h.MediaTimeUs(); got != 42 {
		t.Errorf("MediaTimeUs() = %d, want 42", got)
	}
	_, mediaUs, ok := h.MediaTimeMapping()
	if !ok || mediaUs != 42 {
		t.Errorf("MediaTimeMapping() = (_, %d, %v), want (_, 42, true)", mediaUs, ok)
	}
}
