package preview

import (
	"time"

	"github.com/visiona/previewplayer/internal/decoder"
)

// audioOwnerListener adapts the shared audio player's two async callbacks
// (§4.6) back onto the Player that currently owns it, guarded by the same
// ownership token startAudioLocked already hands out — a listener bound to
// a clip that has since been superseded by a newer owner must not mutate
// that clip's state.
type audioOwnerListener struct {
	player *Player
	token  int64
}

// PostAudioEOS implements audioplayer.Listener: the audio track ran out of
// data before (or independently of) the video track reaching EOS. Runs on
// the audio player's feeder goroutine, so it must take p.mu itself.
func (a *audioOwnerListener) PostAudioEOS(delay time.Duration) {
	if delay <= 0 {
		a.deliver()
		return
	}
	time.AfterFunc(delay, a.deliver)
}

func (a *audioOwnerListener) deliver() {
	p := a.player
	p.mu.Lock()
	if p.audioOwnerToken != a.token {
		p.mu.Unlock()
		return
	}
	p.state.set(FlagAudioAtEOS)
	p.onStreamDoneLocked(decoder.Result{Status: decoder.StatusEndOfStream})
	p.mu.Unlock()
}

// PostAudioSeekComplete implements audioplayer.Listener. finishSeekIfNecessaryLocked
// already notifies MEDIA_SEEK_COMPLETE synchronously right after calling
// SeekTo (this module's gst backend performs SeekTo synchronously), so this
// callback is intentionally a no-op rather than a second notification.
func (a *audioOwnerListener) PostAudioSeekComplete() {}
