package preview

import (
	"time"

	"github.com/visiona/previewplayer/internal/audioplayer"
	"github.com/visiona/previewplayer/internal/decoder"
)

// SeekTo implements §4.7's seek_to. It makes no seekability check: every
// source is handed the seek target, and ErrNotSeekable is never returned.
// If paused, notifies seek-complete immediately and schedules a single
// SEEK-PREVIEW frame (clearing the flag an earlier paused seek's preview
// left set, so this tick renders too); if playing, the seek is
// picked up by the video event loop. The FlagSeekPreview flag itself is
// set by runVideoEvent once that one frame has rendered (see videoloop.go
// step 15), not here — setting it before the tick runs would make step 2
// discard the preview tick before it reads a frame.
func (p *Player) SeekTo(targetUs int64) error {
	p.mu.Lock()

	p.seek = seekState{kind: SeekFull, targetUs: targetUs}

	if !p.state.has(FlagPlaying) {
		p.mu.Unlock()
		p.notify(Notification{Code: MediaSeekComplete})
		p.mu.Lock()
		p.state.clear(FlagSeekPreview)
		p.postVideoEventLocked(0)
		p.mu.Unlock()
		return nil
	}

	p.mu.Unlock()
	return nil
}

// isStillImageClipLocked reports whether this clip's video source is the
// synthetic still-image source, by component name per §4.3. Must be
// called with p.mu held (or before src is mutated concurrently).
func (p *Player) isStillImageClipLocked() bool {
	return p.src.video != nil && p.src.video.ComponentName() == "DummyVideoSource"
}

func (p *Player) isDummyAudioLocked() bool {
	return p.src.audio != nil && p.src.audio.ComponentName() == "DummyAudioSource"
}

// finishSeekIfNecessaryLocked implements §4.9's seek ordering: video
// seeks before audio. Called once the video event loop has accepted a
// frame at or after the requested target (or hit EOS while seeking).
func (p *Player) finishSeekIfNecessaryLocked(videoTsUs int64) {
	if p.seek.kind == SeekNone {
		return
	}
	target := videoTsUs
	if p.state.has(FlagVideoAtEOS) {
		target = p.seek.targetUs
	}

	if p.hasAudioSource() && p.audioHandle != nil {
		if err := p.audioHandle.Player().SeekTo(target); err != nil {
			p.log.Error("audio seek failed", "error", err)
		}
		// The audio listener's PostAudioSeekComplete is a no-op (see
		// audiolistener.go); MEDIA_SEEK_COMPLETE is notified synchronously
		// below, since this module's gst backend performs SeekTo
		// synchronously.
	}

	p.state.set(FlagFirstFrame)
	p.seek = seekState{}
	p.finishingSeek = true

	p.mu.Unlock()
	p.notify(Notification{Code: MediaSeekComplete})
	p.mu.Lock()
}

// pauseAudioForSeekLocked pauses the shared audio player while a video
// seek is in flight (§4.8 step 3). The audio source itself is not paused
// or stopped.
func (p *Player) pauseAudioForSeekLocked() {
	if p.audioHandle == nil {
		return
	}
	player := p.audioHandle.Player()
	if player != nil && player.IsStarted() {
		_ = player.Pause(false)
	}
	p.state.clear(FlagAudioRunning)
}

// startAudioLocked implements §4.8 step 7 together with §4.9's
// audio-player source-swap rule, invoked the first time a clip with an
// audio source reaches its first video frame.
func (p *Player) startAudioLocked() {
	if p.audioHandle == nil {
		return
	}
	p.audioHandle.Lock()
	defer p.audioHandle.Unlock()

	token := p.audioHandle.Acquire()
	p.audioOwnerToken = token

	current := p.audioHandle.PlayerLocked()
	current.SetListener(&audioOwnerListener{player: p, token: token})
	currentSrc := current.GetSource()

	swapNeeded := true
	if currentSrc != nil && currentSrc.ComponentName() == "DummyAudioSource" && p.isDummyAudioLocked() && p.isStillImageClipLocked() {
		// Glitch-avoidance path (§4.9): both the running source and this
		// clip's source are dummy, and this clip's video is also dummy —
		// extend the running source's duration instead of swapping. The
		// running source is normally the DecoderSource wrapper, so the
		// decoder it wraps is what gets extended.
		swapNeeded = false
		var running interface{} = currentSrc
		if ds, ok := currentSrc.(*audioplayer.DecoderSource); ok {
			running = ds.Unwrap()
		}
		if extendable, ok := running.(interface{ SetDuration(time.Duration) }); ok {
			extendable.SetDuration(time.Duration(p.clip.EndCutMs) * time.Millisecond)
		}
		_ = p.src.audio.Stop()
	}

	if swapNeeded {
		wasStarted := current.IsStarted()
		if wasStarted {
			_ = current.Pause(false)
		}
		src := audioplayer.NewDecoderSource(p.src.audio)
		_ = current.SetSource(src)
		current.SetAudioMixSettings(audioplayer.MixSettings{PrimaryVolume: p.audioMix.PrimaryVolume})
		current.SetAudioMixPCMHandle(p.audioMix.PCMHandle)
		current.SetAudioMixStoryboardSkim(audioplayer.StoryboardSkim{
			StoryboardTsUs: p.audioMix.StoryboardTsMs * 1000,
			BeginCutUs:     p.clip.BeginCutMs * 1000,
			Volume:         p.audioMix.PrimaryVolume,
		})
		if wasStarted {
			_ = current.Resume()
		} else {
			_ = current.Start(false)
		}
	}

	p.state.set(FlagAudioRunning)
	p.state.set(FlagAudioPlayerStarted)
}

// onStreamDoneLocked implements §4.9's stream-done handling.
func (p *Player) onStreamDoneLocked(res decoder.Result) {
	if res.Status != decoder.StatusEndOfStream {
		p.state.clear(FlagPlaying)
		p.state.set(FlagAtEOS)
		p.mu.Unlock()
		p.notifyError(2)
		p.mu.Lock()
		return
	}

	allDone := (!p.hasVideoSource() || p.state.has(FlagVideoAtEOS)) &&
		(!p.hasAudioSource() || p.state.has(FlagAudioAtEOS))
	if !allDone {
		return
	}
	p.state.set(FlagAtEOS)

	if p.state.has(FlagLooping) {
		p.seek = seekState{kind: SeekFull, targetUs: 0}
		p.state.clear(FlagAtEOS)
		p.state.clear(FlagVideoAtEOS)
		p.state.clear(FlagAudioAtEOS)
		p.postVideoEventLocked(0)
		return
	}

	p.state.clear(FlagPlaying)
	if !p.state.has(FlagInformedAVEOS) {
		p.state.set(FlagInformedAVEOS)
		p.mu.Unlock()
		p.notify(Notification{Code: MediaPlaybackComplete})
		p.mu.Lock()
	}
}
