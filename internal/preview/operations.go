package preview

import (
	"fmt"

	"github.com/visiona/previewplayer/internal/eventqueue"
)

// SetDataSource implements §4.7's set_data_source: requires no PREPARING,
// clears state, stores the clip configuration.
func (p *Player) SetDataSource(clip ClipContext) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.has(FlagPreparing) {
		return ErrAlreadyPreparing
	}
	p.resetStateLocked()
	p.clip = clip
	return nil
}

// LoadEffectsSettings installs the clip's ordered effect list.
func (p *Player) LoadEffectsSettings(effects []EffectDescriptor) {
	p.mu.Lock()
	p.effects = effects
	p.mu.Unlock()
}

// LoadAudioMixSettings installs the clip's audio-mix overlay context.
func (p *Player) LoadAudioMixSettings(mix AudioMixContext) {
	p.mu.Lock()
	p.audioMix = mix
	p.mu.Unlock()
}

// Prepare implements §4.7's synchronous prepare: a no-op if already
// PREPARED, an error if a prepare is already in flight, otherwise blocks
// on the prepared condition until PREPARED or PREPARE-CANCELLED.
func (p *Player) Prepare() error {
	p.mu.Lock()
	if p.state.has(FlagPrepared) {
		p.mu.Unlock()
		return nil
	}
	if p.state.has(FlagPreparing) {
		p.mu.Unlock()
		return ErrAlreadyPreparing
	}
	if !p.beginPrepareLocked() {
		p.mu.Unlock()
		p.notifyError(errCodeForQueue)
		return ErrNoDataSource
	}
	for !p.state.has(FlagPrepared) && !p.state.has(FlagPrepareCancelled) {
		p.cond.Wait()
	}
	cancelled := p.state.has(FlagPrepareCancelled)
	p.mu.Unlock()
	if cancelled {
		return ErrPrepareCancelled
	}
	return nil
}

// PrepareAsync implements §4.7's prepareAsync: posts the prepare event and
// returns immediately; MEDIA_PREPARED (or MEDIA_ERROR) arrives later via
// the listener.
func (p *Player) PrepareAsync() error {
	p.mu.Lock()
	alreadyPrepared := p.state.has(FlagPrepared)
	preparing := p.state.has(FlagPreparing)
	var postOK bool
	if !alreadyPrepared && !preparing {
		postOK = p.beginPrepareLocked()
	}
	p.mu.Unlock()

	switch {
	case alreadyPrepared:
		p.notify(Notification{Code: MediaPrepared})
		return nil
	case preparing:
		return ErrAlreadyPreparing
	case !postOK:
		p.notifyError(errCodeForQueue)
		return ErrNoDataSource
	}
	return nil
}

// beginPrepareLocked sets PREPARING and posts the async-prepare event,
// reporting whether the post succeeded. Must be called with p.mu held.
func (p *Player) beginPrepareLocked() bool {
	p.state.set(FlagPreparing)
	p.state.clear(FlagPrepareCancelled)
	id, err := p.queue.Post("prepare", func(eventqueue.ID) { p.prepareAsyncEvent() })
	if err != nil {
		p.state.clear(FlagPreparing)
		return false
	}
	p.prepareEventID = id
	return true
}

const errCodeForQueue = -1

// prepareAsyncEvent implements §4.7's prepare_async_event. Runs on the
// event queue's worker goroutine, acquiring p.mu itself (the queue worker
// always takes the player mutex first, per §5's ordering guarantee).
func (p *Player) prepareAsyncEvent() {
	p.mu.Lock()
	if p.state.has(FlagPrepareCancelled) {
		p.state.clear(FlagPreparing)
		p.cond.Broadcast()
		p.mu.Unlock()
		return
	}
	clip := p.clip
	factory := p.factory
	p.mu.Unlock()

	video, videoErr := factory.OpenVideo(clip)
	if p.checkCancelledDuringPrepare() {
		return
	}
	audio, audioErr := factory.OpenAudio(clip)
	if p.checkCancelledDuringPrepare() {
		return
	}

	if videoErr != nil && audioErr != nil {
		p.mu.Lock()
		p.state.clear(FlagPreparing)
		p.cond.Broadcast()
		p.mu.Unlock()
		p.notifyError(1)
		return
	}

	if video != nil {
		if err := video.Start(p.ctx); err != nil {
			video = nil
		}
	}
	if audio != nil {
		if err := audio.Start(p.ctx); err != nil {
			audio = nil
		}
	}

	p.mu.Lock()
	if p.state.has(FlagPrepareCancelled) {
		p.state.clear(FlagPreparing)
		p.cond.Broadcast()
		p.mu.Unlock()
		if video != nil {
			video.Stop()
		}
		if audio != nil {
			audio.Stop()
		}
		return
	}
	p.src = sources{video: video, audio: audio}
	p.setDurationUs(clip.DurationUs())
	p.state.clear(FlagPreparing)
	p.state.set(FlagPrepared)
	p.cond.Broadcast()
	p.mu.Unlock()

	p.notify(Notification{Code: MediaPrepared})
}

func (p *Player) checkCancelledDuringPrepare() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.has(FlagPrepareCancelled) {
		p.state.clear(FlagPreparing)
		p.cond.Broadcast()
		return true
	}
	return false
}

// Reset implements §4.7's reset: cancels an in-flight prepare and waits
// for it to drain, cancels pending events, stops and releases sources,
// and zeroes timestamps and flags.
func (p *Player) Reset() error {
	p.mu.Lock()
	if p.state.has(FlagPreparing) {
		p.state.set(FlagPrepareCancelled)
		for p.state.has(FlagPreparing) {
			p.cond.Wait()
		}
	}
	if p.videoEventPending {
		p.queue.Cancel(p.videoEventID)
		p.videoEventPending = false
	}
	video, audio := p.src.video, p.src.audio
	p.src = sources{}
	p.resetStateLocked()
	p.mu.Unlock()

	var firstErr error
	if video != nil {
		if err := video.Stop(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("preview: stop video source: %w", err)
		}
		_ = video.AwaitRelease(p.ctx)
	}
	if audio != nil {
		if err := audio.Stop(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("preview: stop audio source: %w", err)
		}
		_ = audio.AwaitRelease(p.ctx)
	}
	return firstErr
}

// resetStateLocked zeroes the player's mutable state. Must be called with
// p.mu held. Does not touch p.clip (callers that need a fresh clip call
// SetDataSource afterwards, which itself calls this).
func (p *Player) resetStateLocked() {
	p.state = bitset{}
	p.seek = seekState{}
	p.videoTimeUs = 0
	p.lastRenderedTimeMs = 0
	p.heldFrame = nil
	p.framingSignalled = false
	p.progressFrameSeen = 0
	p.notifiedStartNext = false
	p.deltaUs = 0
}
