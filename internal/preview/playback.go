package preview

// Play implements §4.7's play transition.
func (p *Player) Play() error {
	p.mu.Lock()
	prepared := p.state.has(FlagPrepared)
	p.mu.Unlock()

	if !prepared {
		if err := p.Prepare(); err != nil {
			return err
		}
	}

	p.mu.Lock()
	p.state.clear(FlagCacheUnderrun)
	p.state.clear(FlagInformedAVEOS)
	// A seek-preview frame only stops reposting until the next play; clear
	// it here so the stray-repost guard in runVideoEvent's step 2 doesn't
	// discard this resumed playback's first tick.
	p.state.clear(FlagSeekPreview)
	p.state.set(FlagPlaying)
	p.state.set(FlagFirstFrame)
	p.mu.Unlock()

	// The audio start/resume/swap decision (§4.9) happens lazily in
	// startAudioLocked on the first video frame (§4.8 step 7), since it
	// depends on the shared player's currently-bound source — known only
	// once the video event loop is running.
	p.mu.Lock()
	p.postVideoEventLocked(0)
	p.mu.Unlock()
	return nil
}

// Pause implements §4.7's pause(at_eos).
func (p *Player) Pause(atEOS bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.videoEventPending {
		p.queue.Cancel(p.videoEventID)
		p.videoEventPending = false
	}

	if p.audioHandle != nil {
		player := p.audioHandle.Player()
		if player != nil && player.IsStarted() {
			_ = player.Pause(atEOS)
		}
	}

	p.state.clear(FlagPlaying)
	p.state.clear(FlagAudioRunning)
	return nil
}
