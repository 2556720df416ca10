package preview

import (
	"time"

	"github.com/visiona/previewplayer/internal/decoder"
	"github.com/visiona/previewplayer/internal/eventqueue"
	"github.com/visiona/previewplayer/internal/render"
)

// postVideoEventLocked schedules a video event after delay. Must be
// called with p.mu held.
func (p *Player) postVideoEventLocked(delay time.Duration) {
	id, err := p.queue.PostWithDelay("video", delay, func(eventqueue.ID) { p.runVideoEvent() })
	if err != nil {
		p.log.Error("post video event failed", "error", err)
		return
	}
	p.videoEventID = id
	p.videoEventPending = true
}

// runVideoEvent implements §4.8's video event loop. It acquires p.mu
// itself — the worker always takes the player mutex first, per §5.
func (p *Player) runVideoEvent() {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Step 1: if the event isn't pending it was cancelled after being
	// dequeued; do nothing.
	if !p.videoEventPending {
		return
	}
	p.videoEventPending = false

	// Step 2: a SEEK-PREVIEW frame has already been displayed by an
	// earlier tick; this one is a stray repost that must not render a
	// second frame. Normally unreachable, since step 15 below stops
	// reposting once the preview frame renders — kept as a safety net.
	if p.state.has(FlagSeekPreview) {
		p.state.clear(FlagSeekPreview)
		return
	}

	// Step 3: pause the audio side while a seek is in flight so its
	// demuxer head doesn't race the video seek.
	if p.seek.kind != SeekNone && p.hasAudioSource() {
		p.pauseAudioForSeekLocked()
	}

	if p.heldFrame == nil {
		status := p.fillHeldFrameLocked()
		if status == loopReturn {
			return
		}
	}
	if p.heldFrame == nil {
		// Defensive only: fillHeldFrameLocked returns loopContinue only
		// with a frame held. Nothing is reposted here.
		return
	}

	frame := p.heldFrame

	// Step 5.
	p.videoTimeUs = frame.PTSUs

	// Step 6: "start next clip" prefetch notification.
	remaining := p.getDurationUs() - (frame.PTSUs - p.clip.BeginCutMs*1000)
	if remaining <= prefetchWindowUs && !p.notifiedStartNext {
		p.notifiedStartNext = true
		p.mu.Unlock()
		p.notify(Notification{Code: NotifyStartNextPlayer})
		p.mu.Lock()
	}

	// Step 7: start the audio player if it exists but isn't running yet.
	if p.hasAudioSource() && !p.state.has(FlagAudioRunning) {
		p.startAudioLocked()
	}

	// Step 8: pick the time source and establish/recalibrate delta.
	now := p.timeSourceNowUs()
	if p.state.has(FlagFirstFrame) {
		p.deltaUs = now - frame.PTSUs
		p.state.clear(FlagFirstFrame)
	}
	if real, media, ok := p.audioBridge.MediaTimeMapping(); ok {
		p.deltaUs = real - media
	}

	// Step 9: lateness computation and AV-sync decision.
	lateness := now - frame.PTSUs - p.deltaUs
	if p.finishingSeek {
		lateness = 0
		p.finishingSeek = false
	}
	if lateness > lateDropThresholdUs {
		p.releaseHeldFrame()
		p.postVideoEventLocked(0)
		return
	}
	if lateness < earlyWaitThresholdUs {
		p.postVideoEventLocked(earlyRepostDelay)
		return
	}

	// Step 10: the renderer is constructed by the caller and passed to New
	// (NewCompositor in this module's wiring), so nothing is initialized
	// here; a frame strictly past end-cut behaves as EOS. The frame exactly at end-cut is still in range (§8's closed
	// interval begin_cut_ms <= frame_ts/1000 <= end_cut_ms) and renders.
	if frame.PTSUs > p.clip.EndCutMs*1000 {
		p.onStreamDoneLocked(decoder.Result{Status: decoder.StatusEndOfStream})
		return
	}

	// Step 11: effect-window evaluation.
	mask, framingActive, framingIdx := p.effectMaskAt(frame.PTSUs)

	// Step 12: framing overlay transition signalling.
	if framingActive && !p.framingSignalled {
		p.framingSignalled = true
		p.framingEffectIdx = framingIdx
		p.mu.Unlock()
		p.notify(Notification{Code: NotifyOverlayUpdate, OverlayActive: true, OverlayIndex: framingIdx})
		p.mu.Lock()
	} else if !framingActive && p.framingSignalled {
		idx := p.framingEffectIdx
		p.framingSignalled = false
		p.mu.Unlock()
		p.notify(Notification{Code: NotifyOverlayUpdate, OverlayActive: false, OverlayIndex: idx})
		p.mu.Lock()
	}

	// Step 13: render, then release the frame.
	isStill := p.isStillImageClipLocked()
	if err := p.renderer.Render(frame, mask, p.clip.Mode, isStill); err != nil {
		p.log.Error("render failed", "error", err)
	}
	p.lastRenderedTimeMs = frame.PTSUs / 1000
	p.releaseHeldFrame()

	// Step 14: progress callback every progress_cb_interval frames.
	p.progressFrameSeen++
	interval := p.clip.ProgressCallbackIntervalFrames
	if interval <= 0 {
		interval = 1
	}
	if p.progressFrameSeen%interval == 0 {
		progressMs := p.clip.StoryboardOffsetMs + (frame.PTSUs/1000 - p.clip.BeginCutMs)
		p.mu.Unlock()
		p.notify(Notification{Code: MediaInfo, ProgressMs: progressMs})
		p.mu.Lock()
	}

	// Step 15: repost, or treat overrunning end-cut as EOS. The frame at
	// exactly end-cut was rendered above; EOS fires once a later frame
	// (or the next read) goes strictly past it.
	if frame.PTSUs > p.clip.EndCutMs*1000 {
		p.onStreamDoneLocked(decoder.Result{Status: decoder.StatusEndOfStream})
		return
	}

	// A tick that renders while paused is the SEEK-PREVIEW case (§4.7's
	// seek_to while paused): exactly one frame is shown and nothing else
	// happens until play. Mark it displayed instead of reposting.
	if !p.state.has(FlagPlaying) {
		p.state.set(FlagSeekPreview)
		return
	}

	delay := time.Duration(0)
	if isStill {
		delay = stillImageFrameDelay
	}
	p.postVideoEventLocked(delay)
}

type loopOutcome int

const (
	loopContinue loopOutcome = iota
	loopReturn
)

// fillHeldFrameLocked implements §4.8 step 4: loop reading from the video
// decoder (with the appropriate seek options) until a real, in-range
// frame is held (loopContinue) or EOS or an error has been handled
// (loopReturn). A format change is reported and the loop keeps reading;
// it never reposts.
func (p *Player) fillHeldFrameLocked() loopOutcome {
	for {
		opts := decoder.ReadOptions{}
		if p.seek.kind != SeekNone {
			target := p.seek.targetUs
			opts.SeekTargetUs = &target
			opts.SeekMode = decoder.SeekClosest
		}

		res := p.src.video.Read(opts)
		switch res.Status {
		case decoder.StatusInfoFormatChanged:
			format, err := p.src.video.GetFormat()
			if err == nil {
				p.mu.Unlock()
				p.notify(Notification{Code: MediaSetVideoSize, Width: format.Width, Height: format.Height})
				p.renderer.UpdateVideoSize(render.VideoSizeMeta{Width: format.Width, Height: format.Height})
				p.mu.Lock()
			}
			continue

		case decoder.StatusEndOfStream:
			p.finishSeekIfNecessaryLocked(p.videoTimeUs)
			p.state.set(FlagVideoAtEOS)
			p.state.set(FlagAudioAtEOS)
			p.videoTimeUs = p.clip.EndCutMs * 1000
			p.onStreamDoneLocked(res)
			return loopReturn

		case decoder.StatusError:
			p.onStreamDoneLocked(res)
			return loopReturn

		case decoder.StatusOK:
			if res.Frame == nil || res.Frame.RangeLength == 0 {
				continue
			}
			if p.seek.kind != SeekNone && res.Frame.PTSUs < p.seek.targetUs {
				continue
			}
			if res.Frame.PTSUs < p.clip.BeginCutMs*1000 {
				continue
			}
			p.heldFrame = res.Frame
			p.finishSeekIfNecessaryLocked(res.Frame.PTSUs)
			return loopContinue
		}
	}
}

