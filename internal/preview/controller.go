package preview

import (
	"fmt"

	"github.com/visiona/previewplayer/internal/audioplayer"
	"github.com/visiona/previewplayer/internal/render"
)

// Controller is the public operations surface of §4.10: it owns one
// Player for the current clip and exposes the setters/getters a
// storyboard sequencer drives it with, plus the supplemental operations
// recovered from the original implementation
// (ReadFirstVideoFrame/LastRenderedTimeMs/ResetProgressTimestamp,
// Lock/Unlock).
type Controller struct {
	player *Player
}

// NewController wraps player.
func NewController(player *Player) *Controller {
	return &Controller{player: player}
}

// SetDataSource implements setDataSource(uri).
func (c *Controller) SetDataSource(clip ClipContext) error {
	return c.player.SetDataSource(clip)
}

// Prepare implements prepare.
func (c *Controller) Prepare() error { return c.player.Prepare() }

// PrepareAsync implements prepareAsync.
func (c *Controller) PrepareAsync() error { return c.player.PrepareAsync() }

// Play implements play.
func (c *Controller) Play() error { return c.player.Play() }

// Pause implements pause.
func (c *Controller) Pause() error { return c.player.Pause(false) }

// SeekTo implements seekTo(us).
func (c *Controller) SeekTo(targetUs int64) error { return c.player.SeekTo(targetUs) }

// Reset implements reset.
func (c *Controller) Reset() error { return c.player.Reset() }

// SetSurface implements setSurface(window) as a no-op: the compositor
// window itself is owned externally (§3's Lifecycle), and the renderer is
// not told that its target has changed.
func (c *Controller) SetSurface(window *render.TargetWindow) {
	// The concrete Compositor always returns the same handle for its
	// lifetime; a real compositor swap would call renderer.UpdateVideoSize
	// or an analogous re-bind hook here. No-op placeholder for the
	// external collaborator boundary.
	_ = window
}

// SetAudioSink is a no-op seam for the external audio sink collaborator;
// the shared audio player (SetAudioPlayer) is what the core actually
// drives.
func (c *Controller) SetAudioSink(sink string) { _ = sink }

// SetAudioPlayer implements setAudioPlayer(shared_player): binds the
// cross-clip shared audio player handle this player's clip will use.
func (c *Controller) SetAudioPlayer(handle *audioplayer.Handle) {
	c.player.mu.Lock()
	c.player.audioHandle = handle
	c.player.audioBridge.SetProvider(handle)
	c.player.mu.Unlock()
}

// LoadEffectsSettings implements loadEffectsSettings(list, n).
func (c *Controller) LoadEffectsSettings(effects []EffectDescriptor) {
	c.player.LoadEffectsSettings(effects)
}

// LoadAudioMixSettings implements loadAudioMixSettings(settings).
func (c *Controller) LoadAudioMixSettings(mix AudioMixContext) {
	c.player.LoadAudioMixSettings(mix)
}

// SetAudioMixPCMFileHandle implements setAudioMixPCMFileHandle(handle).
func (c *Controller) SetAudioMixPCMFileHandle(handle string) {
	c.player.mu.Lock()
	c.player.audioMix.PCMHandle = handle
	c.player.mu.Unlock()
}

// SetAudioMixStoryBoardParam implements
// setAudioMixStoryBoardParam(ts, begin_cut, volume).
func (c *Controller) SetAudioMixStoryBoardParam(storyboardTsMs, beginCutMs int64, volume float64) {
	c.player.mu.Lock()
	c.player.audioMix.StoryboardTsMs = storyboardTsMs
	c.player.audioMix.BeginCutMs = beginCutMs
	c.player.audioMix.PrimaryVolume = volume
	c.player.mu.Unlock()
}

// SetPlaybackBeginTime implements setPlaybackBeginTime(ms).
func (c *Controller) SetPlaybackBeginTime(ms int64) {
	c.player.mu.Lock()
	c.player.clip.BeginCutMs = ms
	c.player.mu.Unlock()
}

// SetPlaybackEndTime implements setPlaybackEndTime(ms).
func (c *Controller) SetPlaybackEndTime(ms int64) {
	c.player.mu.Lock()
	c.player.clip.EndCutMs = ms
	c.player.mu.Unlock()
}

// SetStoryboardStartTime implements setStoryboardStartTime(ms).
func (c *Controller) SetStoryboardStartTime(ms int64) {
	c.player.mu.Lock()
	c.player.clip.StoryboardOffsetMs = ms
	c.player.mu.Unlock()
}

// SetProgressCallbackInterval implements setProgressCallbackInterval(frames).
func (c *Controller) SetProgressCallbackInterval(frames int) {
	c.player.mu.Lock()
	c.player.clip.ProgressCallbackIntervalFrames = frames
	c.player.mu.Unlock()
}

// SetMediaRenderingMode implements setMediaRenderingMode(mode, size).
func (c *Controller) SetMediaRenderingMode(mode render.Mode, width, height int) {
	c.player.mu.Lock()
	c.player.clip.Mode = mode
	c.player.clip.Width = width
	c.player.clip.Height = height
	c.player.mu.Unlock()
}

// SetImageClipProperties implements setImageClipProperties(w, h).
func (c *Controller) SetImageClipProperties(width, height int) {
	c.player.mu.Lock()
	c.player.clip.Width = width
	c.player.clip.Height = height
	c.player.mu.Unlock()
}

// ReadFirstVideoFrame implements the original's decode-only "paused
// preview of the first in-range frame" operation (§12 of the expanded
// spec, recovered from PreviewPlayerBase.cpp's readFirstVideoFrame):
// reads forward until a frame at or after begin-cut is found, renders it,
// and returns without starting playback.
func (c *Controller) ReadFirstVideoFrame() error {
	p := c.player
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.hasVideoSource() {
		return fmt.Errorf("preview: no video source to read first frame from")
	}
	outcome := p.fillHeldFrameLocked()
	if outcome == loopReturn || p.heldFrame == nil {
		return nil
	}
	frame := p.heldFrame
	mask, _, _ := p.effectMaskAt(frame.PTSUs)
	isStill := p.isStillImageClipLocked()
	if err := p.renderer.Render(frame, mask, p.clip.Mode, isStill); err != nil {
		return fmt.Errorf("preview: render first frame: %w", err)
	}
	p.lastRenderedTimeMs = frame.PTSUs / 1000
	p.releaseHeldFrame()
	return nil
}

// LastRenderedTimeMs implements getLastRenderedTimeMs.
func (c *Controller) LastRenderedTimeMs() int64 {
	c.player.mu.Lock()
	defer c.player.mu.Unlock()
	return c.player.lastRenderedTimeMs
}

// ResetProgressTimestamp implements resetJniCallbackTimeStamp, renamed for
// a platform-neutral surface: resets the progress-frame counter, so the
// next progress callback comes a full progress_cb_interval of rendered
// frames after the reset (on the very next frame only when the interval
// is 1 or unset).
func (c *Controller) ResetProgressTimestamp() {
	c.player.mu.Lock()
	c.player.progressFrameSeen = 0
	c.player.mu.Unlock()
}

// Lock implements acquireLock: it takes the shared audio player handle's
// mutex (§5's "control" mutex), which startAudioLocked also holds across
// its source swap. The player's stream-done handling does not take it, so
// holding it does not exclude a playback-complete notification.
func (c *Controller) Lock() {
	if c.player.audioHandle != nil {
		c.player.audioHandle.Lock()
	}
}

// Unlock implements releaseLock.
func (c *Controller) Unlock() {
	if c.player.audioHandle != nil {
		c.player.audioHandle.Unlock()
	}
}

// SetListener installs the notification listener.
func (c *Controller) SetListener(l Listener) {
	c.player.mu.Lock()
	c.player.listener = l
	c.player.mu.Unlock()
}
