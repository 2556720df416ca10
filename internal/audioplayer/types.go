// Package audioplayer defines the contract the player core uses against
// the externally owned, cross-clip shared audio player (§4.6, §9's
// "pointer aliasing between player and audio player" design note), plus a
// reference-counted Handle that models the sharing. internal/audioplayer/gst
// provides one concrete backend.
package audioplayer

import "time"

// MixSettings configures how a precomputed PCM overlay is blended with
// the primary track.
type MixSettings struct {
	PrimaryVolume float64 // 0..1, the primary track's volume factor
}

// StoryboardSkim is the per-clip-transition call that tells the mixer
// where on the storyboard the overlay begins and what this clip's
// begin-cut is, so the mixer can compute the overlay's read offset.
type StoryboardSkim struct {
	StoryboardTsUs int64
	BeginCutUs     int64
	Volume         float64
}

// EOSStatus reports whether the audio track has reached end of stream and,
// if not EOS, the reason reading stopped.
type EOSStatus struct {
	AtEOS bool
	Err   error
}

// Source is the minimal surface the audio player adapter needs from a
// track's decoder: pull PCM, know its own component name (to detect
// dummy-to-dummy swaps per §4.9), and be stoppable.
type Source interface {
	ComponentName() string
	Read() ([]byte, int64, bool, error) // data, pts_us, ok, err; ok=false at EOS
	Stop() error
}

// Player is the contract the player core holds against the shared audio
// player. All methods below may be called from any caller's player-mutex
// critical section; implementations must be safe for that (the shared
// instance is handed between successive clips' players, serialized by the
// controller-held lock exposed via Handle.Lock/Unlock).
type Player interface {
	// SetSource swaps in a new audio source. Returns an error if called
	// while the player is running on the old source in a way the backend
	// cannot hot-swap.
	SetSource(src Source) error
	GetSource() Source

	SetAudioMixSettings(settings MixSettings)
	SetAudioMixPCMHandle(handle string)
	SetAudioMixStoryboardSkim(skim StoryboardSkim)

	// SetListener (re)binds the callback target for PostAudioEOS/
	// PostAudioSeekComplete. The player core calls this every time it takes
	// ownership of the shared instance (§4.9's source-swap), so a stale
	// clip's player never receives callbacks meant for whichever clip
	// currently owns it.
	SetListener(l Listener)

	// Start begins playback. sourceAlreadyStarted tells the backend
	// whether the caller already called Source.Start equivalent-wise
	// (dummy sources are started by the player core itself before the
	// audio player swap, per §4.9).
	Start(sourceAlreadyStarted bool) error
	Pause(playPendingSamples bool) error
	Resume() error
	SeekTo(targetUs int64) error

	GetMediaTimeUs() int64
	GetMediaTimeMapping() (realTimeUs, mediaTimeUs int64, ok bool)
	ReachedEOS() EOSStatus
	IsSeeking() bool
	IsStarted() bool
}

// Listener receives the two callbacks the audio player adapter posts back
// into the owning PreviewPlayer (§4.6).
type Listener interface {
	PostAudioEOS(delay time.Duration)
	PostAudioSeekComplete()
}
