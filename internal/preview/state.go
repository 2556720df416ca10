// Package preview implements the single-clip preview player core: the
// playback state machine (C7), the per-frame video event loop (C8), the
// seek/EOS coordinator (C9), and the public controller surface (C10).
// Grounded throughout on the teacher's mutex-guarded state struct plus
// condition-variable-signalled transitions — the same shape
// References/orion-prototipe/internal/core uses for its own run/pause
// orchestrator — generalized from a single run/pause flag to the full
// player state bitmask described below.
package preview

// Flag is a bit in the player's state bitmask (§3). All flags are mutated
// only under Player.mu.
type Flag uint32

const (
	FlagPlaying Flag = 1 << iota
	FlagLooping
	FlagAutoLooping
	FlagFirstFrame
	FlagPreparing
	FlagPrepared
	FlagPrepareCancelled
	FlagAtEOS
	FlagVideoAtEOS
	FlagAudioAtEOS
	FlagCacheUnderrun
	FlagSeekPreview
	FlagAudioRunning
	FlagAudioPlayerStarted
	FlagInformedAVEOS
)

func (f Flag) String() string {
	names := map[Flag]string{
		FlagPlaying:            "PLAYING",
		FlagLooping:            "LOOPING",
		FlagAutoLooping:        "AUTO_LOOPING",
		FlagFirstFrame:         "FIRST_FRAME",
		FlagPreparing:          "PREPARING",
		FlagPrepared:           "PREPARED",
		FlagPrepareCancelled:   "PREPARE_CANCELLED",
		FlagAtEOS:              "AT_EOS",
		FlagVideoAtEOS:         "VIDEO_AT_EOS",
		FlagAudioAtEOS:         "AUDIO_AT_EOS",
		FlagCacheUnderrun:      "CACHE_UNDERRUN",
		FlagSeekPreview:        "SEEK_PREVIEW",
		FlagAudioRunning:       "AUDIO_RUNNING",
		FlagAudioPlayerStarted: "AUDIOPLAYER_STARTED",
		FlagInformedAVEOS:      "INFORMED_AV_EOS",
	}
	if n, ok := names[f]; ok {
		return n
	}
	return "UNKNOWN"
}

// bitset is a small bitmask helper shared by the state flags and the
// effect mask (render.EffectKind is its own type but the same shape).
type bitset struct {
	bits uint32
}

func (b *bitset) set(f Flag)          { b.bits |= uint32(f) }
func (b *bitset) clear(f Flag)        { b.bits &^= uint32(f) }
func (b *bitset) has(f Flag) bool     { return b.bits&uint32(f) != 0 }
func (b *bitset) setIf(f Flag, v bool) {
	if v {
		b.set(f)
	} else {
		b.clear(f)
	}
}

// SeekKind classifies the in-flight seek, if any. SeekVideoOnly models §3's
// three-state seek enum (NO-SEEK | SEEK | SEEK-VIDEO-ONLY) in full, but no
// operation in this package currently produces it: SeekTo always issues a
// SeekFull, and finishSeekIfNecessaryLocked's audio-seek step is
// unconditional on kind rather than skipping audio for a video-only seek.
// Kept for structural fidelity to the spec's enum rather than dropped,
// since a future caller needing to reposition video without disturbing the
// shared audio player's read head has a state to request it with; it is a
// modeled-but-unexercised variant, not dead code reachable only by mistake.
type SeekKind int

const (
	SeekNone SeekKind = iota
	SeekFull
	SeekVideoOnly
)

// seekState tracks at most one in-flight seek; a new SeekTo supersedes any
// pending one (§3's seek-state invariant).
type seekState struct {
	kind     SeekKind
	targetUs int64
}
