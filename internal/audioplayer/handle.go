package audioplayer

import (
	"fmt"
	"sync"
)

// Handle is a reference-counted, non-owning handle onto a shared Player
// instance, modeling §9's "pointer aliasing between player and audio
// player" design note: the audio player outlives any individual
// PreviewPlayer and is handed between the current and next clip's players
// under controller-managed lifetime. The embedded mutex, which the
// controller exposes via Lock/Unlock, is the "control" mutex from §5:
// the player core holds it across its source-swap sequence, and Player
// takes it only while fetching the shared instance. The player core's
// stream-done handling and its Reset do not take it.
//
// Only the player whose SetAudioPlayer (Acquire) was called most recently
// may issue control operations; Acquire records the current owner,
// WithOwner rejects stale callers, and Release ignores them.
type Handle struct {
	mu sync.Mutex

	player Player
	owner  int64
	nextID int64
}

// NewHandle wraps player in a shared Handle.
func NewHandle(player Player) *Handle {
	return &Handle{player: player}
}

// Lock acquires the controller-held mutex. Exposed to mirror
// acquireLock/releaseLock in §4.10 — callers that need to perform several
// operations on the underlying Player atomically (e.g. the source-swap
// sequence in §4.9) must hold this across all of them.
func (h *Handle) Lock() { h.mu.Lock() }

// Unlock releases the controller-held mutex.
func (h *Handle) Unlock() { h.mu.Unlock() }

// Acquire registers the caller as the current owner, returning a token
// that must be passed to subsequent calls through this handle (and to
// Release). Must be called with Lock held.
func (h *Handle) Acquire() int64 {
	h.nextID++
	h.owner = h.nextID
	return h.owner
}

// Release relinquishes ownership if token is still the current owner;
// otherwise it is a no-op (a stale player racing a newer setAudioPlayer
// call must not clobber the new owner). Must be called with Lock held.
func (h *Handle) Release(token int64) {
	if h.owner == token {
		h.owner = 0
	}
}

// WithOwner runs fn against the underlying Player only if token is still
// the current owner, returning an error otherwise. Must be called with
// Lock held.
func (h *Handle) WithOwner(token int64, fn func(Player) error) error {
	if h.owner != token {
		return fmt.Errorf("audioplayer: caller is not the current owner")
	}
	return fn(h.player)
}

// Player returns the underlying shared instance directly, for read-only
// queries (GetMediaTimeUs, GetMediaTimeMapping) that don't need ownership
// enforcement.
func (h *Handle) Player() Player {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.PlayerLocked()
}

// PlayerLocked returns the underlying shared instance without acquiring
// h.mu. Must be called with Lock already held (see Acquire/Release/
// WithOwner) — callers performing a multi-step sequence under Lock (e.g.
// the source-swap in §4.9) must use this instead of Player, which would
// deadlock by re-locking h.mu.
func (h *Handle) PlayerLocked() Player {
	return h.player
}

// MediaTimeUs implements clock.AudioTimeProvider.
func (h *Handle) MediaTimeUs() int64 {
	return h.Player().GetMediaTimeUs()
}

// MediaTimeMapping implements clock.AudioTimeProvider.
func (h *Handle) MediaTimeMapping() (realTimeUs, mediaTimeUs int64, ok bool) {
	return h.Player().GetMediaTimeMapping()
}
