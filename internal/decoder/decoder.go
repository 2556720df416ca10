package decoder

import "context"

// Decoder abstracts a single audio or video track's decode path: start,
// stop, and pull-style reads with optional seek hints. Implementations are
// not required to be safe for concurrent use; the player core only ever
// calls into a given Decoder from its own mutex-serialized video event loop
// or audio callback path.
type Decoder interface {
	// Start opens the underlying source/decoder. It must be cheap to call
	// again after Stop (re-Start is expected across seeks in some
	// implementations; the player core's Reset pairs Stop with
	// AwaitRelease and does not Start the same handle again).
	Start(ctx context.Context) error

	// Stop releases decode resources. It may return before the underlying
	// resource has fully released; callers that need to know when release
	// has truly completed must use AwaitRelease.
	Stop() error

	// AwaitRelease blocks until resources freed by Stop have actually been
	// released by the backend, or ctx is done. Abstracts §5's "spin until
	// the weak reference is gone" suspension point: re-instantiating a
	// hardware codec handle too soon after Stop can fail on some backends.
	// Implementations with no such asynchronous release simply return nil
	// immediately.
	AwaitRelease(ctx context.Context) error

	// Read pulls the next frame, honoring any seek hint in opts.
	Read(opts ReadOptions) Result

	// GetFormat returns the track's current format. Safe to call at any
	// time after Start; implementations should return a zero Format before
	// the first frame if the format is not yet known.
	GetFormat() (Format, error)

	// ComponentName identifies the decoder implementation, used by the
	// state machine to detect same-kind transitions between clips (e.g.
	// "DummyAudioSource" -> "DummyAudioSource" means no real swap needed).
	ComponentName() string
}
