package preview

import "github.com/visiona/previewplayer/internal/render"

// ClipContext is the per-clip configuration the controller loads before
// preparing (§3's "Clip context").
type ClipContext struct {
	URI             string
	BeginCutMs      int64
	EndCutMs        int64
	StoryboardOffsetMs int64
	Width, Height   int
	Mode            render.Mode
	ProgressCallbackIntervalFrames int
}

// DurationUs returns the clip's trimmed duration in microseconds.
func (c ClipContext) DurationUs() int64 {
	return (c.EndCutMs - c.BeginCutMs) * 1000
}

// EffectDescriptor is one entry in a clip's ordered effect list (§3).
// Start/Duration are expressed in milliseconds on the storyboard timeline,
// not the clip timeline — see effects.go for the transform applied at
// evaluation time.
type EffectDescriptor struct {
	Kind        render.EffectKind
	StartMs     int64
	DurationMs  int64
}

// AudioMixContext mirrors §3's "Audio-mix context".
type AudioMixContext struct {
	PCMHandle      string
	StoryboardTsMs int64
	BeginCutMs     int64
	PrimaryVolume  float64
}

// NotificationCode enumerates the listener notifications of §4.10/§6.
type NotificationCode int

const (
	MediaPrepared NotificationCode = iota
	MediaSetVideoSize
	MediaSeekComplete
	MediaPlaybackComplete
	MediaError
	MediaInfo
	// NotifyStartNextPlayer is the private "start next player" code
	// (0xAAAAAAAA in the original), posted near end-of-clip so the
	// controller can prefetch the next storyboard segment.
	NotifyStartNextPlayer
	// NotifyOverlayUpdate is the private "overlay update" code
	// (0xBBBBBBBB), posted when the framing effect transitions active/inactive.
	NotifyOverlayUpdate
)

// Notification is a single event delivered to a Listener.
type Notification struct {
	Code NotificationCode

	// ErrorCode is set only for MediaError.
	ErrorCode int
	// ProgressMs is set only for MediaInfo: a storyboard-relative
	// millisecond timestamp (the original's ext2 field).
	ProgressMs int64
	// Width/Height are set only for MediaSetVideoSize.
	Width, Height int
	// OverlayActive/OverlayIndex are set only for NotifyOverlayUpdate.
	OverlayActive bool
	OverlayIndex  int
}

// Listener receives player notifications. The core never holds Player.mu
// while calling into a Listener (§5's "public operations never hold the
// mutex across a callback into the listener").
type Listener interface {
	Notify(n Notification)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Notification)

func (f ListenerFunc) Notify(n Notification) { f(n) }
