// Package render implements the renderer-input side of the player core:
// an effect-aware frame sink bound to a compositor surface. The actual
// compositor/window is an external collaborator per scope; this package
// defines the contract (RenderInput) and a concrete software compositor
// that applies the fixed-order effect chain on top of raw RGB frames.
//
// No example or reference repo in the retrieved pack imports a third-party
// image-effects library (grep across _examples/ and other_examples/ turned
// up nothing beyond stdlib image/color usage anywhere in the corpus), so
// this is the one component grounded on the standard library by necessity
// rather than choice — see DESIGN.md.
package render

import "github.com/visiona/previewplayer/internal/decoder"

// EffectKind is a single bit in an effect bitmask.
type EffectKind uint32

const (
	EffectNone         EffectKind = 0
	EffectFadeFromBlack EffectKind = 1 << 0
	EffectFadeToBlack  EffectKind = 1 << 1
	EffectBW           EffectKind = 1 << 2
	EffectPink         EffectKind = 1 << 3
	EffectGreen        EffectKind = 1 << 4
	EffectSepia        EffectKind = 1 << 5
	EffectNegative     EffectKind = 1 << 6
	EffectFraming      EffectKind = 1 << 7
	EffectFifties      EffectKind = 1 << 8
	EffectColorRGB16   EffectKind = 1 << 9
	EffectGradient     EffectKind = 1 << 10
)

// Mode selects how a frame is fit to the target window.
type Mode int

const (
	// ModeInvalid is the sentinel used before a clip configures its
	// rendering mode.
	ModeInvalid Mode = iota
	ModeResize
	ModeCrop
	ModeBlackBorders
)

// VideoSizeMeta describes a track's frame geometry, as reported whenever
// the decoder signals info_format_changed.
type VideoSizeMeta struct {
	Width, Height int
}

// TargetWindow is an opaque handle the decoder attaches its output to;
// owned by the external compositor, modeled here only as a marker the
// renderer can hand back.
type TargetWindow struct {
	id int
}

// FramingOverlay is the out-of-band RGBA buffer applied when EffectFraming
// is active, along with the index the controller needs to correlate the
// overlay-update notification with.
type FramingOverlay struct {
	Index int
	RGBA  []byte
	Width int
	Height int
}

// RenderInput is the handle the video event loop renders through. It is
// created with NewCompositor; cmd/previewd builds one for the daemon's
// lifetime and shares it across clips, and the interface has no destroy
// operation.
type RenderInput interface {
	// UpdateVideoSize is called whenever the decoder reports a format
	// change; the renderer must reinitialize any internal buffers sized
	// to the old geometry.
	UpdateVideoSize(meta VideoSizeMeta)

	// TargetWindow returns the handle the decoder should attach its
	// output surface to.
	TargetWindow() *TargetWindow

	// Render applies the fixed-order effect chain selected by effectMask
	// to frame and composites it onto the target, honoring mode and
	// whether the source is a still image (affects frame-rate-independent
	// caching decisions the compositor may make, not correctness).
	Render(frame *decoder.Frame, effectMask EffectKind, mode Mode, isStillImage bool) error

	// SetFramingOverlay installs (or clears, with a nil RGBA) the overlay
	// image applied while EffectFraming is active.
	SetFramingOverlay(overlay *FramingOverlay)
}
