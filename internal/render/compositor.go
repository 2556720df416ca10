package render

import (
	"fmt"
	"sync"

	"github.com/visiona/previewplayer/internal/decoder"
)

// fadeRampFrames is how many consecutive active frames a fade effect takes
// to ramp from 0 to full strength. The per-frame effect_mask does not carry
// a progress fraction (see §4.5/§4.8's render signature), so the
// compositor derives one itself by counting consecutive frames each fade
// kind has been continuously active, resetting on every mask transition to
// inactive. This is a compositor-local design decision, not specified
// behavior — see DESIGN.md.
const fadeRampFrames = 30

// Compositor is a software RenderInput that applies the effect chain
// directly to interleaved RGB24 frame bytes. It holds no reference to a
// real compositor window; TargetWindow returns an opaque per-instance
// handle only so external code has something to pass to a decoder.
type Compositor struct {
	mu sync.Mutex

	width, height int
	window        *TargetWindow
	overlay       *FramingOverlay

	fadeFromCount int
	fadeToCount   int
	lastMask      EffectKind
}

// NewCompositor creates a software compositor for a clip of the given
// initial geometry.
func NewCompositor(width, height int) *Compositor {
	return &Compositor{width: width, height: height, window: &TargetWindow{id: 1}}
}

// UpdateVideoSize implements RenderInput.
func (c *Compositor) UpdateVideoSize(meta VideoSizeMeta) {
	c.mu.Lock()
	c.width, c.height = meta.Width, meta.Height
	c.mu.Unlock()
}

// TargetWindow implements RenderInput.
func (c *Compositor) TargetWindow() *TargetWindow {
	return c.window
}

// SetFramingOverlay implements RenderInput.
func (c *Compositor) SetFramingOverlay(overlay *FramingOverlay) {
	c.mu.Lock()
	c.overlay = overlay
	c.mu.Unlock()
}

// Render implements RenderInput, applying every effect set in effectMask
// to frame.Data in place, in a fixed order: color transforms first (bw,
// sepia, negative, pink, green, fifties, color_rgb16), then gradient, then
// the framing overlay composite, then the fade-from/to-black screen
// effects last (they dim the fully composited result).
func (c *Compositor) Render(frame *decoder.Frame, effectMask EffectKind, mode Mode, isStillImage bool) error {
	if frame == nil || frame.RangeLength == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	pix := frame.Data[:frame.RangeLength]
	if len(pix)%3 != 0 {
		return fmt.Errorf("render: frame data length %d is not a multiple of 3 (RGB24)", len(pix))
	}

	if effectMask&EffectBW != 0 {
		applyBW(pix)
	}
	if effectMask&EffectSepia != 0 {
		applySepia(pix)
	}
	if effectMask&EffectNegative != 0 {
		applyNegative(pix)
	}
	if effectMask&EffectPink != 0 {
		applyTint(pix, 40, 0, 20)
	}
	if effectMask&EffectGreen != 0 {
		applyTint(pix, 0, 40, 0)
	}
	if effectMask&EffectFifties != 0 {
		applyFifties(pix)
	}
	if effectMask&EffectColorRGB16 != 0 {
		applyRGB16Quantize(pix)
	}
	if effectMask&EffectGradient != 0 {
		applyGradient(pix, c.width, c.height)
	}
	if effectMask&EffectFraming != 0 && c.overlay != nil {
		applyOverlay(pix, c.width, c.height, c.overlay)
	}

	c.fadeFromCount = advanceRamp(effectMask&EffectFadeFromBlack != 0, c.fadeFromCount)
	c.fadeToCount = advanceRamp(effectMask&EffectFadeToBlack != 0, c.fadeToCount)

	if effectMask&EffectFadeFromBlack != 0 {
		applyFadeBlack(pix, 1-rampFraction(c.fadeFromCount))
	}
	if effectMask&EffectFadeToBlack != 0 {
		applyFadeBlack(pix, rampFraction(c.fadeToCount))
	}

	c.lastMask = effectMask
	return nil
}

func advanceRamp(active bool, count int) int {
	if !active {
		return 0
	}
	if count < fadeRampFrames {
		return count + 1
	}
	return count
}

func rampFraction(count int) float64 {
	return float64(count) / float64(fadeRampFrames)
}

func clampByte(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

func applyBW(pix []byte) {
	for i := 0; i < len(pix); i += 3 {
		r, g, b := pix[i], pix[i+1], pix[i+2]
		gray := byte((299*int(r) + 587*int(g) + 114*int(b)) / 1000)
		pix[i], pix[i+1], pix[i+2] = gray, gray, gray
	}
}

func applySepia(pix []byte) {
	for i := 0; i < len(pix); i += 3 {
		r, g, b := int(pix[i]), int(pix[i+1]), int(pix[i+2])
		pix[i] = clampByte((r*393 + g*769 + b*189) / 1000)
		pix[i+1] = clampByte((r*349 + g*686 + b*168) / 1000)
		pix[i+2] = clampByte((r*272 + g*534 + b*131) / 1000)
	}
}

func applyNegative(pix []byte) {
	for i := range pix {
		pix[i] = 255 - pix[i]
	}
}

func applyTint(pix []byte, dr, dg, db int) {
	for i := 0; i < len(pix); i += 3 {
		pix[i] = clampByte(int(pix[i]) + dr)
		pix[i+1] = clampByte(int(pix[i+1]) + dg)
		pix[i+2] = clampByte(int(pix[i+2]) + db)
	}
}

// applyFifties posterizes to a small palette and boosts warm tones,
// approximating a dated, low-fidelity film look.
func applyFifties(pix []byte) {
	const levels = 5
	step := 255 / (levels - 1)
	for i := 0; i < len(pix); i += 3 {
		for c := 0; c < 3; c++ {
			v := int(pix[i+c])
			v = ((v + step/2) / step) * step
			pix[i+c] = clampByte(v)
		}
		pix[i] = clampByte(int(pix[i]) + 15) // warm tint
	}
}

// applyRGB16Quantize simulates reduced color depth (RGB565: 5/6/5 bits per
// channel).
func applyRGB16Quantize(pix []byte) {
	for i := 0; i < len(pix); i += 3 {
		pix[i] = quantizeChannel(pix[i], 5)
		pix[i+1] = quantizeChannel(pix[i+1], 6)
		pix[i+2] = quantizeChannel(pix[i+2], 5)
	}
}

func quantizeChannel(v byte, bits int) byte {
	levels := 1 << bits
	step := 256 / levels
	return clampByte((int(v) / step) * step)
}

// applyGradient darkens linearly from top to bottom of the frame.
func applyGradient(pix []byte, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	rowBytes := width * 3
	for row := 0; row*rowBytes < len(pix) && row < height; row++ {
		factor := 1.0 - 0.5*float64(row)/float64(height)
		start := row * rowBytes
		end := start + rowBytes
		if end > len(pix) {
			end = len(pix)
		}
		for i := start; i < end; i++ {
			pix[i] = clampByte(int(float64(pix[i]) * factor))
		}
	}
}

// applyOverlay alpha-composites overlay.RGBA onto pix, both assumed to
// describe the same width x height geometry.
func applyOverlay(pix []byte, width, height int, overlay *FramingOverlay) {
	if overlay == nil || len(overlay.RGBA) == 0 {
		return
	}
	pixelCount := width * height
	for p := 0; p < pixelCount; p++ {
		srcOff := p * 4
		dstOff := p * 3
		if srcOff+4 > len(overlay.RGBA) || dstOff+3 > len(pix) {
			break
		}
		a := float64(overlay.RGBA[srcOff+3]) / 255.0
		if a == 0 {
			continue
		}
		for c := 0; c < 3; c++ {
			src := float64(overlay.RGBA[srcOff+c])
			dst := float64(pix[dstOff+c])
			pix[dstOff+c] = clampByte(int(src*a + dst*(1-a)))
		}
	}
}

// applyFadeBlack blends pix toward black by fraction (0 = unchanged, 1 =
// fully black).
func applyFadeBlack(pix []byte, fraction float64) {
	if fraction <= 0 {
		return
	}
	if fraction > 1 {
		fraction = 1
	}
	keep := 1 - fraction
	for i := range pix {
		pix[i] = clampByte(int(float64(pix[i]) * keep))
	}
}
