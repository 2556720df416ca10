package render

import (
	"testing"

	"github.com/visiona/previewplayer/internal/decoder"
)

func solidFrame(width, height int, r, g, b byte) *decoder.Frame {
	data := make([]byte, width*height*3)
	for i := 0; i < len(data); i += 3 {
		data[i], data[i+1], data[i+2] = r, g, b
	}
	return &decoder.Frame{Data: data, RangeLength: len(data)}
}

func TestCompositor_NoEffectsLeavesFrameUnchanged(t *testing.T) {
	c := NewCompositor(4, 4)
	frame := solidFrame(4, 4, 10, 20, 30)
	want := append([]byte(nil), frame.Data...)

	if err := c.Render(frame, EffectNone, ModeResize, false); err != nil {
		t.Fatalf("Render: %v", err)
	}
	for i := range want {
		if frame.Data[i] != want[i] {
			t.Fatalf("byte %d changed from %d to %d with no effects active", i, want[i], frame.Data[i])
		}
	}
}

func TestCompositor_BWGraysOutFrame(t *testing.T) {
	c := NewCompositor(2, 2)
	frame := solidFrame(2, 2, 200, 50, 50)

	if err := c.Render(frame, EffectBW, ModeResize, false); err != nil {
		t.Fatalf("Render: %v", err)
	}
	for i := 0; i < len(frame.Data); i += 3 {
		if frame.Data[i] != frame.Data[i+1] || frame.Data[i+1] != frame.Data[i+2] {
			t.Fatalf("pixel %d not fully desaturated: %v", i/3, frame.Data[i:i+3])
		}
	}
}

func TestCompositor_NegativeInvertsChannels(t *testing.T) {
	c := NewCompositor(1, 1)
	frame := solidFrame(1, 1, 10, 20, 30)

	if err := c.Render(frame, EffectNegative, ModeResize, false); err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := []byte{245, 235, 225}
	for i, w := range want {
		if frame.Data[i] != w {
			t.Fatalf("channel %d = %d, want %d", i, frame.Data[i], w)
		}
	}
}

func TestCompositor_FadeToBlackRampsAcrossFrames(t *testing.T) {
	c := NewCompositor(1, 1)

	var lastSum int
	for i := 0; i < fadeRampFrames; i++ {
		frame := solidFrame(1, 1, 200, 200, 200)
		if err := c.Render(frame, EffectFadeToBlack, ModeResize, false); err != nil {
			t.Fatalf("Render: %v", err)
		}
		sum := int(frame.Data[0]) + int(frame.Data[1]) + int(frame.Data[2])
		if i > 0 && sum > lastSum {
			t.Fatalf("fade-to-black brightness increased at frame %d: %d > %d", i, sum, lastSum)
		}
		lastSum = sum
	}
}

func TestCompositor_FadeRampResetsWhenInactive(t *testing.T) {
	c := NewCompositor(1, 1)
	for i := 0; i < fadeRampFrames; i++ {
		c.Render(solidFrame(1, 1, 200, 200, 200), EffectFadeToBlack, ModeResize, false)
	}
	// Deactivate, then reactivate: should start the ramp over (first frame
	// near-unchanged, not already fully black).
	c.Render(solidFrame(1, 1, 200, 200, 200), EffectNone, ModeResize, false)
	frame := solidFrame(1, 1, 200, 200, 200)
	c.Render(frame, EffectFadeToBlack, ModeResize, false)
	if frame.Data[0] == 0 {
		t.Fatalf("fade ramp did not reset after effect went inactive")
	}
}

func TestCompositor_FramingOverlayComposite(t *testing.T) {
	c := NewCompositor(1, 1)
	c.SetFramingOverlay(&FramingOverlay{
		Index:  0,
		Width:  1,
		Height: 1,
		RGBA:   []byte{255, 0, 0, 255},
	})
	frame := solidFrame(1, 1, 0, 0, 0)
	if err := c.Render(frame, EffectFraming, ModeResize, false); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if frame.Data[0] != 255 || frame.Data[1] != 0 || frame.Data[2] != 0 {
		t.Fatalf("overlay not fully composited: got %v", frame.Data)
	}
}

func TestCompositor_RejectsNonRGB24Length(t *testing.T) {
	c := NewCompositor(1, 1)
	frame := &decoder.Frame{Data: []byte{1, 2}, RangeLength: 2}
	if err := c.Render(frame, EffectBW, ModeResize, false); err == nil {
		t.Fatalf("expected error for non-multiple-of-3 frame data")
	}
}

func TestCompositor_EmptyFrameIsNoop(t *testing.T) {
	c := NewCompositor(1, 1)
	frame := &decoder.Frame{Data: nil, RangeLength: 0}
	if err := c.Render(frame, EffectBW, ModeResize, false); err != nil {
		t.Fatalf("Render on empty frame: %v", err)
	}
}
