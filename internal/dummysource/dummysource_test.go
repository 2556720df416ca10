package dummysource

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/visiona/previewplayer/internal/decoder"
)

func TestSilentAudio_EmitsZeroedPCMUntilDuration(t *testing.T) {
	src := NewSilentAudio(44100, 2, 40*time.Millisecond)

	var total int64
	for {
		res := src.Read(decoder.ReadOptions{})
		if res.Status == decoder.StatusEndOfStream {
			break
		}
		if res.Status != decoder.StatusOK {
			t.Fatalf("unexpected status %v", res.Status)
		}
		for _, b := range res.Frame.Data {
			if b != 0 {
				t.Fatalf("silent audio produced non-zero byte")
			}
		}
		total += int64(len(res.Frame.Data))
	}
	if total == 0 {
		t.Fatalf("expected some PCM data before EOS")
	}
}

func TestSilentAudio_SetDurationExtendsRuntime(t *testing.T) {
	src := NewSilentAudio(44100, 2, 10*time.Millisecond)

	res := src.Read(decoder.ReadOptions{})
	if res.Status != decoder.StatusOK {
		t.Fatalf("expected first read to succeed, got %v", res.Status)
	}

	src.SetDuration(100 * time.Millisecond)

	count := 0
	for {
		res := src.Read(decoder.ReadOptions{})
		if res.Status == decoder.StatusEndOfStream {
			break
		}
		count++
		if count > 100 {
			t.Fatalf("duration extension did not take effect")
		}
	}
}

func TestSilentAudio_ComponentName(t *testing.T) {
	src := NewSilentAudio(44100, 2, time.Second)
	if got := src.ComponentName(); got != "DummyAudioSource" {
		t.Fatalf("ComponentName() = %q, want DummyAudioSource", got)
	}
}

func TestStillImage_EmitsSameFrameUntilDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.rgb")
	width, height := 4, 2
	raw := make([]byte, width*height*3)
	for i := range raw {
		raw[i] = byte(i)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	src, err := NewStillImage(path, width, height, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("NewStillImage: %v", err)
	}

	seen := 0
	for {
		res := src.Read(decoder.ReadOptions{})
		if res.Status == decoder.StatusEndOfStream {
			break
		}
		if res.Status != decoder.StatusOK {
			t.Fatalf("unexpected status %v", res.Status)
		}
		if len(res.Frame.Data) != len(raw) {
			t.Fatalf("frame size = %d, want %d", len(res.Frame.Data), len(raw))
		}
		for i, b := range res.Frame.Data {
			if b != raw[i] {
				t.Fatalf("frame byte %d = %d, want %d", i, b, raw[i])
			}
		}
		seen++
		if seen > 1000 {
			t.Fatalf("still image never reached EOS")
		}
	}
	if seen == 0 {
		t.Fatalf("expected at least one frame before EOS")
	}
}

func TestStillImage_ComponentNameAndIsStill(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.rgb")
	raw := make([]byte, 2*2*3)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	src, err := NewStillImage(path, 2, 2, time.Second)
	if err != nil {
		t.Fatalf("NewStillImage: %v", err)
	}
	if got := src.ComponentName(); got != "DummyVideoSource" {
		t.Fatalf("ComponentName() = %q, want DummyVideoSource", got)
	}
	if !src.IsStillImage() {
		t.Fatalf("IsStillImage() = false, want true")
	}
}

func TestStillImage_ShortFileIsRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.rgb")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := NewStillImage(path, 4, 4, time.Second); err == nil {
		t.Fatalf("expected error for undersized RGB file")
	}
}
