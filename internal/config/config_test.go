package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/visiona/previewplayer/internal/render"
)

const validYAML = `
instance_id: demo-01
audio_out:
  sample_rate_hz: 48000
  channels: 2
storyboard:
  - uri: /media/clip1.mp4
    begin_cut_ms: 0
    end_cut_ms: 5000
    mode: crop
    effects:
      - kind: bw
        start_ms: 0
        duration_ms: 1000
mqtt:
  broker: tcp://localhost:1883
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "previewd.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}
	return path
}

func TestLoad_ValidConfigFillsDefaults(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ShutdownTimeoutS != 5 {
		t.Errorf("ShutdownTimeoutS = %d, want default 5", cfg.ShutdownTimeoutS)
	}
	if cfg.MQTT.Topics.Control != "previewplayer/control/demo-01" {
		t.Errorf("Control topic = %q", cfg.MQTT.Topics.Control)
	}
	if len(cfg.Storyboard) != 1 {
		t.Fatalf("expected 1 storyboard entry, got %d", len(cfg.Storyboard))
	}
	mode, err := cfg.Storyboard[0].RenderMode()
	if err != nil || mode != render.ModeCrop {
		t.Errorf("RenderMode() = %v, %v, want ModeCrop", mode, err)
	}
	kind, err := cfg.Storyboard[0].Effects[0].EffectKind()
	if err != nil || kind != render.EffectBW {
		t.Errorf("EffectKind() = %v, %v, want EffectBW", kind, err)
	}
}

func TestLoad_RejectsMissingInstanceID(t *testing.T) {
	_, err := Load(writeTemp(t, `
storyboard:
  - uri: x
    end_cut_ms: 100
mqtt:
  broker: tcp://localhost:1883
`))
	if err == nil {
		t.Fatal("expected an error for missing instance_id")
	}
}

func TestLoad_RejectsEmptyStoryboard(t *testing.T) {
	_, err := Load(writeTemp(t, `
instance_id: demo
mqtt:
  broker: tcp://localhost:1883
`))
	if err == nil {
		t.Fatal("expected an error for an empty storyboard")
	}
}

func TestLoad_RejectsBadCutOrdering(t *testing.T) {
	_, err := Load(writeTemp(t, `
instance_id: demo
storyboard:
  - uri: x
    begin_cut_ms: 1000
    end_cut_ms: 500
mqtt:
  broker: tcp://localhost:1883
`))
	if err == nil {
		t.Fatal("expected an error when end_cut_ms <= begin_cut_ms")
	}
}

func TestLoad_RejectsUnknownEffectKind(t *testing.T) {
	_, err := Load(writeTemp(t, `
instance_id: demo
storyboard:
  - uri: x
    end_cut_ms: 1000
    effects:
      - kind: not_a_real_effect
        duration_ms: 100
mqtt:
  broker: tcp://localhost:1883
`))
	if err == nil {
		t.Fatal("expected an error for an unknown effect kind")
	}
}

func TestLoad_RejectsMissingBroker(t *testing.T) {
	_, err := Load(writeTemp(t, `
instance_id: demo
storyboard:
  - uri: x
    end_cut_ms: 1000
`))
	if err == nil {
		t.Fatal("expected an error for a missing mqtt.broker")
	}
}
