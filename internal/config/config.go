// Package config loads the storyboard-segment configuration a previewd
// process plays back: an ordered list of clip contexts plus the MQTT
// control-plane connection settings. Grounded on
// References/orion-prototipe/internal/config/config.go's
// read-file-then-yaml.Unmarshal-then-Validate shape.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/visiona/previewplayer/internal/render"
)

// Config is the complete previewd configuration.
type Config struct {
	InstanceID       string         `yaml:"instance_id"`
	ShutdownTimeoutS int            `yaml:"shutdown_timeout_s"`
	AudioOut         AudioOutConfig `yaml:"audio_out"`
	Storyboard       []ClipConfig   `yaml:"storyboard"`
	MQTT             MQTTConfig     `yaml:"mqtt"`
}

// AudioOutConfig configures the one shared audio player every clip's
// player is handed in turn.
type AudioOutConfig struct {
	SampleRateHz int `yaml:"sample_rate_hz"`
	Channels     int `yaml:"channels"`
}

// ClipConfig is one storyboard segment's on-disk configuration, mapping
// onto preview.ClipContext/EffectDescriptor/AudioMixContext at load time.
type ClipConfig struct {
	URI                            string          `yaml:"uri"`
	BeginCutMs                     int64           `yaml:"begin_cut_ms"`
	EndCutMs                       int64           `yaml:"end_cut_ms"`
	StoryboardOffsetMs             int64           `yaml:"storyboard_offset_ms"`
	Width                          int             `yaml:"width"`
	Height                         int             `yaml:"height"`
	Mode                           string          `yaml:"mode"` // resize|crop|black_borders
	ProgressCallbackIntervalFrames int             `yaml:"progress_callback_interval_frames"`
	Effects                        []EffectConfig  `yaml:"effects"`
	AudioMix                       AudioMixConfig  `yaml:"audio_mix"`
}

// EffectConfig is one entry of a clip's effect window list.
type EffectConfig struct {
	Kind       string `yaml:"kind"`
	StartMs    int64  `yaml:"start_ms"`
	DurationMs int64  `yaml:"duration_ms"`
}

// AudioMixConfig is a clip's audio-mix overlay settings.
type AudioMixConfig struct {
	PCMHandle      string  `yaml:"pcm_handle"`
	StoryboardTsMs int64   `yaml:"storyboard_ts_ms"`
	BeginCutMs     int64   `yaml:"begin_cut_ms"`
	PrimaryVolume  float64 `yaml:"primary_volume"`
}

// MQTTConfig mirrors the teacher's broker/topics/QoS grouping.
type MQTTConfig struct {
	Broker string          `yaml:"broker"`
	Topics MQTTTopics      `yaml:"topics"`
	QoS    map[string]byte `yaml:"qos"`
}

// MQTTTopics names the control-plane topics.
type MQTTTopics struct {
	Control string `yaml:"control"`
	Status  string `yaml:"status"`
}

// Load reads, parses, and validates path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: invalid %q: %w", path, err)
	}
	return &cfg, nil
}

// effectKinds maps the YAML effect name vocabulary to render.EffectKind.
var effectKinds = map[string]render.EffectKind{
	"fade_from_black": render.EffectFadeFromBlack,
	"fade_to_black":   render.EffectFadeToBlack,
	"bw":              render.EffectBW,
	"pink":            render.EffectPink,
	"green":           render.EffectGreen,
	"sepia":           render.EffectSepia,
	"negative":        render.EffectNegative,
	"framing":         render.EffectFraming,
	"fifties":         render.EffectFifties,
	"color_rgb16":     render.EffectColorRGB16,
	"gradient":        render.EffectGradient,
}

// EffectKind resolves e's YAML name to a render.EffectKind.
func (e EffectConfig) EffectKind() (render.EffectKind, error) {
	k, ok := effectKinds[e.Kind]
	if !ok {
		return render.EffectNone, fmt.Errorf("config: unknown effect kind %q", e.Kind)
	}
	return k, nil
}

// renderModes maps the YAML mode vocabulary to render.Mode.
var renderModes = map[string]render.Mode{
	"resize":        render.ModeResize,
	"crop":          render.ModeCrop,
	"black_borders": render.ModeBlackBorders,
}

// RenderMode resolves c's YAML mode name to a render.Mode.
func (c ClipConfig) RenderMode() (render.Mode, error) {
	if c.Mode == "" {
		return render.ModeResize, nil
	}
	m, ok := renderModes[c.Mode]
	if !ok {
		return render.ModeInvalid, fmt.Errorf("config: unknown rendering mode %q", c.Mode)
	}
	return m, nil
}
