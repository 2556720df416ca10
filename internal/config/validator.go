package config

import (
	"fmt"
	"regexp"
)

var instanceIDPattern = regexp.MustCompile(`^[a-z0-9\-]+$`)

// Validate checks cfg for internal consistency and fills in defaults,
// mirroring References/orion-prototipe/internal/config/validator.go's
// validate-then-default-fill shape.
func Validate(cfg *Config) error {
	if cfg.InstanceID == "" {
		return fmt.Errorf("instance_id is required")
	}
	if !instanceIDPattern.MatchString(cfg.InstanceID) {
		return fmt.Errorf("instance_id must match pattern [a-z0-9-]+")
	}

	if cfg.ShutdownTimeoutS <= 0 {
		cfg.ShutdownTimeoutS = 5
	}

	if cfg.AudioOut.SampleRateHz <= 0 {
		cfg.AudioOut.SampleRateHz = 44100
	}
	if cfg.AudioOut.Channels <= 0 {
		cfg.AudioOut.Channels = 2
	}

	if len(cfg.Storyboard) == 0 {
		return fmt.Errorf("storyboard must contain at least one clip")
	}
	for i, clip := range cfg.Storyboard {
		if err := validateClip(clip); err != nil {
			return fmt.Errorf("storyboard[%d]: %w", i, err)
		}
	}

	if cfg.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required")
	}
	if cfg.MQTT.Topics.Control == "" {
		cfg.MQTT.Topics.Control = fmt.Sprintf("previewplayer/control/%s", cfg.InstanceID)
	}
	if cfg.MQTT.Topics.Status == "" {
		cfg.MQTT.Topics.Status = fmt.Sprintf("previewplayer/status/%s", cfg.InstanceID)
	}
	if cfg.MQTT.QoS == nil {
		cfg.MQTT.QoS = map[string]byte{"control": 1, "status": 0}
	}

	return nil
}

func validateClip(c ClipConfig) error {
	if c.URI == "" {
		return fmt.Errorf("uri is required")
	}
	if c.EndCutMs <= c.BeginCutMs {
		return fmt.Errorf("end_cut_ms (%d) must be greater than begin_cut_ms (%d)", c.EndCutMs, c.BeginCutMs)
	}
	if _, err := c.RenderMode(); err != nil {
		return err
	}
	for i, e := range c.Effects {
		if _, err := e.EffectKind(); err != nil {
			return fmt.Errorf("effects[%d]: %w", i, err)
		}
		if e.DurationMs <= 0 {
			return fmt.Errorf("effects[%d]: duration_ms must be > 0", i)
		}
	}
	return nil
}
