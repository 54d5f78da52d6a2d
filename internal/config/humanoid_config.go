// File: internal/config/humanoid_config.go
// HumanoidConfig holds the pacing parameters of simulated input: how long a
// mouse button or key is held and how many input events may be sent per
// second.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// HumanoidConfig tunes internal/humanoid.
type HumanoidConfig struct {
	ClickHoldMinMs  int     `mapstructure:"click_hold_min_ms" yaml:"click_hold_min_ms"`
	ClickHoldMaxMs  int     `mapstructure:"click_hold_max_ms" yaml:"click_hold_max_ms"`
	KeyHoldMs       int     `mapstructure:"key_hold_ms" yaml:"key_hold_ms"`
	EventsPerSecond float64 `mapstructure:"events_per_second" yaml:"events_per_second"`
	Burst           int     `mapstructure:"burst" yaml:"burst"`
}

func setHumanoidDefaults(v *viper.Viper) {
	v.SetDefault("humanoid.click_hold_min_ms", 40)
	v.SetDefault("humanoid.click_hold_max_ms", 110)
	v.SetDefault("humanoid.key_hold_ms", 60)
	v.SetDefault("humanoid.events_per_second", 50.0)
	v.SetDefault("humanoid.burst", 4)
}

// Validate checks the hold ranges and the rate.
func (h *HumanoidConfig) Validate() error {
	if h.ClickHoldMinMs < 0 || h.ClickHoldMaxMs < h.ClickHoldMinMs {
		return fmt.Errorf("click hold range [%d, %d] is invalid", h.ClickHoldMinMs, h.ClickHoldMaxMs)
	}
	if h.KeyHoldMs < 0 {
		return fmt.Errorf("key_hold_ms must not be negative")
	}
	if h.EventsPerSecond <= 0 {
		return fmt.Errorf("events_per_second must be positive")
	}
	if h.Burst < 1 {
		return fmt.Errorf("burst must be at least 1")
	}
	return nil
}
