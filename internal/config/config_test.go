// File: internal/config/config_test.go
package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger().Level)
	assert.Equal(t, "macro-cli", cfg.Logger().ServiceName)
	assert.Equal(t, 100*time.Millisecond, cfg.Engine().WaitTick)
	assert.Equal(t, 256, cfg.Engine().EventBuffer)
	assert.Zero(t, cfg.Engine().RunTimeout)
	assert.Equal(t, 40, cfg.Humanoid().ClickHoldMinMs)
	assert.Equal(t, 50.0, cfg.Humanoid().EventsPerSecond)
	assert.Equal(t, BackendMemory, cfg.Variables().Backend)
	assert.Equal(t, "macro:variables", cfg.Variables().Redis.Key)
	assert.False(t, cfg.Metrics().Enabled)
	assert.NoError(t, cfg.Validate())
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"wait tick", func(c *Config) { c.EngineCfg.WaitTick = 0 }, "engine.wait_tick must be a positive duration"},
		{"event buffer", func(c *Config) { c.EngineCfg.EventBuffer = -1 }, "engine.event_buffer"},
		{"run timeout", func(c *Config) { c.SetEngineRunTimeout(-time.Second) }, "engine.run_timeout"},
		{"click hold", func(c *Config) { c.HumanoidCfg.ClickHoldMaxMs = 1 }, "click hold range"},
		{"rate", func(c *Config) { c.HumanoidCfg.EventsPerSecond = 0 }, "events_per_second"},
		{"burst", func(c *Config) { c.HumanoidCfg.Burst = 0 }, "burst"},
		{"backend", func(c *Config) { c.VariablesCfg.Backend = "etcd" }, "unknown backend"},
		{"redis addr", func(c *Config) {
			c.VariablesCfg.Backend = BackendRedis
			c.VariablesCfg.Redis.Addr = ""
		}, "redis.addr"},
		{"metrics addr", func(c *Config) {
			c.SetMetricsEnabled(true)
			c.SetMetricsAddr("")
		}, "metrics.addr"},
		{"capture size", func(c *Config) { c.CaptureCfg.Width = 0 }, "capture.width"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

// -- Factory Function Tests --

func TestNewConfigFromViper(t *testing.T) {
	t.Run("Successful Load from YAML", func(t *testing.T) {
		yamlBytes := []byte(`
logger:
  level: debug
  log_file: ~/logs/macro.log
engine:
  wait_tick: 50ms
  run_timeout: 2m
variables:
  backend: " Redis "
  redis:
    addr: "cache:6379"
    db: 2
  initial:
    round: "0"
metrics:
  enabled: true
  addr: "127.0.0.1:9000"
`)
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlBytes)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)

		assert.Equal(t, "debug", cfg.Logger().Level)
		home, err := homedir.Dir()
		require.NoError(t, err)
		assert.Equal(t, home+"/logs/macro.log", cfg.Logger().LogFile)
		assert.Equal(t, 50*time.Millisecond, cfg.Engine().WaitTick)
		assert.Equal(t, 2*time.Minute, cfg.Engine().RunTimeout)
		assert.Equal(t, BackendRedis, cfg.Variables().Backend)
		assert.Equal(t, 2, cfg.Variables().Redis.DB)
		assert.Equal(t, map[string]string{"round": "0"}, cfg.Variables().Initial)
		assert.Equal(t, "127.0.0.1:9000", cfg.Metrics().Addr)
		// Defaults survive alongside file values.
		assert.Equal(t, 60, cfg.Humanoid().KeyHoldMs)
	})

	t.Run("Validation Failure", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("engine.wait_tick", "0s")

		cfg, err := NewConfigFromViper(v)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "engine.wait_tick")
	})

	t.Run("Environment Variable Binding", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		t.Setenv("MACRO_REDIS_PASSWORD", "s3cret")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "s3cret", cfg.Variables().Redis.Password)
	})
}
