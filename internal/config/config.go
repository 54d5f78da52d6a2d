// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Engine() EngineConfig
	Humanoid() HumanoidConfig
	Variables() VariablesConfig
	Metrics() MetricsConfig
	Capture() CaptureConfig

	// Engine Setters
	SetEngineRunTimeout(d time.Duration)

	// Metrics Setters
	SetMetricsEnabled(bool)
	SetMetricsAddr(addr string)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	EngineCfg    EngineConfig    `mapstructure:"engine" yaml:"engine"`
	HumanoidCfg  HumanoidConfig  `mapstructure:"humanoid" yaml:"humanoid"`
	VariablesCfg VariablesConfig `mapstructure:"variables" yaml:"variables"`
	MetricsCfg   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
	CaptureCfg   CaptureConfig   `mapstructure:"capture" yaml:"capture"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig       { return c.LoggerCfg }
func (c *Config) Engine() EngineConfig       { return c.EngineCfg }
func (c *Config) Humanoid() HumanoidConfig   { return c.HumanoidCfg }
func (c *Config) Variables() VariablesConfig { return c.VariablesCfg }
func (c *Config) Metrics() MetricsConfig     { return c.MetricsCfg }
func (c *Config) Capture() CaptureConfig     { return c.CaptureCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetEngineRunTimeout(d time.Duration) { c.EngineCfg.RunTimeout = d }
func (c *Config) SetMetricsEnabled(b bool)            { c.MetricsCfg.Enabled = b }
func (c *Config) SetMetricsAddr(addr string)          { c.MetricsCfg.Addr = addr }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// EngineConfig configures macro execution.
type EngineConfig struct {
	// WaitTick is the polling tick of plain waits.
	WaitTick time.Duration `mapstructure:"wait_tick" yaml:"wait_tick"`
	// EventBuffer sizes each event bus subscription.
	EventBuffer int `mapstructure:"event_buffer" yaml:"event_buffer"`
	// RunTimeout bounds a whole run; zero means no limit.
	RunTimeout time.Duration `mapstructure:"run_timeout" yaml:"run_timeout"`
}

// VariablesConfig selects where macro variables live.
type VariablesConfig struct {
	Backend string            `mapstructure:"backend" yaml:"backend"`
	Redis   RedisConfig       `mapstructure:"redis" yaml:"redis"`
	Initial map[string]string `mapstructure:"initial" yaml:"initial"`
}

// Variable store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// RedisConfig holds the connection details of the redis variable store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
	// Key is the hash holding every variable.
	Key string `mapstructure:"key" yaml:"key"`
}

// MetricsConfig controls the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
}

// CaptureConfig sizes the placeholder frame written by dry runs.
type CaptureConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "macro-cli")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Engine --
	v.SetDefault("engine.wait_tick", "100ms")
	v.SetDefault("engine.event_buffer", 256)
	v.SetDefault("engine.run_timeout", "0s")

	// -- Humanoid --
	setHumanoidDefaults(v)

	// -- Variables --
	v.SetDefault("variables.backend", BackendMemory)
	v.SetDefault("variables.redis.addr", "localhost:6379")
	v.SetDefault("variables.redis.db", 0)
	v.SetDefault("variables.redis.key", "macro:variables")

	// -- Metrics --
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9464")

	// -- Capture --
	v.SetDefault("capture.width", 1280)
	v.SetDefault("capture.height", 720)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// The redis password never belongs in a config file.
	_ = v.BindEnv("variables.redis.password", "MACRO_REDIS_PASSWORD")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.LoggerCfg.LogFile != "" {
		expanded, err := homedir.Expand(cfg.LoggerCfg.LogFile)
		if err != nil {
			return nil, fmt.Errorf("invalid logger.log_file: %w", err)
		}
		cfg.LoggerCfg.LogFile = expanded
	}
	cfg.VariablesCfg.Backend = strings.ToLower(strings.TrimSpace(cfg.VariablesCfg.Backend))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.EngineCfg.WaitTick <= 0 {
		return fmt.Errorf("engine.wait_tick must be a positive duration")
	}
	if c.EngineCfg.EventBuffer < 0 {
		return fmt.Errorf("engine.event_buffer must not be negative")
	}
	if c.EngineCfg.RunTimeout < 0 {
		return fmt.Errorf("engine.run_timeout must not be negative")
	}
	if err := c.HumanoidCfg.Validate(); err != nil {
		return fmt.Errorf("humanoid configuration invalid: %w", err)
	}
	if err := c.VariablesCfg.Validate(); err != nil {
		return fmt.Errorf("variables configuration invalid: %w", err)
	}
	if c.MetricsCfg.Enabled && c.MetricsCfg.Addr == "" {
		return fmt.Errorf("metrics.addr is required when metrics are enabled")
	}
	if c.CaptureCfg.Width <= 0 || c.CaptureCfg.Height <= 0 {
		return fmt.Errorf("capture.width and capture.height must be positive")
	}
	return nil
}

// Validate checks the variable store selection.
func (vc *VariablesConfig) Validate() error {
	switch vc.Backend {
	case BackendMemory:
		return nil
	case BackendRedis:
		if vc.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for the redis backend")
		}
		if vc.Redis.Key == "" {
			return fmt.Errorf("redis.key is required for the redis backend")
		}
		return nil
	default:
		return fmt.Errorf("unknown backend %q (expected %s or %s)", vc.Backend, BackendMemory, BackendRedis)
	}
}
