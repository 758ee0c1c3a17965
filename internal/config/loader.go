// Package config loads process configuration with the usual precedence:
// runtime overrides > environment variables > config file > defaults.
//
// The config file is optional. When present it is skong.yaml in the
// working directory; environment variables use the SKONG_ prefix with
// dots replaced by underscores (logging.level -> SKONG_LOGGING_LEVEL).
package config

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config is the fully resolved process configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Server    ServerConfig    `mapstructure:"server"`
}

// LoggingConfig controls the CLI logger.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Profile string `mapstructure:"profile"`
}

// SchedulerConfig carries batch submission defaults. Command-line flags
// override these per invocation.
type SchedulerConfig struct {
	// Binary is the scheduler submission command.
	Binary string `mapstructure:"binary"`

	// JobScript is the script filename expected in each project.
	JobScript string `mapstructure:"job_script"`

	// Limit caps successful submissions per sweep.
	Limit int `mapstructure:"limit"`

	// Rate limits scheduler invocations per second; zero is unlimited.
	Rate float64 `mapstructure:"rate"`
}

// ServerConfig configures the read-only status server.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

var (
	configMu  sync.RWMutex
	appConfig *Config
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "console")

	v.SetDefault("scheduler.binary", "qsub")
	v.SetDefault("scheduler.job_script", "job.pbs")
	v.SetDefault("scheduler.limit", 10)
	v.SetDefault("scheduler.rate", 0.0)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
}

// Load resolves configuration and caches it for GetConfig. Runtime
// overrides (nested maps keyed like the config file) take precedence
// over everything else.
func Load(ctx context.Context, overrides ...map[string]any) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("skong")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		// The config file is optional; anything else is a real failure.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("SKONG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Runtime overrides go in via Set: viper ranks explicit sets above
	// env vars, which MergeConfigMap would not.
	for _, override := range overrides {
		applyOverrides(v, "", override)
	}

	var cfg Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	configMu.Lock()
	appConfig = &cfg
	configMu.Unlock()
	return &cfg, nil
}

func applyOverrides(v *viper.Viper, prefix string, values map[string]any) {
	for key, value := range values {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			applyOverrides(v, full, nested)
			continue
		}
		v.Set(full, value)
	}
}

// GetConfig returns the most recently loaded config, or nil if Load has
// not been called.
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}
