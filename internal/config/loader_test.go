package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("LoadDefaults", func(t *testing.T) {
		cfg, err := Load(ctx)
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, "console", cfg.Logging.Profile)

		assert.Equal(t, "qsub", cfg.Scheduler.Binary)
		assert.Equal(t, "job.pbs", cfg.Scheduler.JobScript)
		assert.Equal(t, 10, cfg.Scheduler.Limit)
		assert.Equal(t, 0.0, cfg.Scheduler.Rate)

		assert.Equal(t, "localhost", cfg.Server.Host)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	})

	t.Run("RuntimeOverrides", func(t *testing.T) {
		overrides := map[string]any{
			"server": map[string]any{
				"port": 9000,
				"host": "0.0.0.0",
			},
			"logging": map[string]any{
				"level": "debug",
			},
		}

		cfg, err := Load(ctx, overrides)
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, "debug", cfg.Logging.Level)

		// Non-overridden values remain default.
		assert.Equal(t, "console", cfg.Logging.Profile)
		assert.Equal(t, 10, cfg.Scheduler.Limit)
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		t.Setenv("SKONG_SERVER_PORT", "3000")
		t.Setenv("SKONG_LOGGING_LEVEL", "warn")
		t.Setenv("SKONG_SCHEDULER_LIMIT", "3")

		cfg, err := Load(ctx)
		require.NoError(t, err)

		assert.Equal(t, 3000, cfg.Server.Port)
		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.Equal(t, 3, cfg.Scheduler.Limit)
	})

	t.Run("ConfigPrecedence", func(t *testing.T) {
		t.Setenv("SKONG_SERVER_PORT", "4000")

		overrides := map[string]any{
			"server": map[string]any{
				"port": 5000,
			},
		}

		cfg, err := Load(ctx, overrides)
		require.NoError(t, err)

		// Runtime overrides take precedence over env vars.
		assert.Equal(t, 5000, cfg.Server.Port)
	})

	t.Run("DurationFromEnv", func(t *testing.T) {
		t.Setenv("SKONG_SERVER_READ_TIMEOUT", "45s")
		t.Setenv("SKONG_SERVER_SHUTDOWN_TIMEOUT", "5m")

		cfg, err := Load(ctx)
		require.NoError(t, err)

		assert.Equal(t, 45*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, 5*time.Minute, cfg.Server.ShutdownTimeout)
	})
}

func TestGetConfig(t *testing.T) {
	ctx := context.Background()

	cfg, err := Load(ctx)
	require.NoError(t, err)

	retrieved := GetConfig()
	require.NotNil(t, retrieved)
	assert.Equal(t, cfg.Server.Port, retrieved.Server.Port)
	assert.Equal(t, cfg.Logging.Level, retrieved.Logging.Level)
}
