package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigWithoutFile(t *testing.T) {
	// The package directory carries no config.yaml, so this exercises the
	// env-only path: defaults must apply and no error may surface.
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, 24*time.Hour, cfg.Cleanup.Retention)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("SERVER.PORT", "9090")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
}
