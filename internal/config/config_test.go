package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "contact-scout.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 24, cfg.Store.CacheTTLHours)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, 3, cfg.Fetch.MaxRetries)
	assert.Equal(t, 20, cfg.Resolve.MaxLinks)
	assert.Equal(t, 10, cfg.Resolve.MaxSecondaryPages)
	assert.Equal(t, 5, cfg.Resolve.MaxWorkers)
	assert.Equal(t, "US", cfg.Resolve.PhoneRegion)
	assert.Equal(t, "facebook", cfg.Resolve.SupplementPlatform)
	assert.Contains(t, cfg.Links.AggregatorServices, "linktr.ee")
	assert.Contains(t, cfg.Links.SocialPlatforms["facebook"], "fb.com")
	assert.Empty(t, cfg.Google.APIKey)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONTACTSCOUT_STORE_DRIVER", "postgres")
	t.Setenv("CONTACTSCOUT_RESOLVE_MAX_WORKERS", "9")
	t.Setenv("CONTACTSCOUT_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 9, cfg.Resolve.MaxWorkers)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestDurationHelpers(t *testing.T) {
	assert.Equal(t, 15*time.Second, FetchConfig{TimeoutSecs: 15}.Timeout())
	assert.Equal(t, 48*time.Hour, StoreConfig{CacheTTLHours: 48}.CacheTTL())
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "chatty", Format: "json"}))
}
