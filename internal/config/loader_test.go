package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("TypedSections", func(t *testing.T) {
		v := viper.New()
		v.Set("store.driver", "libsql")
		v.Set("store.path", "/tmp/handlevet.db")
		v.Set("cache.ttl", "90s")
		v.Set("cache.max_size", 256)
		v.Set("rate_limit.max_requests", 5)
		v.Set("rate_limit.window", "30s")
		v.Set("retry.max_retries", 3)
		v.Set("retry.delay", "2s")
		v.Set("retry.exponential", true)
		v.Set("retry.timeout", "10s")
		v.Set("watch.debounce", "250ms")
		v.Set("cleanup.interval", "2m")
		v.Set("validator.reserved_extra", []string{"founder", "vip"})
		v.Set("logging.level", "debug")
		v.Set("logging.profile", "SIMPLE")
		v.Set("metrics.enabled", true)
		v.Set("metrics.port", 9104)

		cfg, err := Load(v)
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "libsql", cfg.Store.Driver)
		assert.Equal(t, "/tmp/handlevet.db", cfg.Store.Path)
		assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
		assert.Equal(t, 256, cfg.Cache.MaxSize)
		assert.Equal(t, 5, cfg.RateLimit.MaxRequests)
		assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
		assert.Equal(t, 3, cfg.Retry.MaxRetries)
		assert.Equal(t, 2*time.Second, cfg.Retry.Delay)
		assert.True(t, cfg.Retry.Exponential)
		assert.Equal(t, 10*time.Second, cfg.Retry.Timeout)
		assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
		assert.Equal(t, 2*time.Minute, cfg.Cleanup.Interval)
		assert.Equal(t, []string{"founder", "vip"}, cfg.Validator.ReservedExtra)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "SIMPLE", cfg.Logging.Profile)
		assert.True(t, cfg.Metrics.Enabled)
		assert.Equal(t, 9104, cfg.Metrics.Port)
	})

	t.Run("CommaSeparatedReservedExtra", func(t *testing.T) {
		v := viper.New()
		v.Set("validator.reserved_extra", "founder,vip")

		cfg, err := Load(v)
		require.NoError(t, err)
		assert.Equal(t, []string{"founder", "vip"}, cfg.Validator.ReservedExtra)
	})

	t.Run("StorePathDefaultsWhenUnset", func(t *testing.T) {
		t.Setenv("XDG_DATA_HOME", t.TempDir())

		cfg, err := Load(viper.New())
		require.NoError(t, err)
		assert.Equal(t, DefaultStorePath(), cfg.Store.Path)
		assert.True(t, strings.HasSuffix(cfg.Store.Path, "handlevet.db"))
	})

	t.Run("URLSkipsPathDefault", func(t *testing.T) {
		v := viper.New()
		v.Set("store.url", "libsql://example.turso.io")

		cfg, err := Load(v)
		require.NoError(t, err)
		assert.Empty(t, cfg.Store.Path)
		assert.Equal(t, "libsql://example.turso.io", cfg.Store.URL)
	})

	t.Run("GetReturnsLastLoaded", func(t *testing.T) {
		v := viper.New()
		v.Set("logging.level", "warn")

		cfg, err := Load(v)
		require.NoError(t, err)
		require.Same(t, cfg, Get())
	})
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	configPath := DefaultConfigPath()
	require.NotEmpty(t, configPath)
	assert.Equal(t, "config.yaml", filepath.Base(configPath))
	assert.Contains(t, configPath, "handlevet")

	expectedStorePath := filepath.Join(gfconfig.GetAppDataDir("handlevet"), "handlevet.db")
	assert.Equal(t, expectedStorePath, DefaultStorePath())

	assert.NotEmpty(t, DefaultDataDir())
	assert.NotEmpty(t, DefaultCacheDir())
}
