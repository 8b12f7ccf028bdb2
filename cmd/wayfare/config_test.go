package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/wayfare/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetenv clears key for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"WAYFARE_CACHE_TTL", "WAYFARE_LOG_LEVEL", "WAYFARE_LOG_FORMAT", "WAYFARE_CALL_TIMEOUT", "WAYFARE_PROVIDER"} {
		unsetenv(t, key)
	}

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, cache.DefaultTTL, cfg.CacheTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Zero(t, cfg.CallTimeout)
	assert.Empty(t, cfg.Provider)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("WAYFARE_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "gk-env")
	t.Setenv("GOOGLEMAPS_API_KEY", "maps-env")
	t.Setenv("OPENWEATHER_API_KEY", "ow-env")
	t.Setenv("WAYFARE_CALL_TIMEOUT", "30s")
	t.Setenv("WAYFARE_CACHE_TTL", "1h")

	cfg, err := loadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, providerKeys{OpenAI: cfg.OpenAIKey, Anthropic: cfg.AnthropicKey, Gemini: "gk-env"}, cfg.providerKeys())
	assert.Equal(t, "maps-env", cfg.GoogleMapsKey)
	assert.Equal(t, "ow-env", cfg.OpenWeatherKey)
	assert.Equal(t, 30*time.Second, cfg.CallTimeout)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
}

func TestLoadConfig_DotenvFile(t *testing.T) {
	unsetenv(t, "WAYFARE_MODEL")
	unsetenv(t, "OPENWEATHER_API_KEY")
	t.Setenv("GOOGLEMAPS_API_KEY", "maps-env")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"WAYFARE_MODEL=gpt-4o-mini\nOPENWEATHER_API_KEY=ow-file\nGOOGLEMAPS_API_KEY=maps-file\n",
	), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("WAYFARE_MODEL")
		os.Unsetenv("OPENWEATHER_API_KEY")
	})

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, "ow-file", cfg.OpenWeatherKey)
	// Real environment wins over the file.
	assert.Equal(t, "maps-env", cfg.GoogleMapsKey)
}

func TestLoadConfig_NegativeTimeout(t *testing.T) {
	t.Setenv("WAYFARE_CALL_TIMEOUT", "-1s")

	_, err := loadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WAYFARE_CALL_TIMEOUT")
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger, err := newLogger(&buf, "debug", "json")
		require.NoError(t, err)

		logger.Debug("state changed", "state", "ready")
		assert.Contains(t, buf.String(), `"msg":"state changed"`)
		assert.Contains(t, buf.String(), `"state":"ready"`)
	})

	t.Run("text filters below level", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger, err := newLogger(&buf, "warn", "text")
		require.NoError(t, err)

		logger.Info("hidden")
		logger.Warn("weather lookup failed", "err", "timeout")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "weather lookup failed")
		assert.Contains(t, buf.String(), "err=timeout")
	})

	t.Run("unknown level", func(t *testing.T) {
		t.Parallel()
		_, err := newLogger(&bytes.Buffer{}, "loud", "text")
		require.Error(t, err)
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()
		_, err := newLogger(&bytes.Buffer{}, "info", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown log format")
	})
}

func TestSplitInterests(t *testing.T) {
	t.Parallel()

	assert.Nil(t, splitInterests("  "))
	assert.Equal(t, []string{"History", " Food"}, splitInterests("History, Food"))
}
