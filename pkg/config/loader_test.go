package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paymybuddy/pkg/config"
)

type defaultsConfig struct {
	CookieName string        `env:"TEST_COOKIE_NAME" envDefault:"auth_token"`
	MaxAge     time.Duration `env:"TEST_COOKIE_MAX_AGE" envDefault:"720h"`
	SSR        bool          `env:"TEST_SSR" envDefault:"true"`
}

type cachedConfig struct {
	BaseURL string `env:"TEST_CACHED_BASE_URL"`
}

type requiredConfig struct {
	BaseURL string `env:"TEST_REQUIRED_BASE_URL,required"`
}

type fileConfig struct {
	Value string `env:"TEST_FILE_VALUE"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg defaultsConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "auth_token", cfg.CookieName)
		assert.Equal(t, 720*time.Hour, cfg.MaxAge)
		assert.True(t, cfg.SSR)
	})

	t.Run("parsed once per type", func(t *testing.T) {
		t.Setenv("TEST_CACHED_BASE_URL", "http://first")
		var first cachedConfig
		require.NoError(t, config.Load(&first))

		t.Setenv("TEST_CACHED_BASE_URL", "http://second")
		var second cachedConfig
		require.NoError(t, config.Load(&second))

		assert.Equal(t, "http://first", second.BaseURL)
	})

	t.Run("missing required value", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
		assert.ErrorIs(t, config.Load(&cfg), config.ErrParsingConfig)
		assert.Panics(t, func() { config.MustLoad(&cfg) })
	})

	t.Run("nil pointer", func(t *testing.T) {
		assert.ErrorIs(t, config.Load[defaultsConfig](nil), config.ErrNilPointer)
	})
}

func TestLoadEnvFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buddy.env")
	require.NoError(t, os.WriteFile(path, []byte("TEST_FILE_VALUE=from-file\n"), 0o600))
	t.Setenv("TEST_FILE_VALUE", "from-env")

	require.NoError(t, config.LoadEnvFiles(path))

	var cfg fileConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "from-file", cfg.Value)

	assert.ErrorIs(t, config.LoadEnvFiles(filepath.Join(t.TempDir(), "missing.env")), config.ErrEnvFile)
	assert.NoError(t, config.LoadEnvFiles())
}
