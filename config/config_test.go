package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("should load with defaults and one provider key", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("DEEPSEEK_API_KEY", "test-key")
		t.Setenv("ENV", "test")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.ServerPort)
		assert.Equal(t, "localhost", cfg.DBHost)
		assert.Equal(t, 5, cfg.ImageRateLimit)
		assert.Equal(t, time.Minute, cfg.ImageRateWindow)
	})

	t.Run("should fail without JWT secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		t.Setenv("JWT_SECRET_FILE", "")
		t.Setenv("SECRETS_DIR", t.TempDir())
		t.Setenv("DEEPSEEK_API_KEY", "test-key")

		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})

	t.Run("should fail without any provider key", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("DEEPSEEK_API_KEY", "")
		t.Setenv("DEEPSEEK_API_KEY_FILE", "")
		t.Setenv("OPENAI_API_KEY", "")
		t.Setenv("OPENAI_API_KEY_FILE", "")
		t.Setenv("SECRETS_DIR", t.TempDir())

		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "provider key")
	})

	t.Run("should read secrets from files", func(t *testing.T) {
		dir := t.TempDir()
		keyFile := filepath.Join(dir, "deepseek.key")
		require.NoError(t, os.WriteFile(keyFile, []byte("file-key\n"), 0o600))

		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("DEEPSEEK_API_KEY", "")
		t.Setenv("DEEPSEEK_API_KEY_FILE", keyFile)
		t.Setenv("SECRETS_DIR", t.TempDir())

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "file-key", cfg.DeepSeekAPIKey, "secret files are trimmed")
	})

	t.Run("should honor media limit overrides", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("DEEPSEEK_API_KEY", "test-key")
		t.Setenv("IMAGE_RATE_LIMIT", "12")
		t.Setenv("IMAGE_RATE_WINDOW", "30s")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 12, cfg.ImageRateLimit)
		assert.Equal(t, 30*time.Second, cfg.ImageRateWindow)
	})
}

func TestGetEnvironment(t *testing.T) {
	t.Run("CI wins over ENV", func(t *testing.T) {
		t.Setenv("CI", "true")
		t.Setenv("ENV", "production")
		assert.Equal(t, CI, GetEnvironment())
	})

	t.Run("defaults to development", func(t *testing.T) {
		t.Setenv("CI", "")
		t.Setenv("ENV", "")
		assert.Equal(t, Development, GetEnvironment())
		assert.False(t, IsProduction())
	})

	t.Run("production detection", func(t *testing.T) {
		t.Setenv("CI", "")
		t.Setenv("ENV", "production")
		assert.True(t, IsProduction())
	})
}
