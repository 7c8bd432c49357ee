package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"PORT", "ES_URL", "ES_API_KEY", "ES_INDEX", "CORS_ORIGIN", "LOG_LEVEL",
		"RATE_LIMIT_MAX", "RATE_LIMIT_EXP", "SEARCH_HISTORY_DB", "READ_TIMEOUT", "WRITE_TIMEOUT", "UPSTREAM_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "cars", cfg.IndexName)
	assert.Equal(t, "*", cfg.CORSOrigin)
	assert.Equal(t, 0, cfg.RateLimitMax)
	assert.Equal(t, time.Minute, cfg.RateLimitExp)
	assert.Empty(t, cfg.HistoryDB)
	assert.Empty(t, cfg.Warnings)
	assert.Zero(t, cfg.UpstreamTimeout)
	assert.False(t, cfg.IndexConfigured())
	assert.Equal(t, "0.0.0.0:3000", cfg.Addr())
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("ES_URL", "https://es.example.com")
	t.Setenv("ES_API_KEY", "secret")
	t.Setenv("ES_INDEX", "vehicles")
	t.Setenv("CORS_ORIGIN", "https://kepox.com")
	t.Setenv("RATE_LIMIT_MAX", "20")
	t.Setenv("RATE_LIMIT_EXP", "30s")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "vehicles", cfg.IndexName)
	assert.Equal(t, "https://kepox.com", cfg.CORSOrigin)
	assert.Equal(t, 20, cfg.RateLimitMax)
	assert.Equal(t, 30*time.Second, cfg.RateLimitExp)
	assert.True(t, cfg.IndexConfigured())
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that already exist
	for _, key := range []string{"PORT", "ES_INDEX"} {
		require.NoError(t, os.Unsetenv(key))
	}

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=9000\nES_INDEX=listings\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "listings", cfg.IndexName)
}

func TestLoadInvalidNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_MAX", "lots")
	t.Setenv("RATE_LIMIT_EXP", "soon")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.RateLimitMax)
	assert.Equal(t, time.Minute, cfg.RateLimitExp)

	require.Len(t, cfg.Warnings, 2)
	assert.Contains(t, cfg.Warnings[0], "RATE_LIMIT_MAX")
	assert.Contains(t, cfg.Warnings[1], "RATE_LIMIT_EXP")
}

func TestLoadNegativeRateLimit(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_MAX", "-1")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestIndexConfiguredNeedsBoth(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		expected bool
	}{
		{name: "both set", cfg: Config{IndexURL: "http://es", IndexAPIKey: "k"}, expected: true},
		{name: "missing key", cfg: Config{IndexURL: "http://es"}, expected: false},
		{name: "missing url", cfg: Config{IndexAPIKey: "k"}, expected: false},
		{name: "neither", cfg: Config{}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.IndexConfigured())
		})
	}
}
