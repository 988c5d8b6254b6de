package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TOKENKIT_PROVIDER_DOMAIN", "idp.example.com")
	t.Setenv("TOKENKIT_CACHE_MAX_SIZE", "50")
	t.Setenv("TOKENKIT_CACHE_TTL", "10m")
	t.Setenv("TOKENKIT_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "idp.example.com", cfg.ProviderDomain)
	assert.Equal(t, 50, cfg.CacheMaxSize)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TOKENKIT_PROVIDER_DOMAIN", "idp.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.ClockSkew)
	assert.Equal(t, 20, cfg.CacheMaxSize)
	assert.Equal(t, time.Duration(0), cfg.CacheTTL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadMissingDomain(t *testing.T) {
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	t.Setenv("TOKENKIT_PROVIDER_DOMAIN", "idp.example.com")
	t.Setenv("TOKENKIT_LOG_LEVEL", "loud")

	_, err := Load()
	require.Error(t, err)
}

func TestVerifyConfig(t *testing.T) {
	cfg := &Config{
		ProviderDomain: "idp.example.com",
		ClockSkew:      time.Minute,
		CacheMaxSize:   7,
	}
	vc := cfg.VerifyConfig()
	assert.Equal(t, "idp.example.com", vc.ProviderDomain)
	assert.Equal(t, time.Minute, vc.ClockSkew)
	assert.Equal(t, 7, vc.CacheMaxSize)
}

func TestLogger(t *testing.T) {
	cfg := &Config{LogLevel: "warn"}
	assert.Equal(t, logrus.WarnLevel, cfg.Logger().GetLevel())
}
