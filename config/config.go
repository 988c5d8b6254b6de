// Package config binds the validation configuration surface from the
// environment or an optional yaml file. The verify package itself never
// reads config sources; it consumes the result of Load.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	verifykit "github.com/open-rails/tokenkit/verify"
)

// Config holds the validator settings loadable from TOKENKIT_* environment
// variables or a tokenkit.yaml file.
type Config struct {
	ProviderDomain string        `mapstructure:"provider_domain" validate:"required"`
	IssuerURL      string        `mapstructure:"issuer_url"`
	JWKSURL        string        `mapstructure:"jwks_url"`
	ClockSkew      time.Duration `mapstructure:"clock_skew" default:"5m"`
	CacheMaxSize   int           `mapstructure:"cache_max_size" default:"20"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	LogLevel       string        `mapstructure:"log_level" default:"info" validate:"oneof=debug info warn error"`
}

var boundKeys = []string{
	"provider_domain", "issuer_url", "jwks_url",
	"clock_skew", "cache_max_size", "cache_ttl", "log_level",
}

// Load reads configuration from the environment (TOKENKIT_ prefix) and an
// optional tokenkit.yaml in the working directory, then validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("config: set defaults: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("TOKENKIT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.SetConfigName("tokenkit")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	for _, key := range boundKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return cfg, nil
}

// VerifyConfig converts the loaded settings into a verifykit.Config.
func (c *Config) VerifyConfig() verifykit.Config {
	return verifykit.Config{
		ProviderDomain: c.ProviderDomain,
		IssuerURL:      c.IssuerURL,
		JWKSURL:        c.JWKSURL,
		ClockSkew:      c.ClockSkew,
		CacheMaxSize:   c.CacheMaxSize,
		CacheTTL:       c.CacheTTL,
	}
}

// Logger builds a logrus logger at the configured level.
func (c *Config) Logger() *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}
