package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvConfig mirrors Config for environment parsing. Pointer fields stay nil
// when the variable is unset, so the overlay never clobbers earlier layers.
type EnvConfig struct {
	EndpointAddr          *string        `env:"NOTEHUB_ADDRESS"`
	DatabaseDSN           *string        `env:"NOTEHUB_DATABASE_DSN"`
	SecretKey             *string        `env:"NOTEHUB_SECRET_KEY"`
	TokenValidityDuration *time.Duration `env:"NOTEHUB_TOKEN_VALIDITY"`
	StorageTimeout        *time.Duration `env:"NOTEHUB_STORAGE_TIMEOUT"`
	LogFormat             *string        `env:"NOTEHUB_LOG_FORMAT"`
	RequireCommentAuth    *bool          `env:"NOTEHUB_REQUIRE_COMMENT_AUTH"`
}

func parseEnv(config *Config) {
	c := &EnvConfig{}
	if err := env.Parse(c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != nil {
		config.EndpointAddr = *c.EndpointAddr
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.SecretKey != nil {
		config.SecretKey = *c.SecretKey
	}
	if c.TokenValidityDuration != nil {
		config.TokenValidityDuration = *c.TokenValidityDuration
	}
	if c.StorageTimeout != nil {
		config.StorageTimeout = *c.StorageTimeout
	}
	if c.LogFormat != nil {
		config.LogFormat = *c.LogFormat
	}
	if c.RequireCommentAuth != nil {
		config.RequireCommentAuth = *c.RequireCommentAuth
	}
}
