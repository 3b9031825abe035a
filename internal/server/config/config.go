// Package config handles configuration for the notehub server, including
// defaults, JSON overlay, environment variables, and command-line flags.
package config

import "time"

// Config holds runtime settings for the notehub server.
//
// Fields:
//   - EndpointAddr: bind address for the HTTP endpoint (REST + GraphQL).
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store,
//     intended for development and tests only.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - TokenValidityDuration: bearer token lifetime.
//   - StorageTimeout: per-call budget for repository operations.
//   - LogFormat: "json" (slog) or "pretty" (zerolog console).
//   - RequireCommentAuth: when true, appending comments requires an
//     authenticated caller instead of the permissive default.
type Config struct {
	EndpointAddr          string
	DatabaseDSN           string
	SecretKey             string
	TokenValidityDuration time.Duration
	StorageTimeout        time.Duration
	LogFormat             string
	RequireCommentAuth    bool
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":3001"
	c.DatabaseDSN = ""
	c.SecretKey = "development-secret"
	c.TokenValidityDuration = 1 * time.Hour
	c.StorageTimeout = 3 * time.Second
	c.LogFormat = "json"
	c.RequireCommentAuth = false
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, environment variables, and finally
// command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
