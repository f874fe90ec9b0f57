package middleware

import (
	"fmt"
	"time"

	"github.com/tavtun/docsys/pkg/envvar"
)

// CORSConfig holds CORS policy settings.
type CORSConfig struct {
	Enabled          bool     `toml:"enabled"`
	Origins          []string `toml:"origins"`
	AllowedMethods   []string `toml:"allowed_methods"`
	AllowedHeaders   []string `toml:"allowed_headers"`
	AllowCredentials bool     `toml:"allow_credentials"`
	MaxAge           int      `toml:"max_age"`
}

// CORSEnv maps CORS fields to environment variable names.
type CORSEnv struct {
	Enabled          string
	Origins          string
	AllowedMethods   string
	AllowedHeaders   string
	AllowCredentials string
	MaxAge           string
}

// Finalize applies defaults and environment variable overrides.
func (c *CORSConfig) Finalize(env *CORSEnv) error {
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Content-Type", "Authorization"}
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 3600
	}

	if env != nil {
		envvar.Bool(env.Enabled, &c.Enabled)
		envvar.List(env.Origins, &c.Origins)
		envvar.List(env.AllowedMethods, &c.AllowedMethods)
		envvar.List(env.AllowedHeaders, &c.AllowedHeaders)
		envvar.Bool(env.AllowCredentials, &c.AllowCredentials)
		envvar.Int(env.MaxAge, &c.MaxAge)
	}
	return nil
}

// Merge overwrites fields from overlay. Booleans always apply.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	c.Enabled = overlay.Enabled
	c.AllowCredentials = overlay.AllowCredentials

	if overlay.Origins != nil {
		c.Origins = overlay.Origins
	}
	if overlay.AllowedMethods != nil {
		c.AllowedMethods = overlay.AllowedMethods
	}
	if overlay.AllowedHeaders != nil {
		c.AllowedHeaders = overlay.AllowedHeaders
	}
	if overlay.MaxAge > 0 {
		c.MaxAge = overlay.MaxAge
	}
}

// RateLimitConfig bounds requests per client address. A zero
// RequestsPerSecond disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	IdleTimeout       string  `toml:"idle_timeout"`
}

// RateLimitEnv maps rate limit fields to environment variable names.
type RateLimitEnv struct {
	RequestsPerSecond string
	Burst             string
}

func (c *RateLimitConfig) Enabled() bool {
	return c.RequestsPerSecond > 0
}

func (c *RateLimitConfig) IdleTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.IdleTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *RateLimitConfig) Finalize(env *RateLimitEnv) error {
	if env != nil {
		envvar.Float(env.RequestsPerSecond, &c.RequestsPerSecond)
		envvar.Int(env.Burst, &c.Burst)
	}

	if c.IdleTimeout == "" {
		c.IdleTimeout = "10m"
	}
	if d, err := time.ParseDuration(c.IdleTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid idle_timeout: %q", c.IdleTimeout)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second cannot be negative")
	}
	if c.Enabled() && c.Burst <= 0 {
		c.Burst = max(1, int(c.RequestsPerSecond))
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *RateLimitConfig) Merge(overlay *RateLimitConfig) {
	if overlay.RequestsPerSecond != 0 {
		c.RequestsPerSecond = overlay.RequestsPerSecond
	}
	if overlay.Burst != 0 {
		c.Burst = overlay.Burst
	}
	if overlay.IdleTimeout != "" {
		c.IdleTimeout = overlay.IdleTimeout
	}
}
