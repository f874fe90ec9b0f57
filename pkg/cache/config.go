package cache

import (
	"fmt"
	"time"

	"github.com/tavtun/docsys/pkg/envvar"
)

// Config holds Redis connection parameters. An empty Addr disables the cache.
type Config struct {
	Addr        string `toml:"addr"`
	Password    string `toml:"password"`
	DB          int    `toml:"db"`
	TTL         string `toml:"ttl"`
	DialTimeout string `toml:"dial_timeout"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Addr        string
	Password    string
	DB          string
	TTL         string
	DialTimeout string
}

func (c *Config) Enabled() bool {
	return c.Addr != ""
}

func (c *Config) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

func (c *Config) DialTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.DialTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if c.TTL == "" {
		c.TTL = "5m"
	}
	if c.DialTimeout == "" {
		c.DialTimeout = "3s"
	}

	if env != nil {
		envvar.String(env.Addr, &c.Addr)
		envvar.String(env.Password, &c.Password)
		envvar.Int(env.DB, &c.DB)
		envvar.String(env.TTL, &c.TTL)
		envvar.String(env.DialTimeout, &c.DialTimeout)
	}

	if c.DB < 0 || c.DB > 15 {
		return fmt.Errorf("invalid db index: %d", c.DB)
	}
	if d, err := time.ParseDuration(c.TTL); err != nil || d <= 0 {
		return fmt.Errorf("invalid ttl: %q", c.TTL)
	}
	if _, err := time.ParseDuration(c.DialTimeout); err != nil {
		return fmt.Errorf("invalid dial_timeout: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Addr != "" {
		c.Addr = overlay.Addr
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.DB != 0 {
		c.DB = overlay.DB
	}
	if overlay.TTL != "" {
		c.TTL = overlay.TTL
	}
	if overlay.DialTimeout != "" {
		c.DialTimeout = overlay.DialTimeout
	}
}
