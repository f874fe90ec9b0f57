package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/tavtun/docsys/pkg/envvar"
)

const (
	EnvServerHost              = "DOCSYS_SERVER_HOST"
	EnvServerPort              = "DOCSYS_SERVER_PORT"
	EnvServerReadTimeout       = "DOCSYS_SERVER_READ_TIMEOUT"
	EnvServerReadHeaderTimeout = "DOCSYS_SERVER_READ_HEADER_TIMEOUT"
	EnvServerWriteTimeout      = "DOCSYS_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout       = "DOCSYS_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout   = "DOCSYS_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds HTTP listener parameters. Durations are kept as strings
// so TOML files and environment variables share one format.
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ReadTimeout       string `toml:"read_timeout"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	IdleTimeout       string `toml:"idle_timeout"`
	ShutdownTimeout   string `toml:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration { return duration(c.ReadTimeout) }

func (c *ServerConfig) ReadHeaderTimeoutDuration() time.Duration {
	return duration(c.ReadHeaderTimeout)
}

func (c *ServerConfig) WriteTimeoutDuration() time.Duration { return duration(c.WriteTimeout) }

func (c *ServerConfig) IdleTimeoutDuration() time.Duration { return duration(c.IdleTimeout) }

func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return duration(c.ShutdownTimeout)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	mergeString(&c.Host, overlay.Host)
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	theirs := overlay.durations()
	for i, f := range c.durations() {
		mergeString(f.dst, *theirs[i].dst)
	}
}

type durationField struct {
	key      string
	env      string
	fallback string
	dst      *string
}

// durations lists every duration setting with its env name and default.
// Uploads stream through the handler, so the write timeout is generous.
func (c *ServerConfig) durations() []durationField {
	return []durationField{
		{"read_timeout", EnvServerReadTimeout, "1m", &c.ReadTimeout},
		{"read_header_timeout", EnvServerReadHeaderTimeout, "10s", &c.ReadHeaderTimeout},
		{"write_timeout", EnvServerWriteTimeout, "15m", &c.WriteTimeout},
		{"idle_timeout", EnvServerIdleTimeout, "2m", &c.IdleTimeout},
		{"shutdown_timeout", EnvServerShutdownTimeout, "30s", &c.ShutdownTimeout},
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	for _, f := range c.durations() {
		if *f.dst == "" {
			*f.dst = f.fallback
		}
	}
}

func (c *ServerConfig) loadEnv() {
	envvar.String(EnvServerHost, &c.Host)
	envvar.Int(EnvServerPort, &c.Port)
	for _, f := range c.durations() {
		envvar.String(f.env, f.dst)
	}
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for _, f := range c.durations() {
		d, err := time.ParseDuration(*f.dst)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", f.key, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", f.key)
		}
	}
	return nil
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
