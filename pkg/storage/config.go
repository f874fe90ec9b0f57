package storage

import (
	"fmt"

	"github.com/tavtun/docsys/pkg/envvar"
)

// Config selects the blob container and how to authenticate to it. When
// ConnectionString is empty the client authenticates to ServiceURL with the
// default Azure credential chain.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	ServiceURL       string `toml:"service_url"`
	MaxListSize      int32  `toml:"max_list_size"`
}

// Env maps config fields to environment variable names.
type Env struct {
	ContainerName    string
	ConnectionString string
	ServiceURL       string
	MaxListSize      string
}

// UsesCredential reports whether the client authenticates with azidentity
// instead of a shared key connection string.
func (c *Config) UsesCredential() bool {
	return c.ConnectionString == ""
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.ServiceURL != "" {
		c.ServiceURL = overlay.ServiceURL
	}
	if overlay.MaxListSize != 0 {
		c.MaxListSize = overlay.MaxListSize
	}
}

func (c *Config) loadDefaults() {
	if c.ContainerName == "" {
		c.ContainerName = "documents"
	}
	if c.MaxListSize <= 0 {
		c.MaxListSize = 50
	}
}

func (c *Config) loadEnv(env *Env) {
	envvar.String(env.ContainerName, &c.ContainerName)
	envvar.String(env.ConnectionString, &c.ConnectionString)
	envvar.String(env.ServiceURL, &c.ServiceURL)

	size := int(c.MaxListSize)
	envvar.Int(env.MaxListSize, &size)
	if size > 0 {
		c.MaxListSize = int32(size)
	}
}

func (c *Config) validate() error {
	c.MaxListSize = min(c.MaxListSize, MaxListCap)

	if c.ContainerName == "" {
		return fmt.Errorf("container_name required")
	}
	if c.ConnectionString == "" && c.ServiceURL == "" {
		return fmt.Errorf("connection_string or service_url required")
	}
	return nil
}
