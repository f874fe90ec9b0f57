package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/tavtun/docsys/pkg/cache"
	"github.com/tavtun/docsys/pkg/database"
	"github.com/tavtun/docsys/pkg/envvar"
	"github.com/tavtun/docsys/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvDocsysEnv             = "DOCSYS_ENV"
	EnvDocsysShutdownTimeout = "DOCSYS_SHUTDOWN_TIMEOUT"
	EnvDocsysVersion         = "DOCSYS_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "DOCSYS_DB_HOST",
	Port:            "DOCSYS_DB_PORT",
	Name:            "DOCSYS_DB_NAME",
	User:            "DOCSYS_DB_USER",
	Password:        "DOCSYS_DB_PASSWORD",
	SSLMode:         "DOCSYS_DB_SSL_MODE",
	MaxOpenConns:    "DOCSYS_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "DOCSYS_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "DOCSYS_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "DOCSYS_DB_CONN_TIMEOUT",
	ApplicationName: "DOCSYS_DB_APPLICATION_NAME",
}

var storageEnv = &storage.Env{
	ContainerName:    "DOCSYS_STORAGE_CONTAINER_NAME",
	ConnectionString: "DOCSYS_STORAGE_CONNECTION_STRING",
	ServiceURL:       "DOCSYS_STORAGE_SERVICE_URL",
	MaxListSize:      "DOCSYS_STORAGE_MAX_LIST_SIZE",
}

var cacheEnv = &cache.Env{
	Addr:        "DOCSYS_CACHE_ADDR",
	Password:    "DOCSYS_CACHE_PASSWORD",
	DB:          "DOCSYS_CACHE_DB",
	TTL:         "DOCSYS_CACHE_TTL",
	DialTimeout: "DOCSYS_CACHE_DIAL_TIMEOUT",
}

// Config is the root configuration for the docsys service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Cache           cache.Config    `toml:"cache"`
	API             APIConfig       `toml:"api"`
	Documents       DocumentsConfig `toml:"documents"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the DOCSYS_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvDocsysEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return duration(c.ShutdownTimeout)
}

// Load reads the configuration files and finalizes every section. Variables
// from a .env file in the working directory are loaded first; they never
// override the process environment.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}
	return cfg, nil
}

// LoadDatabase resolves only the database section. Tools that talk to
// PostgreSQL directly use it without requiring storage or API settings.
func LoadDatabase() (*database.Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Database.Finalize(databaseEnv); err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	return &cfg.Database, nil
}

// read decodes config.toml and the DOCSYS_ENV overlay without finalizing.
// Either file may be absent.
func read() (*Config, error) {
	_ = godotenv.Load(DotEnvFile)

	cfg := &Config{}
	if _, err := os.Stat(BaseConfigFile); err == nil {
		if cfg, err = load(BaseConfigFile); err != nil {
			return nil, err
		}
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}
	return cfg, nil
}

// Parse decodes TOML data into a Config without finalizing it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Finalize applies defaults, environment overrides, and validation to every
// section.
func (c *Config) Finalize() error {
	return c.finalize()
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	mergeString(&c.ShutdownTimeout, overlay.ShutdownTimeout)
	mergeString(&c.Version, overlay.Version)
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Cache.Merge(&overlay.Cache)
	c.API.Merge(&overlay.API)
	c.Documents.Merge(&overlay.Documents)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Cache.Finalize(cacheEnv); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Documents.Finalize(); err != nil {
		return fmt.Errorf("documents: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	envvar.String(EnvDocsysShutdownTimeout, &c.ShutdownTimeout)
	envvar.String(EnvDocsysVersion, &c.Version)
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func overlayPath() string {
	if env := os.Getenv(EnvDocsysEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
