package config

import (
	"fmt"

	"github.com/tavtun/docsys/pkg/envvar"
	"github.com/tavtun/docsys/pkg/formatting"
	"github.com/tavtun/docsys/pkg/middleware"
	"github.com/tavtun/docsys/pkg/openapi"
	"github.com/tavtun/docsys/pkg/pagination"
)

const (
	EnvAPIBasePath      = "DOCSYS_API_BASE_PATH"
	EnvAPIMaxUploadSize = "DOCSYS_API_MAX_UPLOAD_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "DOCSYS_CORS_ENABLED",
	Origins:          "DOCSYS_CORS_ORIGINS",
	AllowedMethods:   "DOCSYS_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "DOCSYS_CORS_ALLOWED_HEADERS",
	AllowCredentials: "DOCSYS_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "DOCSYS_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "DOCSYS_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "DOCSYS_PAGINATION_MAX_PAGE_SIZE",
}

var openAPIEnv = &openapi.ConfigEnv{
	Title:       "DOCSYS_OPENAPI_TITLE",
	Description: "DOCSYS_OPENAPI_DESCRIPTION",
}

var rateLimitEnv = &middleware.RateLimitEnv{
	RequestsPerSecond: "DOCSYS_RATE_LIMIT_RPS",
	Burst:             "DOCSYS_RATE_LIMIT_BURST",
}

// APIConfig holds API routing, CORS, pagination, rate limit, and OpenAPI
// document settings.
type APIConfig struct {
	BasePath      string                     `toml:"base_path"`
	MaxUploadSize string                     `toml:"max_upload_size"`
	CORS          middleware.CORSConfig      `toml:"cors"`
	Pagination    pagination.Config          `toml:"pagination"`
	RateLimit     middleware.RateLimitConfig `toml:"rate_limit"`
	OpenAPI       openapi.Config             `toml:"openapi"`
}

func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 50 * formatting.MB
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.RateLimit.Finalize(rateLimitEnv); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.RateLimit.Merge(&overlay.RateLimit)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "50MB"
	}
}

func (c *APIConfig) loadEnv() {
	envvar.String(EnvAPIBasePath, &c.BasePath)
	envvar.String(EnvAPIMaxUploadSize, &c.MaxUploadSize)
}
