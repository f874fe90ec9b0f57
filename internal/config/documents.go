package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tavtun/docsys/internal/models"
	"github.com/tavtun/docsys/pkg/doccode"
	"github.com/tavtun/docsys/pkg/envvar"
	"github.com/tavtun/docsys/pkg/formatting"
)

const (
	EnvDocumentsDefaultCompany       = "DOCSYS_DOCUMENTS_DEFAULT_COMPANY"
	EnvDocumentsAllowedExtensions    = "DOCSYS_DOCUMENTS_ALLOWED_EXTENSIONS"
	EnvDocumentsMaxFileSize          = "DOCSYS_DOCUMENTS_MAX_FILE_SIZE"
	EnvDocumentsSessionIdleTimeout   = "DOCSYS_DOCUMENTS_SESSION_IDLE_TIMEOUT"
	EnvDocumentsSessionSweepInterval = "DOCSYS_DOCUMENTS_SESSION_SWEEP_INTERVAL"
)

// DocumentsConfig holds document defaults, replacement file limits, and
// edit session housekeeping. Empty AllowedExtensions and MaxFileSize keep
// the upload defaults.
type DocumentsConfig struct {
	DefaultCompany       string            `toml:"default_company"`
	TypeCategories       map[string]string `toml:"type_categories"`
	AllowedExtensions    []string          `toml:"allowed_extensions"`
	MaxFileSize          string            `toml:"max_file_size"`
	SessionIdleTimeout   string            `toml:"session_idle_timeout"`
	SessionSweepInterval string            `toml:"session_sweep_interval"`
}

// MaxFileSizeMB returns MaxFileSize in whole megabytes, rounded up. Zero
// means unset.
func (c *DocumentsConfig) MaxFileSizeMB() int {
	if c.MaxFileSize == "" {
		return 0
	}
	n, err := formatting.ParseBytes(c.MaxFileSize)
	if err != nil {
		return 0
	}
	return int((n + formatting.MB - 1) / formatting.MB)
}

func (c *DocumentsConfig) SessionIdleTimeoutDuration() time.Duration {
	return duration(c.SessionIdleTimeout)
}

func (c *DocumentsConfig) SessionSweepIntervalDuration() time.Duration {
	return duration(c.SessionSweepInterval)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *DocumentsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. Type category entries are
// merged key by key.
func (c *DocumentsConfig) Merge(overlay *DocumentsConfig) {
	mergeString(&c.DefaultCompany, overlay.DefaultCompany)
	if overlay.AllowedExtensions != nil {
		c.AllowedExtensions = overlay.AllowedExtensions
	}
	mergeString(&c.MaxFileSize, overlay.MaxFileSize)
	mergeString(&c.SessionIdleTimeout, overlay.SessionIdleTimeout)
	mergeString(&c.SessionSweepInterval, overlay.SessionSweepInterval)
	if len(overlay.TypeCategories) > 0 && c.TypeCategories == nil {
		c.TypeCategories = make(map[string]string, len(overlay.TypeCategories))
	}
	for code, category := range overlay.TypeCategories {
		c.TypeCategories[code] = category
	}
}

func (c *DocumentsConfig) loadDefaults() {
	if c.DefaultCompany == "" {
		c.DefaultCompany = doccode.DefaultCompany
	}
	if c.SessionIdleTimeout == "" {
		c.SessionIdleTimeout = "30m"
	}
	if c.SessionSweepInterval == "" {
		c.SessionSweepInterval = "1m"
	}
}

func (c *DocumentsConfig) loadEnv() {
	envvar.String(EnvDocumentsDefaultCompany, &c.DefaultCompany)
	envvar.List(EnvDocumentsAllowedExtensions, &c.AllowedExtensions)
	envvar.String(EnvDocumentsMaxFileSize, &c.MaxFileSize)
	envvar.String(EnvDocumentsSessionIdleTimeout, &c.SessionIdleTimeout)
	envvar.String(EnvDocumentsSessionSweepInterval, &c.SessionSweepInterval)
}

func (c *DocumentsConfig) validate() error {
	for code, category := range c.TypeCategories {
		if _, err := models.ParseDocumentCategory(category); err != nil {
			return fmt.Errorf("type_categories.%s: unknown category %q", code, category)
		}
	}
	for _, ext := range c.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("allowed_extensions: %q must start with a dot", ext)
		}
	}
	if c.MaxFileSize != "" {
		if n, err := formatting.ParseBytes(c.MaxFileSize); err != nil || n <= 0 {
			return fmt.Errorf("invalid max_file_size: %q", c.MaxFileSize)
		}
	}
	if d, err := time.ParseDuration(c.SessionIdleTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid session_idle_timeout: %q", c.SessionIdleTimeout)
	}
	if d, err := time.ParseDuration(c.SessionSweepInterval); err != nil || d <= 0 {
		return fmt.Errorf("invalid session_sweep_interval: %q", c.SessionSweepInterval)
	}
	return nil
}
