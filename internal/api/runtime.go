package api

import (
	"github.com/tavtun/docsys/internal/config"
	"github.com/tavtun/docsys/internal/infrastructure"
	"github.com/tavtun/docsys/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination  pagination.Config
	Documents   config.DocumentsConfig
	MaxListSize int32
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			Cache:     infra.Cache,
		},
		Pagination:  cfg.API.Pagination,
		Documents:   cfg.Documents,
		MaxListSize: cfg.Storage.MaxListSize,
	}
}
