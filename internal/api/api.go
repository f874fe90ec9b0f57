// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"context"
	"net/http"

	"github.com/tavtun/docsys/internal/config"
	"github.com/tavtun/docsys/internal/infrastructure"
	"github.com/tavtun/docsys/pkg/middleware"
	"github.com/tavtun/docsys/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// Background work of the domain systems is registered with the
// infrastructure lifecycle.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain, err := NewDomain(runtime)
	if err != nil {
		return nil, err
	}
	domain.Start(runtime)

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg); err != nil {
		return nil, err
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.Metrics())

	if rl := &cfg.API.RateLimit; rl.Enabled() {
		limiter := middleware.NewIPRateLimiter(rl)
		infra.Lifecycle.Go(func(ctx context.Context) {
			limiter.Run(ctx, rl.IdleTimeoutDuration())
		})
		m.Use(middleware.RateLimit(limiter))
	}

	return m, nil
}
