package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/tavtun/docsys/internal/api"
	"github.com/tavtun/docsys/internal/config"
	"github.com/tavtun/docsys/internal/infrastructure"
)

// Server ties the infrastructure, the API module and the HTTP listener to
// one lifecycle coordinator.
type Server struct {
	infra  *infrastructure.Infrastructure
	http   *http.Server
	logger *slog.Logger

	shutdownTimeout time.Duration
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, fmt.Errorf("api module: %w", err)
	}

	router := buildRouter(infra)
	router.Mount(apiModule)

	logger := infra.Logger.With("system", "http")

	return &Server{
		infra:  infra,
		logger: logger,
		http: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           router,
			ReadTimeout:       cfg.Server.ReadTimeoutDuration(),
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeoutDuration(),
			WriteTimeout:      cfg.Server.WriteTimeoutDuration(),
			IdleTimeout:       cfg.Server.IdleTimeoutDuration(),
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		shutdownTimeout: cfg.Server.ShutdownTimeoutDuration(),
	}, nil
}

// Start brings up the infrastructure and binds the listener. A bind failure
// is returned here rather than logged from the serving goroutine.
func (s *Server) Start() error {
	if err := s.infra.Start(); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}

	lc := s.infra.Lifecycle

	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("serve failed", "error", err)
		}
	}()

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error("http shutdown incomplete", "error", err)
			return
		}
		s.logger.Info("http server stopped")
	})

	go func() {
		lc.WaitForStartup()
		s.logger.Info("ready", "database", s.infra.Database.Ready(), "cache", s.infra.Cache != nil)
	}()

	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.logger.Info("shutdown requested", "timeout", timeout)
	return s.infra.Lifecycle.Shutdown(timeout)
}
