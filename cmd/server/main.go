// Command server runs the docsys HTTP service.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tavtun/docsys/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	srv, err := NewServer(cfg)
	if err != nil {
		log.Fatalf("init server: %v", err)
	}

	srv.logger.Info("docsys starting", "version", cfg.Version, "env", cfg.Env())

	if err := srv.Start(); err != nil {
		log.Fatalf("start server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	if err := srv.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		srv.logger.Error("shutdown incomplete", "error", err)
		os.Exit(1)
	}
	srv.logger.Info("docsys stopped")
}
