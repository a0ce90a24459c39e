// Command sandbox runs the in-memory payment provider on a local port so the
// server can be exercised end to end without provider credentials.
package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirasaad/paygate/infra/initializer"
	"github.com/amirasaad/paygate/internal/sandbox"
	"github.com/amirasaad/paygate/pkg/config"
	log "github.com/charmbracelet/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.LoadSandbox(".env")
	if err != nil {
		return fmt.Errorf("failed to load sandbox configuration: %w", err)
	}
	logger := initializer.SetupLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sb := sandbox.New(sandbox.Options{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenTTL:     cfg.TokenTTL,
		ReplayTTL:    cfg.ReplayTTL,
		PublicURL:    cfg.PublicURL,
		AutoApprove:  cfg.AutoApprove,
	}, logger)
	sb.StartSweeper(ctx, time.Minute)

	fiberApp := sb.App()
	go func() {
		<-ctx.Done()
		_ = fiberApp.ShutdownWithTimeout(5 * time.Second)
	}()

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting sandbox provider",
		"address", addr,
		"public_url", cfg.PublicURL,
		"auto_approve", cfg.AutoApprove,
	)
	return fiberApp.Listen(addr)
}
