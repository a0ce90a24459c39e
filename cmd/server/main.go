package main

import (
	"fmt"

	"github.com/amirasaad/paygate/infra/initializer"
	"github.com/amirasaad/paygate/pkg/app"
	"github.com/amirasaad/paygate/pkg/config"
	"github.com/amirasaad/paygate/webapi"
	log "github.com/charmbracelet/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	// Initialize all dependencies
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	logger := deps.Logger

	// Create and start the application
	a := app.New(deps, cfg)

	// Setup Fiber app with all routes and middleware
	fiberApp := webapi.SetupApp(a)

	// Start the server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Starting server",
		"env", cfg.Env,
		"address", addr,
		"scheme", cfg.Server.Scheme,
		"paypal_env", cfg.PayPal.Env,
	)

	return fiberApp.Listen(addr)
}
