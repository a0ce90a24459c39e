// Package handler is the serverless entry point. The platform invokes
// Handler once per request; the Fiber app is built on first use and reused.
package handler

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/amirasaad/paygate/infra/initializer"
	"github.com/amirasaad/paygate/pkg/app"
	"github.com/amirasaad/paygate/pkg/config"
	"github.com/amirasaad/paygate/webapi"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

var (
	once    sync.Once
	handler http.HandlerFunc
	initErr error
)

// Handler is the main entry point of the application.
// Think of it like the main() method
func Handler(w http.ResponseWriter, r *http.Request) {
	// This is needed to set the proper request path in `*fiber.Ctx`
	r.RequestURI = r.URL.String()

	once.Do(func() {
		handler, initErr = build()
	})
	if initErr != nil {
		slog.Error("Failed to initialize application", "error", initErr)
		http.Error(w, `{"success":false,"error":"service unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	handler.ServeHTTP(w, r)
}

// building the fiber application
func build() (http.HandlerFunc, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return nil, err
	}
	return adaptor.FiberApp(webapi.SetupApp(app.New(deps, cfg))), nil
}
