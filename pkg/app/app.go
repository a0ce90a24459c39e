package app

import (
	"log/slog"

	"github.com/amirasaad/paygate/pkg/config"
	"github.com/amirasaad/paygate/pkg/currency"
	"github.com/amirasaad/paygate/pkg/pricing"
	"github.com/amirasaad/paygate/pkg/provider/payment"
	"github.com/amirasaad/paygate/pkg/service/checkout"
)

// Deps contains the infrastructure the services are built from
type Deps struct {
	CurrencyTable *currency.Table
	Pricing       *pricing.Engine
	Gateway       payment.Gateway
	Logger        *slog.Logger
}

type App struct {
	Deps            *Deps
	Config          *config.App
	CheckoutService *checkout.Service
}

func New(deps *Deps, cfg *config.App) *App {
	app := &App{
		Deps:   deps,
		Config: cfg,
	}
	app.CheckoutService = checkout.New(deps.Pricing, deps.Gateway, deps.Logger)
	return app
}
