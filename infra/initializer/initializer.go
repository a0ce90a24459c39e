package initializer

import (
	"fmt"
	"net/http"

	"github.com/amirasaad/paygate/infra/provider/paypal"
	currencyfixtures "github.com/amirasaad/paygate/internal/fixtures/currency"
	"github.com/amirasaad/paygate/pkg/app"
	"github.com/amirasaad/paygate/pkg/config"
	"github.com/amirasaad/paygate/pkg/pricing"
	"github.com/shopspring/decimal"
)

// InitializeDependencies initializes all the application dependencies
func InitializeDependencies(cfg *config.App) (
	deps *app.Deps,
	err error,
) {
	deps = &app.Deps{}
	logger := SetupLogger(cfg.Log)
	deps.Logger = logger

	// Load the currency table and pricing rules; empty paths use the
	// embedded fixtures
	logger.Info("Loading currency table",
		"currency_file", cfg.Pricing.CurrencyFile,
		"rules_file", cfg.Pricing.RulesFile,
	)
	deps.CurrencyTable, err = currencyfixtures.LoadTable(cfg.Pricing.CurrencyFile, cfg.Pricing.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load currency table: %w", err)
	}
	logger.Info("Currency table loaded",
		"base", deps.CurrencyTable.Base().Code,
		"currencies", len(deps.CurrencyTable.Codes()),
		"gateway_currencies", len(deps.CurrencyTable.GatewayCodes()),
	)

	deps.Pricing = pricing.New(
		deps.CurrencyTable,
		pricing.WithServiceFeeRate(decimal.NewFromFloat(cfg.Pricing.ServiceFeeRate)),
	)

	ppCfg := PayPalConfig(cfg.PayPal)
	if ppCfg.ClientID == "" || ppCfg.ClientSecret == "" {
		// The server still starts so pricing works; order calls fail with
		// a configuration error.
		logger.Warn("Payment provider credentials not configured")
	}
	tokens := paypal.NewTokenStore(ppCfg, logger)
	deps.Gateway = paypal.NewGateway(ppCfg, tokens, deps.CurrencyTable, logger)

	logger.Info("Payment gateway initialized",
		"env", cfg.PayPal.Env,
		"base_url", paypal.BaseURLFor(cfg.PayPal.Env, cfg.PayPal.BaseURL),
	)
	return deps, nil
}

// PayPalConfig maps the environment settings to the provider client config.
func PayPalConfig(cfg *config.PayPal) paypal.Config {
	return paypal.Config{
		BaseURL:      paypal.BaseURLFor(cfg.Env, cfg.BaseURL),
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenBuffer:  cfg.TokenBuffer,
		HTTPClient:   &http.Client{Timeout: cfg.HTTPTimeout},
		BrandName:    cfg.BrandName,
		ReturnURL:    cfg.ReturnURL,
		CancelURL:    cfg.CancelURL,
	}
}
