package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()
	logger.Info("Loading environment variables")

	// If no specific paths provided, try default .env
	if len(envFilePath) == 0 {
		logger.Debug("No environment file specified, trying default .env")
		if err := godotenv.Load(); err != nil {
			logger.Warn("No .env file found in current directory")
		}
		return loadFromEnv()
	}

	// Try each provided path until we find a valid one
	for _, path := range envFilePath {
		logger.Debug("Looking for environment file", "path", path)
		foundPath, err := FindEnvFile(path)
		if err != nil {
			logger.Debug("Environment file not found", "path", path, "error", err)
			continue
		}

		logger.Info("Loading environment from file", "path", foundPath)
		if err := godotenv.Load(foundPath); err != nil {
			logger.Error("Failed to load environment file", "path", foundPath, "error", err)
			continue
		}

		// Successfully loaded a file, proceed with config loading
		return loadFromEnv()
	}

	// No valid environment files found, try default .env as fallback
	logger.Info("No valid environment files found, using default .env")
	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found in current directory")
	}
	return loadFromEnv()
}

func loadFromEnv() (*App, error) {
	var cfg App
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	// Set default values if not set
	if cfg.Env == "" {
		cfg.Env = "development"
	}

	logger := slog.Default()
	logger.Info("App config loaded",
		"env", cfg.Env,
		"rate_limit_max_requests", cfg.RateLimit.MaxRequests,
		"rate_limit_window", cfg.RateLimit.Window,
		"paypal_env", cfg.PayPal.Env,
		"paypal_base_url", cfg.PayPal.BaseURL,
		"paypal_client_id", maskValue(cfg.PayPal.ClientID),
		"paypal_client_secret", maskValue(cfg.PayPal.ClientSecret),
		"paypal_token_buffer", cfg.PayPal.TokenBuffer,
		"service_fee_rate", cfg.Pricing.ServiceFeeRate,
		"currency_file", cfg.Pricing.CurrencyFile,
		"rules_file", cfg.Pricing.RulesFile,
	)
	return &cfg, nil
}

// LoadSandbox loads the fake provider settings from SANDBOX_* variables.
func LoadSandbox(envFilePath ...string) (*Sandbox, error) {
	for _, path := range envFilePath {
		if foundPath, err := FindEnvFile(path); err == nil {
			_ = godotenv.Load(foundPath)
			break
		}
	}
	var cfg Sandbox
	if err := envconfig.Process("SANDBOX", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func maskValue(key string) string {
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
