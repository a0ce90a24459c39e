package config

import (
	"time"
)

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

//revive:disable
type PayPal struct {
	Env          string        `envconfig:"ENV" default:"sandbox"`
	ClientID     string        `envconfig:"CLIENT_ID"`
	ClientSecret string        `envconfig:"CLIENT_SECRET"`
	BaseURL      string        `envconfig:"BASE_URL" default:""`
	HTTPTimeout  time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`
	TokenBuffer  time.Duration `envconfig:"TOKEN_BUFFER" default:"5m"`
	ReturnURL    string        `envconfig:"RETURN_URL" default:"http://localhost:3000/payment/paypal/success"`
	CancelURL    string        `envconfig:"CANCEL_URL" default:"http://localhost:3000/payment/paypal/cancel"`
	BrandName    string        `envconfig:"BRAND_NAME" default:""`
}

//revive:enable

type Pricing struct {
	ServiceFeeRate float64 `envconfig:"SERVICE_FEE_RATE" default:"0.02"`
	// Empty paths use the embedded tables.
	CurrencyFile string `envconfig:"CURRENCY_FILE" default:""`
	RulesFile    string `envconfig:"RULES_FILE" default:""`
}

type CORS struct {
	AllowOrigins string `envconfig:"ALLOW_ORIGINS" default:"*"`
	AllowHeaders string `envconfig:"ALLOW_HEADERS" default:"authorization, x-client-info, apikey, content-type, idempotency-key"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[paygate]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

type App struct {
	Env       string     `envconfig:"APP_ENV" default:"development"`
	Server    *Server    `envconfig:"SERVER"`
	Log       *Log       `envconfig:"LOG"`
	PayPal    *PayPal    `envconfig:"PAYPAL"`
	Pricing   *Pricing   `envconfig:"PRICING"`
	CORS      *CORS      `envconfig:"CORS"`
	RateLimit *RateLimit `envconfig:"RATE_LIMIT"`
}

// Sandbox configures the local fake payment provider.
type Sandbox struct {
	Port         int           `envconfig:"PORT" default:"4010"`
	PublicURL    string        `envconfig:"PUBLIC_URL" default:"http://localhost:4010"`
	ClientID     string        `envconfig:"CLIENT_ID" default:"sandbox-client"`
	ClientSecret string        `envconfig:"CLIENT_SECRET" default:"sandbox-secret"`
	TokenTTL     time.Duration `envconfig:"TOKEN_TTL" default:"9h"`
	ReplayTTL    time.Duration `envconfig:"REPLAY_TTL" default:"6h"`
	AutoApprove  bool          `envconfig:"AUTO_APPROVE" default:"false"`
	Log          *Log          `envconfig:"LOG"`
}
