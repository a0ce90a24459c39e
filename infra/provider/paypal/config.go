// Package paypal implements the payment gateway against the PayPal Orders v2
// REST API: client-credentials token management and the create, capture and
// status order calls.
package paypal

import (
	"net/http"
	"strings"
	"time"
)

const (
	SandboxBaseURL    = "https://api-m.sandbox.paypal.com"
	ProductionBaseURL = "https://api-m.paypal.com"

	tokenPath  = "/v1/oauth2/token"
	ordersPath = "/v2/checkout/orders"

	// DefaultTokenBuffer is how long before expiry a cached token is
	// treated as stale.
	DefaultTokenBuffer = 5 * time.Minute
)

// Config holds the provider connection settings.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	TokenBuffer  time.Duration
	HTTPClient   *http.Client

	// Experience settings sent with every created order.
	BrandName string
	ReturnURL string
	CancelURL string
}

// BaseURLFor returns the API base URL for env ("sandbox" or "production").
// A non-empty override wins.
func BaseURLFor(env, override string) string {
	if override != "" {
		return strings.TrimRight(override, "/")
	}
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "live":
		return ProductionBaseURL
	default:
		return SandboxBaseURL
	}
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (c Config) buffer() time.Duration {
	if c.TokenBuffer > 0 {
		return c.TokenBuffer
	}
	return DefaultTokenBuffer
}
