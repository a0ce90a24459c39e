package currency

import (
	"github.com/amirasaad/paygate/pkg/money"
	"github.com/shopspring/decimal"
)

// Currency holds the static metadata and pricing rules of one currency.
type Currency struct {
	Code   money.Code
	Name   string
	Symbol string
	// Decimals is the minor-unit precision. Zero marks a zero-decimal currency.
	Decimals int
	// Rate is the value of one base-currency unit in this currency.
	Rate   decimal.Decimal
	IsBase bool
	// GatewaySupported reports whether the payment provider accepts orders
	// in this currency.
	GatewaySupported bool
	// MinimumOrder is the smallest order amount accepted, in major units.
	MinimumOrder decimal.Decimal
}

// Money returns the money.Currency view of c.
func (c Currency) Money() money.Currency {
	return money.Currency{Code: c.Code, Decimals: c.Decimals}
}

// IsZeroDecimal reports whether amounts in c have no minor unit.
func (c Currency) IsZeroDecimal() bool {
	return c.Decimals == 0
}

// FeeSchedule lists delivery fees per geographic tier, in the currency's
// major unit.
type FeeSchedule struct {
	Local         decimal.Decimal
	National      decimal.Decimal
	International decimal.Decimal
}

// RegionRules drives the delivery-fee classifier.
// All entries are matched against lower-cased, trimmed locations.
type RegionRules struct {
	// Home regions yield the local tier for the base currency.
	Home []string `yaml:"home"`
	// Domestic regions yield the national tier for the base currency.
	Domestic []string `yaml:"domestic"`
	// InternationalKeywords force the international tier for non-base currencies.
	InternationalKeywords []string `yaml:"international_keywords"`
}
