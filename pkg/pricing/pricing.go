// Package pricing computes order amounts: currency conversion against the
// static currency table, delivery fees by geographic tier, the percentage
// service fee and the final order total.
//
// All arithmetic is done on exact decimals. Fees are rounded independently
// to two decimals; the total is rounded once to the currency's minor unit.
package pricing

import (
	"fmt"
	"strings"

	"github.com/amirasaad/paygate/pkg/currency"
	"github.com/amirasaad/paygate/pkg/domain"
	"github.com/amirasaad/paygate/pkg/money"
	"github.com/shopspring/decimal"
)

// DefaultServiceFeeRate is the service fee charged on every subtotal.
var DefaultServiceFeeRate = decimal.RequireFromString("0.02")

// MaxAmount is the largest subtotal or discount OrderTotal accepts.
var MaxAmount = decimal.New(1, 15)

// Tier is a delivery fee tier.
type Tier string

const (
	TierLocal         Tier = "local"
	TierNational      Tier = "national"
	TierInternational Tier = "international"
)

// Result is the breakdown of an order total.
type Result struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	ServiceFee  decimal.Decimal `json:"serviceFee"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Discount    decimal.Decimal `json:"discountAmount"`
	Total       decimal.Decimal `json:"total"`
	Currency    money.Code      `json:"currency"`
	Tier        Tier            `json:"deliveryTier"`
}

// Engine is the pricing engine. It is stateless and safe for concurrent use.
type Engine struct {
	table          *currency.Table
	serviceFeeRate decimal.Decimal
}

// Option configures an Engine.
type Option func(*Engine)

// WithServiceFeeRate overrides DefaultServiceFeeRate.
func WithServiceFeeRate(rate decimal.Decimal) Option {
	return func(e *Engine) {
		e.serviceFeeRate = rate
	}
}

// New creates a pricing engine over table.
func New(table *currency.Table, opts ...Option) *Engine {
	e := &Engine{
		table:          table,
		serviceFeeRate: DefaultServiceFeeRate,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Table returns the underlying currency table.
func (e *Engine) Table() *currency.Table {
	return e.table
}

// ServiceFeeRate returns the configured service fee rate.
func (e *Engine) ServiceFeeRate() decimal.Decimal {
	return e.serviceFeeRate
}

// ConvertFromBase converts an amount in the base currency to code.
// The result is not rounded.
func (e *Engine) ConvertFromBase(amount decimal.Decimal, code string) (decimal.Decimal, error) {
	rate, err := e.table.Rate(code)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}

// ConvertToBase converts an amount in code to the base currency.
// The result is not rounded.
func (e *Engine) ConvertToBase(amount decimal.Decimal, code string) (decimal.Decimal, error) {
	rate, err := e.table.Rate(code)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Div(rate), nil
}

// Convert converts amount between two currencies through the base currency.
func (e *Engine) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	base, err := e.ConvertToBase(amount, from)
	if err != nil {
		return decimal.Zero, err
	}
	return e.ConvertFromBase(base, to)
}

// DeliveryFee returns the delivery fee for location in code and the tier
// it was charged at.
func (e *Engine) DeliveryFee(location, code string) (decimal.Decimal, Tier, error) {
	c, err := e.table.Lookup(code)
	if err != nil {
		return decimal.Zero, "", err
	}
	tier := Classify(location, c.IsBase, e.table.Regions())
	fs := e.table.FeeSchedule(string(c.Code))

	var fee decimal.Decimal
	switch tier {
	case TierLocal:
		fee = fs.Local
	case TierNational:
		fee = fs.National
	default:
		fee = fs.International
	}
	return money.RoundTo(fee, c.Decimals), tier, nil
}

// ServiceFee returns subtotal multiplied by the service fee rate, rounded to
// two decimals.
func (e *Engine) ServiceFee(subtotal decimal.Decimal) decimal.Decimal {
	return e.serviceFee(money.Must(subtotal, e.table.Base().Money())).Amount()
}

func (e *Engine) serviceFee(subtotal *money.Money) *money.Money {
	fee := subtotal.Multiply(e.serviceFeeRate)
	return money.Must(money.RoundTo(fee.Amount(), 2), fee.Currency())
}

// OrderTotal computes (subtotal - discount) + serviceFee + deliveryFee.
// The service fee is charged on the undiscounted subtotal.
func (e *Engine) OrderTotal(
	subtotal decimal.Decimal,
	location string,
	code string,
	discount decimal.Decimal,
) (*Result, error) {
	c, err := e.table.Lookup(code)
	if err != nil {
		return nil, err
	}
	cur := c.Money()
	sub := money.Must(subtotal, cur)
	disc := money.Must(discount, cur)
	if err := checkAmounts(sub, disc); err != nil {
		return nil, err
	}

	deliveryFee, tier, err := e.DeliveryFee(location, string(c.Code))
	if err != nil {
		return nil, err
	}
	serviceFee := e.serviceFee(sub)

	total := money.Zero(cur)
	for _, part := range []*money.Money{sub, serviceFee, money.Must(deliveryFee, cur)} {
		if total, err = total.Add(part); err != nil {
			return nil, err
		}
	}
	if total, err = total.Subtract(disc); err != nil {
		return nil, err
	}

	return &Result{
		Subtotal:    subtotal,
		ServiceFee:  serviceFee.Amount(),
		DeliveryFee: deliveryFee,
		Discount:    discount,
		Total:       total.Round().Amount(),
		Currency:    c.Code,
		Tier:        tier,
	}, nil
}

func checkAmounts(subtotal, discount *money.Money) error {
	switch {
	case subtotal.IsNegative():
		return domain.ValidationErrorf("subtotal must not be negative")
	case discount.IsNegative():
		return domain.ValidationErrorf("discount must not be negative")
	case subtotal.Amount().GreaterThan(MaxAmount):
		return domain.ValidationErrorf("subtotal %s exceeds %s", subtotal.Amount(), MaxAmount)
	}
	over, err := discount.GreaterThan(subtotal)
	if err != nil {
		return err
	}
	if over {
		return domain.ValidationErrorf("discount %s exceeds subtotal %s", discount.Amount(), subtotal.Amount())
	}
	return nil
}

// Classify places location in a delivery tier.
//
// For the base currency the first comma separated segment of the location
// must equal a home region for the local tier, any home or domestic region
// phrase elsewhere in the location gives the national tier and everything
// else is international. For other currencies only an international keyword moves
// the order out of the national tier.
func Classify(location string, isBase bool, rules currency.RegionRules) Tier {
	loc := strings.ToLower(strings.TrimSpace(location))
	words := tokenize(loc)

	if !isBase {
		if containsAny(words, rules.InternationalKeywords) {
			return TierInternational
		}
		return TierNational
	}

	first := strings.Join(tokenize(strings.SplitN(loc, ",", 2)[0]), " ")
	for _, home := range rules.Home {
		if first != "" && first == strings.Join(tokenize(home), " ") {
			return TierLocal
		}
	}
	if containsAny(words, rules.Home) || containsAny(words, rules.Domestic) {
		return TierNational
	}
	return TierInternational
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 127)
	})
}

// containsAny reports whether any phrase appears in words as a run of whole
// words.
func containsAny(words []string, phrases []string) bool {
	for _, p := range phrases {
		pw := tokenize(p)
		if len(pw) == 0 || len(pw) > len(words) {
			continue
		}
		for i := 0; i+len(pw) <= len(words); i++ {
			match := true
			for j := range pw {
				if words[i+j] != pw[j] {
					match = false
					break
				}
			}
			if match {
				return true
			}
		}
	}
	return false
}

// String renders a result for logs and the CLI.
func (r *Result) String() string {
	return fmt.Sprintf("subtotal=%s discount=%s service=%s delivery=%s(%s) total=%s %s",
		r.Subtotal, r.Discount, r.ServiceFee, r.DeliveryFee, r.Tier, r.Total, r.Currency)
}
