// Package currency holds the static currency table: exchange rates relative
// to a single base currency, per-currency formatting data, minimum-order
// rules, delivery fee schedules and the region lists used to classify
// delivery locations.
//
// A Table is immutable once built and safe for concurrent use.
package currency

import (
	"fmt"
	"slices"
	"strings"

	"github.com/amirasaad/paygate/pkg/domain"
	"github.com/amirasaad/paygate/pkg/money"
	"github.com/shopspring/decimal"
)

// Table is the loaded currency table.
type Table struct {
	currencies map[money.Code]Currency
	fees       map[money.Code]FeeSchedule
	regions    RegionRules
	base       Currency
}

// NewTable validates the given data and builds a Table.
// Invariants enforced:
//   - every code is a valid ISO 4217 shape and appears once;
//   - exactly one currency is the base currency and its rate is exactly 1;
//   - every rate is positive;
//   - the base currency has a fee schedule.
func NewTable(
	currencies []Currency,
	fees map[money.Code]FeeSchedule,
	regions RegionRules,
) (*Table, error) {
	t := &Table{
		currencies: make(map[money.Code]Currency, len(currencies)),
		fees:       make(map[money.Code]FeeSchedule, len(fees)),
		regions:    normalizeRules(regions),
	}

	bases := 0
	for _, c := range currencies {
		c.Code = money.ParseCode(string(c.Code))
		if !c.Money().IsValid() {
			return nil, fmt.Errorf("%w: %q", money.ErrInvalidCurrency, c.Code)
		}
		if _, dup := t.currencies[c.Code]; dup {
			return nil, fmt.Errorf("duplicate currency %s", c.Code)
		}
		if !c.Rate.IsPositive() {
			return nil, fmt.Errorf("currency %s: rate must be positive, got %s", c.Code, c.Rate)
		}
		if c.IsBase {
			if !c.Rate.Equal(decimal.NewFromInt(1)) {
				return nil, fmt.Errorf("base currency %s must have rate 1, got %s", c.Code, c.Rate)
			}
			t.base = c
			bases++
		}
		t.currencies[c.Code] = c
	}
	if bases != 1 {
		return nil, fmt.Errorf("expected exactly one base currency, got %d", bases)
	}

	for code, fs := range fees {
		t.fees[money.ParseCode(string(code))] = fs
	}
	if _, ok := t.fees[t.base.Code]; !ok {
		return nil, fmt.Errorf("base currency %s has no fee schedule", t.base.Code)
	}
	return t, nil
}

// Base returns the base currency.
func (t *Table) Base() Currency {
	return t.base
}

// Get returns the currency for code, compared case-insensitively.
func (t *Table) Get(code string) (Currency, bool) {
	c, ok := t.currencies[money.ParseCode(code)]
	return c, ok
}

// Lookup is like Get but returns domain.ErrUnsupportedCurrency for unknown codes.
func (t *Table) Lookup(code string) (Currency, error) {
	c, ok := t.Get(code)
	if !ok {
		return Currency{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedCurrency, code)
	}
	return c, nil
}

// GatewayCurrency returns the currency for code if the payment provider
// accepts it.
func (t *Table) GatewayCurrency(code string) (Currency, error) {
	c, err := t.Lookup(code)
	if err != nil {
		return Currency{}, err
	}
	if !c.GatewaySupported {
		return Currency{}, fmt.Errorf("%w: %s is not accepted by the payment provider", domain.ErrUnsupportedCurrency, c.Code)
	}
	return c, nil
}

// Codes returns all currency codes in ascending order.
func (t *Table) Codes() []money.Code {
	codes := make([]money.Code, 0, len(t.currencies))
	for code := range t.currencies {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// GatewayCodes returns the codes accepted by the payment provider.
func (t *Table) GatewayCodes() []money.Code {
	var codes []money.Code
	for _, code := range t.Codes() {
		if t.currencies[code].GatewaySupported {
			codes = append(codes, code)
		}
	}
	return codes
}

// Rate returns the value of one base unit in code.
func (t *Table) Rate(code string) (decimal.Decimal, error) {
	c, err := t.Lookup(code)
	if err != nil {
		return decimal.Zero, err
	}
	return c.Rate, nil
}

// FeeSchedule returns the delivery fee schedule for code, falling back to
// the base currency's schedule when code has none.
func (t *Table) FeeSchedule(code string) FeeSchedule {
	if fs, ok := t.fees[money.ParseCode(code)]; ok {
		return fs
	}
	return t.fees[t.base.Code]
}

// Regions returns the normalized region rules.
func (t *Table) Regions() RegionRules {
	return t.regions
}

// FormatForGateway renders amount the way the payment provider expects it:
// an integer string for zero-decimal currencies, exactly two decimals otherwise.
// Amounts that round to zero or below are rejected.
func (t *Table) FormatForGateway(amount decimal.Decimal, code string) (string, error) {
	c, err := t.Lookup(code)
	if err != nil {
		return "", err
	}
	places := 2
	if c.IsZeroDecimal() {
		places = 0
	}
	rounded := money.Must(money.RoundTo(amount, places), c.Money())
	if !rounded.IsPositive() {
		return "", domain.ValidationErrorf("amount %s rounds to %s", amount, rounded)
	}
	return rounded.Amount().StringFixed(int32(places)), nil
}

// CheckMinimumOrder returns domain.ErrBelowMinimum when amount is lower than
// the currency's minimum order.
func (t *Table) CheckMinimumOrder(amount decimal.Decimal, code string) error {
	c, err := t.Lookup(code)
	if err != nil {
		return err
	}
	if amount.LessThan(c.MinimumOrder) {
		return fmt.Errorf("%w: %s %s is below %s %s",
			domain.ErrBelowMinimum, amount.String(), c.Code, c.MinimumOrder.String(), c.Code)
	}
	return nil
}

func normalizeRules(r RegionRules) RegionRules {
	return RegionRules{
		Home:                  normalizeList(r.Home),
		Domestic:              normalizeList(r.Domestic),
		InternationalKeywords: normalizeList(r.InternationalKeywords),
	}
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
