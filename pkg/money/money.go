// Package money provides functionality for handling monetary values.
//
// It is a value object that represents a monetary value in a specific currency.
// Invariants:
//   - Amount is held as an exact decimal in the currency's major unit.
//   - Currency code must be valid ISO 4217 (3 uppercase letters).
//   - All arithmetic operations require matching currencies.
//   - Rounding only happens when Round is called, to the currency's
//     minor-unit precision, half away from zero.
package money

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Currency represents a monetary unit with its standard decimal places
type Currency struct {
	Code     Code // 3-letter ISO 4217 code (e.g., "USD")
	Decimals int  // Number of decimal places (0-8)
}

// IsValid checks if the currency is valid.
func (c Currency) IsValid() bool {
	if c.Decimals < 0 || c.Decimals > 8 {
		return false
	}
	return c.Code.IsValid()
}

// String returns the currency code as a string
func (c Currency) String() string { return string(c.Code) }

// Money represents a monetary value in a specific currency.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// New creates a Money value object.
// Returns an error if the currency is malformed.
func New(amount decimal.Decimal, currency Currency) (*Money, error) {
	if !currency.IsValid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCurrency, currency)
	}
	return &Money{amount: amount, currency: currency}, nil
}

// NewFromFloat creates Money from a float64, rejecting NaN and infinities.
func NewFromFloat(amount float64, currency Currency) (*Money, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	return New(decimal.NewFromFloat(amount), currency)
}

// Must is like New but panics on error. Intended for tests and constants.
func Must(amount decimal.Decimal, currency Currency) *Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(fmt.Sprintf("money.Must(%v, %v): %v", amount, currency, err))
	}
	return m
}

// Zero creates a Money object with zero amount in the specified currency.
func Zero(currency Currency) *Money {
	return &Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the exact, unrounded amount.
func (m *Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency of the Money object.
func (m *Money) Currency() Currency {
	return m.currency
}

// Add returns a new Money object with the sum of amounts.
func (m *Money) Add(other *Money) (*Money, error) {
	if m.currency != other.currency {
		return nil, fmt.Errorf(
			"%w: cannot add %s and %s",
			ErrMismatchedCurrencies,
			m.currency.Code,
			other.currency.Code,
		)
	}
	return &Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns a new Money object with the difference of amounts.
// The result can be negative if the subtrahend is larger than the minuend.
func (m *Money) Subtract(other *Money) (*Money, error) {
	if m.currency != other.currency {
		return nil, fmt.Errorf(
			"%w: cannot subtract %s from %s",
			ErrMismatchedCurrencies,
			other.currency.Code,
			m.currency.Code,
		)
	}
	return &Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Multiply scales the amount by factor without rounding.
func (m *Money) Multiply(factor decimal.Decimal) *Money {
	return &Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// Round returns the amount rounded to the currency's minor-unit precision.
func (m *Money) Round() *Money {
	return &Money{amount: RoundTo(m.amount, m.currency.Decimals), currency: m.currency}
}

// RoundTo rounds d to places decimal places, half away from zero.
func RoundTo(d decimal.Decimal, places int) decimal.Decimal {
	return d.Round(int32(places))
}

// GreaterThan reports whether m is larger than other.
func (m *Money) GreaterThan(other *Money) (bool, error) {
	if m.currency != other.currency {
		return false, fmt.Errorf(
			"%w: cannot compare %s and %s",
			ErrMismatchedCurrencies,
			m.currency.Code,
			other.currency.Code,
		)
	}
	return m.amount.GreaterThan(other.amount), nil
}

// IsPositive returns true if the Money is not nil and its amount is greater than zero.
func (m *Money) IsPositive() bool {
	return m != nil && m.amount.IsPositive()
}

// IsNegative returns true if the Money is not nil and its amount is less than zero.
func (m *Money) IsNegative() bool {
	return m != nil && m.amount.IsNegative()
}

// String returns the rounded amount followed by the currency code.
func (m *Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(int32(m.currency.Decimals)), m.currency.Code)
}
