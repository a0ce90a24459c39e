package money

import "errors"

// Common money package errors
var (
	// ErrInvalidAmount is returned when an amount is NaN or infinite.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidCurrency is returned for malformed currencies.
	ErrInvalidCurrency = errors.New("invalid currency code")

	// ErrMismatchedCurrencies is returned when performing operations on money with
	// different currencies
	ErrMismatchedCurrencies = errors.New("mismatched currencies")
)
