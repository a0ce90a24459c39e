package money

import "strings"

// Code represents a currency code (e.g., "USD", "NGN").
type Code string

// Common currency codes
const (
	NGN Code = "NGN" // Nigerian Naira
	USD Code = "USD" // US Dollar
	JPY Code = "JPY" // Japanese Yen
)

// ParseCode trims and upper-cases a raw currency code.
// The result is not checked against any currency table.
func ParseCode(raw string) Code {
	return Code(strings.ToUpper(strings.TrimSpace(raw)))
}

// IsValid checks if the currency code has the ISO 4217 shape
func (c Code) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	return c[0] >= 'A' && c[0] <= 'Z' &&
		c[1] >= 'A' && c[1] <= 'Z' &&
		c[2] >= 'A' && c[2] <= 'Z'
}

// String returns the string representation of the currency code.
func (c Code) String() string {
	return string(c)
}
