package pricing

import (
	"math"

	"github.com/amirasaad/paygate/pkg/currency"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printer  = message.NewPrinter(language.English)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

// FormatCurrency renders amount for display.
//
//	zero-decimal currency: ¥1,235
//	base currency:         ₦100,000 (₦246.90 when there are kobo)
//	other currencies:      $1,234.50
//	unknown code:          1234.50
func (e *Engine) FormatCurrency(amount decimal.Decimal, code string) string {
	c, ok := e.table.Get(code)
	if !ok {
		return amount.StringFixed(2)
	}
	return Format(amount, c)
}

// Format renders amount in currency c. See Engine.FormatCurrency.
func Format(amount decimal.Decimal, c currency.Currency) string {
	places := int32(2)
	switch {
	case c.IsZeroDecimal():
		places = 0
	case c.IsBase && amount.Round(2).IsInteger():
		places = 0
	}
	rounded := amount.Round(places)

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}

	// Grouping goes through int64; larger values are printed ungrouped.
	if rounded.GreaterThan(maxInt64) {
		return sign + c.Symbol + rounded.StringFixed(places)
	}
	out := sign + c.Symbol + printer.Sprintf("%d", rounded.IntPart())
	if places > 0 {
		fixed := rounded.StringFixed(places)
		out += fixed[len(fixed)-int(places)-1:]
	}
	return out
}
