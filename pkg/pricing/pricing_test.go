package pricing_test

import (
	"testing"

	fixtures "github.com/amirasaad/paygate/internal/fixtures/currency"
	"github.com/amirasaad/paygate/pkg/domain"
	"github.com/amirasaad/paygate/pkg/money"
	"github.com/amirasaad/paygate/pkg/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newEngine(t *testing.T) *pricing.Engine {
	t.Helper()
	table, err := fixtures.LoadTable("", "")
	require.NoError(t, err)
	return pricing.New(table)
}

func TestOrderTotal_Lagos(t *testing.T) {
	e := newEngine(t)

	res, err := e.OrderTotal(d("50000"), "Lagos", "NGN", decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, "1000", res.ServiceFee.String())
	assert.Equal(t, "3500", res.DeliveryFee.String())
	assert.Equal(t, "54500", res.Total.String())
	assert.Equal(t, pricing.TierLocal, res.Tier)
	assert.Equal(t, money.NGN, res.Currency)
}

func TestOrderTotal_WithDiscount(t *testing.T) {
	e := newEngine(t)

	res, err := e.OrderTotal(d("100"), "Paris, worldwide", "usd", d("10"))
	require.NoError(t, err)

	assert.Equal(t, "2", res.ServiceFee.String())
	assert.Equal(t, "25", res.DeliveryFee.String())
	assert.Equal(t, "117", res.Total.String())
	assert.Equal(t, pricing.TierInternational, res.Tier)
}

func TestOrderTotal_Formula(t *testing.T) {
	e := newEngine(t)
	cases := []struct {
		subtotal string
		discount string
		location string
		currency string
	}{
		{"0", "0", "Lagos", "NGN"},
		{"1234.56", "1234.56", "Abuja", "NGN"},
		{"99.99", "0.01", "Berlin", "EUR"},
		{"333.33", "33.333", "worldwide", "GBP"},
		{"15000", "2500", "Tokyo", "JPY"},
		{"12345", "0", "Taipei", "TWD"},
	}
	for _, tc := range cases {
		t.Run(tc.currency+"_"+tc.subtotal, func(t *testing.T) {
			sub, disc := d(tc.subtotal), d(tc.discount)
			res, err := e.OrderTotal(sub, tc.location, tc.currency, disc)
			require.NoError(t, err)

			c, ok := e.Table().Get(tc.currency)
			require.True(t, ok)
			want := money.RoundTo(sub.Sub(disc).Add(res.ServiceFee).Add(res.DeliveryFee), c.Decimals)
			assert.True(t, want.Equal(res.Total), "want %s got %s", want, res.Total)
			assert.False(t, res.Total.IsNegative())
			assert.True(t, res.ServiceFee.Equal(e.ServiceFee(sub)))
		})
	}
}

func TestOrderTotal_Invalid(t *testing.T) {
	e := newEngine(t)

	_, err := e.OrderTotal(d("10"), "Lagos", "NGN", d("11"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.OrderTotal(d("-1"), "Lagos", "NGN", decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.OrderTotal(d("10"), "Lagos", "NGN", d("-1"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.OrderTotal(d("10"), "Lagos", "XYZ", decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrUnsupportedCurrency)

	_, err = e.OrderTotal(d("1e30"), "Lagos", "NGN", decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrValidation)

	res, err := e.OrderTotal(pricing.MaxAmount, "Lagos", "NGN", decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "1020000000003500", res.Total.String())
}

func TestDeliveryFee(t *testing.T) {
	e := newEngine(t)
	tests := []struct {
		location string
		currency string
		wantFee  string
		wantTier pricing.Tier
	}{
		{"Abuja", "NGN", "5000", pricing.TierNational},
		{"  LAGOS ", "NGN", "3500", pricing.TierLocal},
		{"Lagos State", "NGN", "3500", pricing.TierLocal},
		{"lagos, nigeria", "NGN", "3500", pricing.TierLocal},
		{"Ikeja, Lagos", "NGN", "5000", pricing.TierNational},
		{"Port Harcourt, Rivers", "NGN", "5000", pricing.TierNational},
		{"London", "NGN", "15000", pricing.TierInternational},
		{"East Timor", "NGN", "15000", pricing.TierInternational},
		{"", "NGN", "15000", pricing.TierInternational},
		{"New York", "USD", "10", pricing.TierNational},
		{"Lagos", "USD", "10", pricing.TierNational},
		{"Worldwide shipping", "USD", "25", pricing.TierInternational},
		{"global", "JPY", "3000", pricing.TierInternational},
		// TWD has no schedule of its own and falls back to the base schedule
		{"Taipei", "TWD", "5000", pricing.TierNational},
	}
	for _, tt := range tests {
		t.Run(tt.currency+"_"+tt.location, func(t *testing.T) {
			fee, tier, err := e.DeliveryFee(tt.location, tt.currency)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFee, fee.String())
			assert.Equal(t, tt.wantTier, tier)
		})
	}

	_, _, err := e.DeliveryFee("Lagos", "XYZ")
	assert.ErrorIs(t, err, domain.ErrUnsupportedCurrency)
}

func TestServiceFee(t *testing.T) {
	e := newEngine(t)
	assert.Equal(t, "6.67", e.ServiceFee(d("333.33")).String())
	assert.Equal(t, "0.01", e.ServiceFee(d("0.25")).String())
	assert.Equal(t, "0", e.ServiceFee(d("0.2")).String())

	custom := pricing.New(e.Table(), pricing.WithServiceFeeRate(d("0.05")))
	assert.Equal(t, "5", custom.ServiceFee(d("100")).String())
}

func TestConvert_RoundTrip(t *testing.T) {
	e := newEngine(t)
	amounts := []string{"0.01", "1", "12345.67", "999999.99"}
	for _, code := range e.Table().Codes() {
		for _, a := range amounts {
			x := d(a)
			converted, err := e.ConvertFromBase(x, string(code))
			require.NoError(t, err)
			back, err := e.ConvertToBase(converted, string(code))
			require.NoError(t, err)
			assert.True(t, back.Sub(x).Abs().LessThanOrEqual(d("0.01")),
				"%s %s: %s -> %s -> %s", code, a, x, converted, back)
		}
	}
}

func TestConvert(t *testing.T) {
	e := newEngine(t)

	usd, err := e.ConvertFromBase(d("100000"), "USD")
	require.NoError(t, err)
	assert.Equal(t, "65", usd.String())

	ngn, err := e.ConvertToBase(d("65"), "usd")
	require.NoError(t, err)
	assert.True(t, ngn.Equal(d("100000")))

	same, err := e.Convert(d("42"), "NGN", "NGN")
	require.NoError(t, err)
	assert.True(t, same.Equal(d("42")))

	_, err = e.ConvertFromBase(d("1"), "XYZ")
	assert.ErrorIs(t, err, domain.ErrUnsupportedCurrency)
	_, err = e.ConvertToBase(d("1"), "XYZ")
	assert.ErrorIs(t, err, domain.ErrUnsupportedCurrency)
}
