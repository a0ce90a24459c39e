package main

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	color.NoColor = true

	var out bytes.Buffer
	err := run(args, &out)
	return out.String(), err
}

func TestQuote(t *testing.T) {
	out, err := runCLI(t, "quote", "50000", "ngn", "Lagos")
	require.NoError(t, err)
	assert.Contains(t, out, "Order quote (NGN, local delivery)")
	assert.Contains(t, out, "₦1,000")
	assert.Contains(t, out, "₦3,500")
	assert.Contains(t, out, "₦54,500")
	assert.NotContains(t, out, "Discount")
}

func TestQuote_WithDiscount(t *testing.T) {
	out, err := runCLI(t, "quote", "50000", "NGN", "Abuja", "2000")
	require.NoError(t, err)
	assert.Contains(t, out, "national delivery")
	assert.Contains(t, out, "-₦2,000")
	// 48000 + 1000 + 5000
	assert.Contains(t, out, "₦54,000")
}

func TestQuote_InvalidDiscount(t *testing.T) {
	_, err := runCLI(t, "quote", "100", "NGN", "Lagos", "500")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	out, err := runCLI(t, "format", "100000", "NGN")
	require.NoError(t, err)
	assert.Equal(t, "₦100,000\n", out)

	out, err = runCLI(t, "format", "1", "jpy")
	require.NoError(t, err)
	assert.Equal(t, "¥1\n", out)
}

func TestConvert(t *testing.T) {
	out, err := runCLI(t, "convert", "10000", "NGN", "USD")
	require.NoError(t, err)
	assert.Equal(t, "₦10,000 = $6.50\n", out)

	_, err = runCLI(t, "convert", "1", "NGN", "XXX")
	assert.ErrorContains(t, err, "unsupported currency")
}

func TestCurrencies(t *testing.T) {
	out, err := runCLI(t, "currencies")
	require.NoError(t, err)
	assert.Contains(t, out, "NGN")
	assert.Contains(t, out, "Japanese Yen")
}

func TestUsageErrors(t *testing.T) {
	for _, args := range [][]string{
		nil,
		{"format", "1"},
		{"convert", "1", "NGN"},
		{"quote"},
		{"bogus"},
	} {
		_, err := runCLI(t, args...)
		assert.ErrorIs(t, err, errUsage, "%v", args)
	}

	_, err := runCLI(t, "format", "abc", "NGN")
	assert.ErrorContains(t, err, "invalid amount")
}
