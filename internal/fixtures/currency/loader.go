package currency

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/amirasaad/paygate/pkg/currency"
	"github.com/amirasaad/paygate/pkg/money"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed currencies.csv
var currenciesCSV string

//go:embed pricing.yaml
var pricingYAML string

const csvColumns = 8

// LoadTable builds a currency table from the given files.
// Empty paths fall back to the embedded fixtures.
func LoadTable(currencyPath, rulesPath string) (*currency.Table, error) {
	currencies, err := LoadCurrencyCSV(currencyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load currencies: %w", err)
	}
	rules, err := LoadPricingRules(rulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing rules: %w", err)
	}
	return currency.NewTable(currencies, rules.Fees, rules.Regions)
}

// LoadCurrencyCSV loads currency rows from a CSV file or embedded content.
// If path is empty, it uses the embedded CSV content.
func LoadCurrencyCSV(path string) ([]currency.Currency, error) {
	r, closeFn, err := open(path, currenciesCSV)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return parseCurrencyCSV(r)
}

func parseCurrencyCSV(r io.Reader) ([]currency.Currency, error) {
	csvReader := csv.NewReader(r)
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}

	var out []currency.Currency
	for i, rec := range records {
		if i == 0 {
			if len(rec) < csvColumns {
				return nil, errors.New(fmt.Sprintf(
					"invalid CSV format: expected at least %d columns, got %d",
					csvColumns,
					len(rec),
				))
			}
			continue // skip header
		}
		if len(rec) < csvColumns {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", i+1, csvColumns, len(rec))
		}

		decimals, err := strconv.Atoi(strings.TrimSpace(rec[3]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid decimals %q: %w", i+1, rec[3], err)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(rec[4]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid rate %q: %w", i+1, rec[4], err)
		}
		minOrder := decimal.Zero
		if s := strings.TrimSpace(rec[7]); s != "" {
			if minOrder, err = decimal.NewFromString(s); err != nil {
				return nil, fmt.Errorf("line %d: invalid min_order %q: %w", i+1, rec[7], err)
			}
		}

		out = append(out, currency.Currency{
			Code:             money.ParseCode(rec[0]),
			Name:             strings.TrimSpace(rec[1]),
			Symbol:           strings.TrimSpace(rec[2]),
			Decimals:         decimals,
			Rate:             rate,
			IsBase:           isTrue(rec[5]),
			GatewaySupported: isTrue(rec[6]),
			MinimumOrder:     minOrder,
		})
	}
	return out, nil
}

// PricingRules is the decoded pricing rules file.
type PricingRules struct {
	Fees    map[money.Code]currency.FeeSchedule
	Regions currency.RegionRules
}

type pricingFile struct {
	DeliveryFees map[string]struct {
		Local         float64 `yaml:"local"`
		National      float64 `yaml:"national"`
		International float64 `yaml:"international"`
	} `yaml:"delivery_fees"`
	Regions currency.RegionRules `yaml:"regions"`
}

// LoadPricingRules loads delivery fee schedules and region lists from a YAML
// file or the embedded defaults.
func LoadPricingRules(path string) (*PricingRules, error) {
	r, closeFn, err := open(path, pricingYAML)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var pf pricingFile
	if err := yaml.NewDecoder(r).Decode(&pf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid pricing rules: %w", err)
	}

	rules := &PricingRules{
		Fees:    make(map[money.Code]currency.FeeSchedule, len(pf.DeliveryFees)),
		Regions: pf.Regions,
	}
	for raw, fs := range pf.DeliveryFees {
		code := money.ParseCode(raw)
		var fees [3]decimal.Decimal
		for i, v := range []float64{fs.Local, fs.National, fs.International} {
			fee, err := feeAmount(v, code)
			if err != nil {
				return nil, fmt.Errorf("invalid delivery fee for %q: %w", raw, err)
			}
			fees[i] = fee
		}
		rules.Fees[code] = currency.FeeSchedule{
			Local:         fees[0],
			National:      fees[1],
			International: fees[2],
		}
	}
	return rules, nil
}

// feeAmount rejects malformed codes and non-finite or negative fees. Fees are
// rounded to the currency's minor unit at pricing time.
func feeAmount(v float64, code money.Code) (decimal.Decimal, error) {
	m, err := money.NewFromFloat(v, money.Currency{Code: code, Decimals: 8})
	if err != nil {
		return decimal.Zero, err
	}
	if m.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative fee %s", money.ErrInvalidAmount, m.Amount())
	}
	return m.Amount(), nil
}

func open(path, embedded string) (io.Reader, func(), error) {
	if path == "" {
		return strings.NewReader(embedded), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, func() {
		if closeErr := f.Close(); closeErr != nil {
			_ = closeErr
		}
	}, nil
}

func isTrue(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}
