// Command cli prices orders and formats amounts from the command line using
// the same currency table and rules as the server.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	currencyfixtures "github.com/amirasaad/paygate/internal/fixtures/currency"
	"github.com/amirasaad/paygate/pkg/config"
	"github.com/amirasaad/paygate/pkg/currency"
	"github.com/amirasaad/paygate/pkg/pricing"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
)

const usage = `Usage: cli <command> [arguments]
Commands:
  quote <subtotal> <currency> [location] [discount]
  format <amount> <currency>
  convert <amount> <from> <to>
  currencies`

var (
	errUsage = errors.New("invalid usage")

	heading = color.New(color.FgCyan, color.Bold)
	label   = color.New(color.FgHiBlack)
	total   = color.New(color.FgGreen, color.Bold)
	failure = color.New(color.FgRed)
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
		}
		_, _ = failure.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	table, err := currencyfixtures.LoadTable(cfg.Pricing.CurrencyFile, cfg.Pricing.RulesFile)
	if err != nil {
		return fmt.Errorf("failed to load currency table: %w", err)
	}
	engine := pricing.New(table, pricing.WithServiceFeeRate(decimal.NewFromFloat(cfg.Pricing.ServiceFeeRate)))

	switch args[0] {
	case "quote":
		return quote(engine, args[1:], out)
	case "format":
		if len(args) != 3 {
			return errUsage
		}
		amount, err := parseAmount(args[1])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, engine.FormatCurrency(amount, strings.ToUpper(args[2])))
		return err
	case "convert":
		if len(args) != 4 {
			return errUsage
		}
		amount, err := parseAmount(args[1])
		if err != nil {
			return err
		}
		from, to := strings.ToUpper(args[2]), strings.ToUpper(args[3])
		converted, err := engine.Convert(amount, from, to)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s = %s\n",
			engine.FormatCurrency(amount, from), engine.FormatCurrency(converted, to))
		return err
	case "currencies":
		return listCurrencies(table, out)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func quote(engine *pricing.Engine, args []string, out io.Writer) error {
	if len(args) < 2 || len(args) > 4 {
		return errUsage
	}
	subtotal, err := parseAmount(args[0])
	if err != nil {
		return err
	}
	code := strings.ToUpper(args[1])
	var location string
	if len(args) > 2 {
		location = args[2]
	}
	discount := decimal.Zero
	if len(args) > 3 {
		if discount, err = parseAmount(args[3]); err != nil {
			return err
		}
	}

	res, err := engine.OrderTotal(subtotal, location, code, discount)
	if err != nil {
		return err
	}
	row := func(name string, v decimal.Decimal) {
		_, _ = label.Fprintf(out, "%-14s", name)
		_, _ = fmt.Fprintln(out, engine.FormatCurrency(v, code))
	}
	_, _ = heading.Fprintf(out, "Order quote (%s, %s delivery)\n", res.Currency, res.Tier)
	row("Subtotal", res.Subtotal)
	row("Service fee", res.ServiceFee)
	row("Delivery fee", res.DeliveryFee)
	if res.Discount.IsPositive() {
		_, _ = label.Fprintf(out, "%-14s", "Discount")
		_, _ = fmt.Fprintln(out, "-"+engine.FormatCurrency(res.Discount, code))
	}
	_, _ = label.Fprintf(out, "%-14s", "Total")
	_, err = total.Fprintln(out, engine.FormatCurrency(res.Total, code))
	return err
}

func listCurrencies(table *currency.Table, out io.Writer) error {
	_, _ = heading.Fprintf(out, "%-5s %-24s %-6s %-12s %s\n", "CODE", "NAME", "SYMBOL", "RATE", "GATEWAY")
	for _, code := range table.Codes() {
		c, err := table.Lookup(string(code))
		if err != nil {
			return err
		}
		gateway := "no"
		if c.GatewaySupported {
			gateway = "yes"
		}
		if _, err := fmt.Fprintf(out, "%-5s %-24s %-6s %-12s %s\n",
			c.Code, c.Name, c.Symbol, c.Rate.String(), gateway); err != nil {
			return err
		}
	}
	return nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}
