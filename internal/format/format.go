// Package format renders engine values for display. All rounding to currency
// precision happens here; the finance package never rounds.
package format

import (
	"fmt"
	"math"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"fincalc/internal/calculators"
)

// Formatter prints numbers for one locale and currency. The site uses
// en-US/USD only.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// New returns a formatter for the given locale and currency.
func New(tag language.Tag, unit currency.Unit) *Formatter {
	p := message.NewPrinter(tag)
	return &Formatter{printer: p, symbol: p.Sprint(currency.Symbol(unit))}
}

var usd = New(language.AmericanEnglish, currency.USD)

// USD is the formatter used by the site and the CLI.
func USD() *Formatter {
	return usd
}

// Currency formats an amount with the currency symbol, thousands separators
// and two decimals, e.g. "$1,199.10" or "-$25.00".
func (f *Formatter) Currency(amount float64) string {
	amount = cents(amount)
	if amount < 0 {
		return "-" + f.symbol + f.printer.Sprintf("%.2f", -amount)
	}
	return f.symbol + f.printer.Sprintf("%.2f", amount)
}

// Percent formats a percentage value (6 means 6%) with two decimals.
func (f *Formatter) Percent(value float64) string {
	return f.printer.Sprintf("%.2f", cents(value)) + "%"
}

// Number formats a plain number with grouping and the given decimals.
func (f *Formatter) Number(value float64, decimals int) string {
	return f.printer.Sprintf(fmt.Sprintf("%%.%df", decimals), value)
}

// Months renders a count of months, folding whole years, e.g. "27 years 4 months".
func (f *Formatter) Months(months float64) string {
	n := int(math.Round(months))
	years, rest := n/12, n%12
	switch {
	case n == 0:
		return "0 months"
	case years == 0:
		return plural(rest, "month")
	case rest == 0:
		return plural(years, "year")
	default:
		return plural(years, "year") + " " + plural(rest, "month")
	}
}

// Years renders a duration in years with up to one decimal.
func (f *Formatter) Years(years float64) string {
	if years == math.Trunc(years) {
		return plural(int(years), "year")
	}
	return f.printer.Sprintf("%.1f years", years)
}

// Result formats a calculator result according to its kind.
func (f *Formatter) Result(r calculators.Result) string {
	switch r.Kind {
	case calculators.Currency:
		return f.Currency(r.Value)
	case calculators.Percent:
		return f.Percent(r.Value)
	case calculators.Months:
		return f.Months(r.Value)
	case calculators.Years:
		return f.Years(r.Value)
	case calculators.Text:
		return r.Text
	default:
		return f.Number(r.Value, 2)
	}
}

// cents rounds half away from zero to two decimals and clears negative zero.
func cents(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0
	}
	return r
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
