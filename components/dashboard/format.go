package dashboard

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NumberFormatter formats currency, counts and percentages for a locale.
type NumberFormatter struct {
	printer *message.Printer
	unit    currency.Unit
	symbol  string
}

// NewNumberFormatter builds a formatter for the given locale. The currency
// is derived from the locale's region and falls back to USD.
func NewNumberFormatter(tag language.Tag) *NumberFormatter {
	unit, conf := currency.FromTag(tag)
	if conf == language.No {
		unit = currency.USD
	}
	return &NumberFormatter{
		printer: message.NewPrinter(tag),
		unit:    unit,
		symbol:  currencySymbol(unit),
	}
}

var defaultFormatter = NewNumberFormatter(language.AmericanEnglish)

// FormatCurrency renders a whole-dollar USD amount for en-US, e.g. $875,000.
func FormatCurrency(amount float64) string {
	return defaultFormatter.Currency(amount)
}

// FormatPercent renders a value with one decimal place, e.g. 28.5%.
func FormatPercent(value float64) string {
	return defaultFormatter.Percent(value, 1)
}

// FormatNumber renders a count with locale grouping.
func FormatNumber(value float64) string {
	return defaultFormatter.Number(value)
}

// Currency rounds half away from zero to whole units and groups digits.
func (f *NumberFormatter) Currency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return f.symbol + "0"
	}
	rounded := decimal.NewFromFloat(amount).Round(0)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	return sign + f.symbol + f.printer.Sprintf("%d", rounded.IntPart())
}

// Number rounds to a whole number and groups digits.
func (f *NumberFormatter) Number(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "0"
	}
	return f.printer.Sprintf("%d", decimal.NewFromFloat(value).Round(0).IntPart())
}

// Percent renders value with the given number of decimals and a % suffix.
func (f *NumberFormatter) Percent(value float64, places int32) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}
	return decimal.NewFromFloat(value).StringFixed(places) + "%"
}

// SumCurrency adds amounts without float drift.
func SumCurrency(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(a))
	}
	f, _ := total.Float64()
	return f
}

func currencySymbol(unit currency.Unit) string {
	switch strings.ToUpper(unit.String()) {
	case "USD":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	default:
		return unit.String() + " "
	}
}
