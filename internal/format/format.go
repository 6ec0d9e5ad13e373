// Package format renders engine values for people: localized currency,
// grouped amount inputs and the term-in-years hint.
package format

import (
	"math"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"amortize/internal/core"
)

// Formatter formats numbers for a single locale and currency.
type Formatter struct {
	printer *message.Printer
	symbol  string
	scale   int

	group   string
	decimal string
}

// Default formats US dollars in American English.
var Default = New(language.AmericanEnglish, currency.USD, "$")

// New creates a Formatter. The number of decimals follows the standard
// rounding of the currency unit.
func New(tag language.Tag, unit currency.Unit, symbol string) *Formatter {
	scale, _ := currency.Standard.Rounding(unit)
	p := message.NewPrinter(tag)
	return &Formatter{
		printer: p,
		symbol:  symbol,
		scale:   scale,
		group:   separator(p.Sprint(number.Decimal(1000000)), ","),
		decimal: separator(p.Sprint(number.Decimal(1.5, number.Scale(1))), "."),
	}
}

// separator extracts the symbol after the leading digit of a sample such
// as "1,000,000" or "1.5".
func separator(sample, fallback string) string {
	r := []rune(sample)
	if len(r) < 3 || unicode.IsDigit(r[1]) {
		return fallback
	}
	return string(r[1])
}

// Currency formats v as a currency amount, e.g. 1266.7133 -> "$1,266.71".
// Rounding is half away from zero on the currency's last decimal.
func (f *Formatter) Currency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "—"
	}
	d := decimal.NewFromFloat(v).Round(int32(f.scale))
	amount := f.printer.Sprint(number.Decimal(d.Abs().InexactFloat64(), number.Scale(f.scale)))
	if d.IsNegative() {
		return "-" + f.symbol + amount
	}
	return f.symbol + amount
}

// Percent formats a percentage with at most two decimals, e.g. "4.5%".
func (f *Formatter) Percent(v float64) string {
	return f.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2))) + "%"
}

// maxAmountExponent keeps scientific input such as "1e999999999" from
// expanding into an enormous digit string.
const maxAmountExponent = 64

// AmountInput inserts thousands separators into a typed amount while
// keeping every digit the user entered. Text that is not a number is
// returned unchanged so the field never eats keystrokes.
func (f *Formatter) AmountInput(raw string) string {
	d, err := decimal.NewFromString(core.StripThousands(raw))
	if err != nil || d.Exponent() > maxAmountExponent || d.Exponent() < -maxAmountExponent {
		return raw
	}
	scale := int32(0)
	if exp := d.Exponent(); exp < 0 {
		scale = -exp
	}

	digits := d.StringFixed(scale)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	whole, frac, hasFrac := strings.Cut(digits, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(f.group)
		}
		b.WriteRune(c)
	}
	if hasFrac {
		b.WriteString(f.decimal)
		b.WriteString(frac)
	}
	return b.String()
}

// Years converts a term in months to whole years for display.
func Years(termMonths int) int {
	return int(math.Round(float64(termMonths) / 12))
}
