package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseLoanInput converts the raw text of the three calculator fields into
// a validated LoanInput.
//
// The principal may carry thousands separators (1,250,000 or 1 250 000 or
// 1_250_000); they are stripped before parsing. The term must be a whole
// number of months.
//
// Examples:
//   ParseLoanInput("250,000", "4.5", "360") -> {250000 4.5 360}, nil
//   ParseLoanInput("0", "4.5", "360")       -> ErrInvalidPrincipal
//   ParseLoanInput("1000", "-1", "12")      -> ErrInvalidRate
//   ParseLoanInput("1000", "5", "12.5")     -> ErrInvalidTerm
func ParseLoanInput(principal, annualRate, termMonths string) (LoanInput, error) {
	p, err := parsePositive(StripThousands(principal))
	if err != nil {
		return LoanInput{}, ErrInvalidPrincipal
	}

	r, err := decimal.NewFromString(strings.TrimSpace(annualRate))
	if err != nil || r.IsNegative() {
		return LoanInput{}, ErrInvalidRate
	}

	t, err := parsePositive(strings.TrimSpace(termMonths))
	if err != nil || !t.IsInteger() || t.GreaterThan(decimal.NewFromInt(MaxTermMonths)) {
		return LoanInput{}, ErrInvalidTerm
	}

	in := LoanInput{
		Principal:         p.InexactFloat64(),
		AnnualRatePercent: r.InexactFloat64(),
		TermMonths:        int(t.IntPart()),
	}
	if err := in.Validate(); err != nil {
		return LoanInput{}, err
	}
	return in, nil
}

// StripThousands removes grouping characters from a typed amount, leaving
// the digits-only underlying value.
func StripThousands(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ',', '_', ' ', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

var errNotPositive = errors.New("value must be positive")

func parsePositive(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, errNotPositive
	}
	return d, nil
}
