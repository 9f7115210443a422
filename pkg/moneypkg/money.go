// Package moneypkg provides fixed scale money amounts on top of decimal.Decimal.
package moneypkg

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits an amount may carry.
const Scale = 2

// ErrMalformedAmount indicates that the amount cannot be parsed or has too many fractional digits.
var ErrMalformedAmount = errors.New("malformed amount")

// Parse converts user input to an amount with at most Scale fractional digits.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrMalformedAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrMalformedAmount
	}

	if !HasScale(d) {
		return decimal.Zero, ErrMalformedAmount
	}

	return d, nil
}

// MustParse is like Parse but panics on malformed input. Intended for constants and tests.
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return d
}

// HasScale reports whether d fits into Scale fractional digits without rounding.
func HasScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(Scale))
}

// IsPositive reports whether d is a valid strictly positive amount.
func IsPositive(d decimal.Decimal) bool {
	return d.IsPositive() && HasScale(d)
}

// Format renders d with exactly Scale fractional digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}
