// Package money converts between user-facing decimal amount strings and the
// int64 cent values the ledger stores. Parsing goes through decimals rather
// than floats so "0.07" never becomes 6 cents.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

var hundred = decimal.NewFromInt(100)

// ParseCents parses a decimal amount string ("150.00", "150", "1.234,56")
// into cents. Comma is accepted as decimal separator when it is the last
// separator in the string. Amounts with more than two decimal places are
// rejected.
func ParseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// "1.234,56" -> "1234.56"; "150,00" -> "150.00"
	if i := strings.LastIndexByte(s, ','); i >= 0 && i > strings.LastIndexByte(s, '.') {
		s = strings.ReplaceAll(s, ".", "")
		i = strings.LastIndexByte(s, ',')
		s = s[:i] + "." + s[i+1:]
	}
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Mul(hundred)
	if !cents.IsInteger() {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// FormatCents renders cents as a plain two-decimal string.
func FormatCents(cents int64) string {
	return decimal.NewFromInt(cents).Div(hundred).StringFixed(2)
}

// Percent returns part/whole as a percentage rounded to two decimals and
// capped at 100. A non-positive whole yields 0.
func Percent(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	p := decimal.NewFromInt(part).Mul(hundred).Div(decimal.NewFromInt(whole)).Round(2)
	if p.GreaterThan(hundred) {
		return 100
	}
	f, _ := p.Float64()
	return f
}
