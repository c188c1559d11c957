// Package money implements fixed-point currency arithmetic in satang
// (hundredths of a baht). Ledger math stays in integer minor units so
// repeated partial payments never accumulate float drift; rounding
// happens once, at presentation time.
package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Money is an amount in satang. 100 Money == 1 baht.
type Money int64

// VATRate is the fixed value-added tax rate applied to every sale.
const VATRate = 7 // percent

// ErrMalformedAmount indicates an amount string that could not be parsed.
var ErrMalformedAmount = errors.New("money: malformed amount")

// FromBaht converts a whole-baht integer value.
func FromBaht(baht int64) Money {
	return Money(baht * 100)
}

// Parse reads a decimal baht string ("1234.50") into satang. At most two
// fractional digits are accepted.
func Parse(s string) (Money, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, ErrMalformedAmount
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("%w: %q has more than two fractional digits", ErrMalformedAmount, s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}
	v := w*100 + f
	if neg {
		v = -v
	}
	return Money(v), nil
}

// FromFloat converts a float baht amount, rounding half away from zero to
// the nearest satang. Used only at API boundaries.
func FromFloat(baht float64) Money {
	if baht >= 0 {
		return Money(baht*100 + 0.5)
	}
	return Money(baht*100 - 0.5)
}

// Float returns the amount in baht as a float64 for JSON payloads.
func (m Money) Float() float64 {
	return float64(m) / 100
}

// VAT computes the 7% tax on a subtotal, rounded half up in satang.
func VAT(subtotal Money) Money {
	return Money((int64(subtotal)*VATRate + 50) / 100)
}

// MulQty multiplies a unit price by an item quantity.
func (m Money) MulQty(qty int) Money {
	return m * Money(qty)
}

// String formats the amount as baht with two decimals and no symbol.
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
