// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts as printed by the
// backend listings ("$1,234.50") and as typed into forms ("1234.5").
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a currency amount. The zero value is $0.00.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps a decimal value.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// ParseMoney converts a currency string to Money.
//
// It strips a leading currency symbol, surrounding whitespace and grouping
// separators before parsing the remainder as a decimal. Negative values are
// accepted here; callers enforce sign rules.
//
// Examples:
//
//	ParseMoney("$1,234.50") -> 1234.50, nil
//	ParseMoney("  250 ")    -> 250, nil
//	ParseMoney("$")         -> 0, ErrInvalidAmount
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(s[1:])
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return Money{}, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if neg {
		d = d.Neg()
	}
	return Money{Decimal: d}, nil
}

// MustMoney is ParseMoney for constants; it panics on malformed input.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic("core: bad money literal " + s)
	}
	return m
}

// HasCurrencySymbol reports whether a cell looks like a printed currency amount.
func HasCurrencySymbol(s string) bool {
	return strings.Contains(s, "$")
}

// Format renders the amount the way the backend prints it: $1,234.50.
func (m Money) Format() string {
	s := m.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	if m.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{Decimal: m.Decimal.Sub(o.Decimal)}
}

// GreaterThan compares two amounts.
func (m Money) GreaterThan(o Money) bool {
	return m.Decimal.GreaterThan(o.Decimal)
}

// Equal compares two amounts numerically.
func (m Money) Equal(o Money) bool {
	return m.Decimal.Equal(o.Decimal)
}
