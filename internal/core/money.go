// Package core holds the domain records served by the residential-complex API
// and the small amount of arithmetic the console performs on them.
//
// Amounts travel as decimal strings ("1500.00") and are kept as integer
// centavos once parsed.
package core

import (
	"strconv"
	"strings"
)

type Money struct {
	Cents int64
}

// ParseDecimalToCents converts a decimal string to centavos.
//
// Only ASCII digits and a single dot are accepted; the third fractional digit
// rounds half-up and zero is a valid amount. Signs, commas and anything else
// that is not a plain decimal return ErrInvalidAmount.
//
//	ParseDecimalToCents("1500.00") -> 150000, nil
//	ParseDecimalToCents("1,500")   -> 0, ErrInvalidAmount
//	ParseDecimalToCents("0")       -> 0, nil
//	ParseDecimalToCents("abc")     -> 0, ErrInvalidAmount
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	if strings.Contains(fracPart, ".") {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		if fracPart == "" {
			return 0, ErrInvalidAmount
		}
		intPart = "0"
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return 0, ErrInvalidAmount
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Percent returns p percent of m, rounded half-up to the centavo.
func (m Money) Percent(p int64) Money {
	return Money{Cents: (m.Cents*p + 50) / 100}
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

// Pesos returns the value as float64 for ratios and charts only.
func (m Money) Pesos() float64 {
	return float64(m.Cents) / 100.0
}
