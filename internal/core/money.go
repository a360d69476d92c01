// Package core holds the expense model and the pure computations over it:
// period summaries, day breakdowns and month calendar grids.
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseDecimalToCents converts a peso amount such as "1500", "12.34" or
// "12,34" to centavos, rounding half up on the third decimal. Only strictly
// positive amounts are accepted; a thousands separator is not.
//
//	ParseDecimalToCents("12,34")  -> 1234
//	ParseDecimalToCents("12.345") -> 1235
//	ParseDecimalToCents("12.344") -> 1234
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	whole, frac, _ := strings.Cut(s, ".")
	if s == "" || !allDigits(whole) || !allDigits(frac) || strings.Contains(frac, ".") {
		return 0, ErrInvalidAmount
	}
	if whole == "" {
		whole = "0"
	}
	pesos, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || pesos > math.MaxInt64/100-1 {
		return 0, ErrInvalidAmount
	}

	var cents int64
	for i := 0; i < 2 && i < len(frac); i++ {
		cents += int64(frac[i]-'0') * []int64{10, 1}[i]
	}
	if len(frac) > 2 && frac[2] >= '5' {
		cents++
	}

	total := pesos*100 + cents
	if total <= 0 {
		return 0, ErrInvalidAmount
	}
	return total, nil
}

// allDigits is true for the empty string.
func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseMoney is ParseDecimalToCents wrapped in a Money.
func ParseMoney(s string) (Money, error) {
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", err, s)
	}
	return Money{Cents: cents}, nil
}

// Decimal renders the amount as a plain decimal string ("1234.50").
func (m Money) Decimal() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
