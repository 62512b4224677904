package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCOP renders an amount in Colombian peso notation.
// Example: 15000.5 -> "$ 15.000,50"
func FormatCOP(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	fixed := amount.Abs().StringFixed(2)

	integerPart, fraction, _ := strings.Cut(fixed, ".")

	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}

	out := "$ " + strings.Join(groups, ".")
	if fraction != "00" {
		out += "," + fraction
	}
	if negative {
		out = "-" + out
	}
	return out
}
