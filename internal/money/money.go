// Package money holds the fixed-point helpers used for every monetary
// amount in the ledger. Amounts always carry exactly two fraction digits.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fraction digits kept on every amount.
const Scale = 2

// Max is the largest amount that fits numeric(14,2).
var Max = decimal.RequireFromString("999999999999.99")

// Zero is the zero amount.
var Zero = decimal.Zero

// Round rounds d half away from zero to two fraction digits.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Parse parses s and rounds it to two fraction digits.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return Round(d), nil
}

// Format renders d with exactly two fraction digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}

// Sum adds amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Clamp returns d, or zero if d is negative.
func Clamp(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Percent returns part as a percentage of total rounded to two places,
// or zero when total is zero.
func Percent(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(decimal.NewFromInt(100)).Round(Scale)
}

// Ratio returns num/den rounded to four places, or zero when den is zero.
func Ratio(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.DivRound(den, 4)
}
