package decimal

import (
	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// Fixed CFDI line-item rates
var (
	// TaxRate is the IVA rate applied to every line subtotal (16%)
	TaxRate = decimal.RequireFromString("0.16")

	// RetentionRate is the ISR retention rate applied to every line subtotal (1.25%)
	RetentionRate = decimal.RequireFromString("0.0125")
)

// FromString parses decimal from string
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// CalculateTax computes the exact IVA for a subtotal: subtotal * 0.16
func CalculateTax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(TaxRate)
}

// CalculateRetention computes the exact ISR retention: subtotal * 0.0125
func CalculateRetention(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(RetentionRate)
}

// CalculateLineTotal computes: subtotal + tax - retention
func CalculateLineTotal(subtotal, tax, retention decimal.Decimal) decimal.Decimal {
	return subtotal.Add(tax).Sub(retention)
}

// Sum sums a slice of decimals in order
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// RoundCurrency rounds to cents for display; stored amounts stay exact
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
