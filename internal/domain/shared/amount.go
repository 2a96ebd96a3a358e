package shared

import (
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a record does not name one
const DefaultCurrency = "DZD"

var hundred = decimal.NewFromInt(100)

// HasAtMostTwoDecimals reports whether d carries no more than two fractional digits
func HasAtMostTwoDecimals(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(2))
}

// ValidatePositiveAmount records failures for a monetary field that must be
// strictly positive with at most two decimal places.
func ValidatePositiveAmount(v *ValidationError, field string, amount decimal.Decimal) {
	if !amount.IsPositive() {
		v.Add(field, "%s must be greater than 0", field)
	}
	if !HasAtMostTwoDecimals(amount) {
		v.Add(field, "%s must have at most 2 decimal places", field)
	}
}

// ValidateNonNegativeAmount records failures for a monetary balance field
func ValidateNonNegativeAmount(v *ValidationError, field string, amount decimal.Decimal) {
	if amount.IsNegative() {
		v.Add(field, "%s cannot be negative", field)
	}
	if !HasAtMostTwoDecimals(amount) {
		v.Add(field, "%s must have at most 2 decimal places", field)
	}
}

// Round2 rounds half away from zero to two decimal places
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percentage returns numerator/denominator*100 rounded to two places, or zero
// when the denominator is zero.
func Percentage(numerator, denominator decimal.Decimal) decimal.Decimal {
	if denominator.IsZero() {
		return decimal.Zero
	}
	return numerator.Div(denominator).Mul(hundred).Round(2)
}

// MaxZero floors d at zero
func MaxZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
