package handler

import "github.com/shopspring/decimal"

// toDecimal converts a bound JSON number to a decimal.Decimal
func toDecimal(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// toDecimalPtr converts an optional bound JSON number to a *decimal.Decimal
func toDecimalPtr(f float64) *decimal.Decimal {
	d := toDecimal(f)
	return &d
}
