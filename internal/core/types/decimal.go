// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places amounts are rounded to.
const MoneyPlaces = 2

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Round rounds an amount half away from zero to MoneyPlaces.
func Round(m Money) Money {
	return m.Round(MoneyPlaces)
}

// LineTotal returns quantity * unitPrice, rounded.
func LineTotal(quantity int, unitPrice Money) Money {
	return Round(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
}

// VAT returns the VAT amount for base at ratePercent (e.g. 22 for 22%), rounded.
func VAT(base, ratePercent Money) Money {
	return Round(base.Mul(ratePercent).Div(decimal.NewFromInt(100)))
}

// MaxZero clamps negative amounts to zero.
func MaxZero(m Money) Money {
	if m.IsNegative() {
		return decimal.Zero
	}
	return m
}
