package domain

import (
	"github.com/shopspring/decimal"
)

// Money is an amount in minor currency units (kopecks).
type Money int64

// ToDecimal converts the minor units to a major-unit decimal.
func (m Money) ToDecimal() decimal.Decimal {
	return decimal.NewFromInt(int64(m)).Div(decimal.NewFromInt(MinorUnitsPerMajor))
}

// String renders the amount in major units with two decimals, e.g. "100.50".
func (m Money) String() string {
	return m.ToDecimal().StringFixed(2)
}
