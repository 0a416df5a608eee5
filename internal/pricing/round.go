package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

// Precision is the number of decimal places a figure is rounded to.
type Precision int32

const (
	// SalesPricePrecision rounds sales prices and margins to whole currency units.
	SalesPricePrecision Precision = 0
	// MoneyPrecision rounds customer prices and payments to cents.
	MoneyPrecision Precision = 2
	// PercentPrecision rounds derived percentages to one decimal place.
	PercentPrecision Precision = 1
)

var hundred = decimal.NewFromInt(100)

// Round rounds v half away from zero at the given precision.
func Round(v float64, p Precision) float64 {
	if !finite(v) {
		return v
	}
	return roundDecimal(decimal.NewFromFloat(v), p)
}

// Product rounds a*b at the given precision. The product is taken in decimal so that a result
// landing exactly on a half is not pulled below it by binary floating point.
func Product(a, b float64, p Precision) float64 {
	if !finite(a) || !finite(b) {
		return a * b
	}
	return roundDecimal(decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)), p)
}

// PercentOf rounds percent% of v at the given precision.
func PercentOf(v, percent float64, p Precision) float64 {
	if !finite(v) || !finite(percent) {
		return v * percent / 100
	}
	return roundDecimal(decimal.NewFromFloat(v).Mul(decimal.NewFromFloat(percent)).Div(hundred), p)
}

// AddPercent rounds v increased by percent% at the given precision.
func AddPercent(v, percent float64, p Precision) float64 {
	if !finite(v) || !finite(percent) {
		return v * (1 + percent/100)
	}
	factor := hundred.Add(decimal.NewFromFloat(percent))
	return roundDecimal(decimal.NewFromFloat(v).Mul(factor).Div(hundred), p)
}

// RatioPercent rounds part as a percent of whole at the given precision. whole must be non-zero.
func RatioPercent(part, whole float64, p Precision) float64 {
	if !finite(part) || !finite(whole) {
		return part / whole * 100
	}
	return roundDecimal(decimal.NewFromFloat(part).Mul(hundred).Div(decimal.NewFromFloat(whole)), p)
}

func roundDecimal(d decimal.Decimal, p Precision) float64 {
	rounded, _ := d.Round(int32(p)).Float64()
	return rounded
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
