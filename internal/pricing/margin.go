package pricing

import "fmt"

// MarginType selects how a margin amount is applied to a base cost.
type MarginType string

const (
	MarginFixed      MarginType = "fixed"
	MarginPercentage MarginType = "percentage"
)

// Valid reports whether t is a known margin type.
func (t MarginType) Valid() bool {
	return t == MarginFixed || t == MarginPercentage
}

// Margin is the amount added on top of a base cost. For MarginPercentage the amount is a percent of
// the base cost; for MarginFixed it is a currency amount.
type Margin struct {
	Type   MarginType `json:"type"`
	Amount float64    `json:"amount"`
}

// Priced is implemented by every entity that carries a base cost and a margin rule:
// equipment tiers, add-ons and maintenance plans.
type Priced interface {
	Cost() float64
	MarginRule() Margin
}

// PricedItem is the plain Priced implementation embedded by price book records.
type PricedItem struct {
	BaseCost float64 `json:"base_cost"`
	Margin   Margin  `json:"margin"`
}

func (p PricedItem) Cost() float64      { return p.BaseCost }
func (p PricedItem) MarginRule() Margin { return p.Margin }

// SalesPrice returns the base cost plus gross profit, so the two always differ by exactly the
// profit the price book reports.
func SalesPrice(item Priced) float64 {
	return item.Cost() + GrossProfit(item)
}

// GrossProfit returns the margin earned on the item in currency units. Percentage margins are
// rounded to whole units.
func GrossProfit(item Priced) float64 {
	m := item.MarginRule()
	if m.Type == MarginPercentage {
		return PercentOf(item.Cost(), m.Amount, SalesPricePrecision)
	}
	return m.Amount
}

// MarkupPercent returns gross profit as a percent of base cost, to one decimal place.
func MarkupPercent(item Priced) (float64, error) {
	cost := item.Cost()
	if cost <= 0 {
		return 0, fmt.Errorf("markup percent for base cost %v: %w", cost, ErrInvalidConfiguration)
	}
	return RatioPercent(GrossProfit(item), cost, PercentPrecision), nil
}
