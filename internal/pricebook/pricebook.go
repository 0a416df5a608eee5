// Package pricebook holds the admin-configured catalog that proposals are priced from:
// equipment tiers, add-ons, maintenance plans, bundle discounts, financing options,
// incentives and the cash markup setting.
package pricebook

import "github.com/hvacpro/proposals/internal/pricing"

// ItemKind distinguishes the three priced catalog entities.
type ItemKind string

const (
	KindTier  ItemKind = "tier"
	KindAddOn ItemKind = "addon"
	KindPlan  ItemKind = "plan"
)

// Valid reports whether k is a known kind.
func (k ItemKind) Valid() bool {
	return k == KindTier || k == KindAddOn || k == KindPlan
}

// Item is an equipment tier, add-on or maintenance plan. It satisfies pricing.Priced through the
// embedded PricedItem. Label and SEER apply to tiers, Category to add-ons, VisitsPerYear to plans.
type Item struct {
	ID            int64    `json:"id"`
	Kind          ItemKind `json:"kind"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Label         string   `json:"label,omitempty"`
	Category      string   `json:"category,omitempty"`
	SEER          float64  `json:"seer,omitempty"`
	VisitsPerYear int      `json:"visits_per_year,omitempty"`
	pricing.PricedItem
	Active    bool `json:"active"`
	SortOrder int  `json:"sort_order"`
}

// ItemPricing is the derived view admins see next to an item's margin settings.
type ItemPricing struct {
	SalesPrice    float64  `json:"sales_price"`
	GrossProfit   float64  `json:"gross_profit"`
	MarkupPercent *float64 `json:"markup_percent"`
}

// Pricing derives the sales price, gross profit and markup percent of the item. MarkupPercent is
// nil when the base cost is zero.
func (i Item) Pricing() ItemPricing {
	p := ItemPricing{
		SalesPrice:  pricing.SalesPrice(i),
		GrossProfit: pricing.GrossProfit(i),
	}
	if markup, err := pricing.MarkupPercent(i); err == nil {
		p.MarkupPercent = &markup
	}
	return p
}

// FinancingOption is a payment arrangement offered during the proposal.
type FinancingOption struct {
	ID               int64                 `json:"id"`
	Name             string                `json:"name"`
	Type             pricing.FinancingType `json:"type"`
	Provider         string                `json:"provider,omitempty"`
	TermMonths       int                   `json:"term_months"`
	APR              float64               `json:"apr"`
	EscalatorPercent float64               `json:"escalator_percent"`
	Active           bool                  `json:"active"`
	SortOrder        int                   `json:"sort_order"`
}

// Financing converts the option into engine input.
func (f FinancingOption) Financing() pricing.Financing {
	return pricing.Financing{
		Type:             f.Type,
		Provider:         f.Provider,
		TermMonths:       f.TermMonths,
		APR:              f.APR,
		EscalatorPercent: f.EscalatorPercent,
	}
}

// Incentive is a flat rebate such as a utility or manufacturer rebate.
type Incentive struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Active bool    `json:"active"`
}

// Settings holds price book wide values.
type Settings struct {
	CashMarkupPercent float64 `json:"cash_markup_percent"`
	Currency          string  `json:"currency"`
}

// Book is an immutable snapshot of the price book, passed explicitly into proposal pricing.
type Book struct {
	Items            []Item                   `json:"items"`
	BundleDiscounts  []pricing.BundleDiscount `json:"bundle_discounts"`
	FinancingOptions []FinancingOption        `json:"financing_options"`
	Incentives       []Incentive              `json:"incentives"`
	Settings         Settings                 `json:"settings"`
}

// Item returns the item with the given id.
func (b Book) Item(id int64) (Item, bool) {
	for _, it := range b.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// ItemsOfKind returns the items of one kind in catalog order.
func (b Book) ItemsOfKind(kind ItemKind) []Item {
	items := make([]Item, 0)
	for _, it := range b.Items {
		if it.Kind == kind {
			items = append(items, it)
		}
	}
	return items
}

// FinancingOption returns the financing option with the given id.
func (b Book) FinancingOption(id int64) (FinancingOption, bool) {
	for _, f := range b.FinancingOptions {
		if f.ID == id {
			return f, true
		}
	}
	return FinancingOption{}, false
}

// Incentive returns the incentive with the given id.
func (b Book) Incentive(id int64) (Incentive, bool) {
	for _, inc := range b.Incentives {
		if inc.ID == id {
			return inc, true
		}
	}
	return Incentive{}, false
}
