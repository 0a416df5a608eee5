package pricing

// BundleDiscount is the discount granted for prepaying a number of maintenance years.
type BundleDiscount struct {
	Years           int     `json:"years"`
	DiscountPercent float64 `json:"discount_percent"`
	Badge           string  `json:"badge,omitempty"`
}

// BundleTotal is the multi-year maintenance price before and after the bundle discount.
type BundleTotal struct {
	Years           int     `json:"years"`
	Total           float64 `json:"total"`
	DiscountPercent float64 `json:"discount_percent"`
	Discount        float64 `json:"discount"`
	FinalPrice      float64 `json:"final_price"`
}

// DiscountFor returns the discount percent configured for years, or 0 when none is configured.
func DiscountFor(years int, discounts []BundleDiscount) float64 {
	for _, d := range discounts {
		if d.Years == years {
			return d.DiscountPercent
		}
	}
	return 0
}

// Bundle prices annualPrice over years and subtracts the matching bundle discount.
func Bundle(annualPrice float64, years int, discounts []BundleDiscount) BundleTotal {
	total := annualPrice * float64(years)
	percent := DiscountFor(years, discounts)
	discount := PercentOf(total, percent, SalesPricePrecision)

	return BundleTotal{
		Years:           years,
		Total:           total,
		DiscountPercent: percent,
		Discount:        discount,
		FinalPrice:      total - discount,
	}
}
