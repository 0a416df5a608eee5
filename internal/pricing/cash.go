package pricing

// CustomerPrice applies the pay-in-full markup to a sales price and rounds to cents.
func CustomerPrice(salesPrice, cashMarkupPercent float64) float64 {
	return AddPercent(salesPrice, cashMarkupPercent, MoneyPrecision)
}
