package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput() Input {
	return Input{
		Equipment: PricedItem{BaseCost: 10000, Margin: Margin{Type: MarginFixed, Amount: 2500}},
		AddOns: []Line{
			{Item: PricedItem{BaseCost: 500, Margin: Margin{Type: MarginPercentage, Amount: 40}}, Selected: true},
			{Item: PricedItem{BaseCost: 900, Margin: Margin{Type: MarginFixed, Amount: 300}}, Selected: false},
		},
		Plan:  PricedItem{BaseCost: 200, Margin: Margin{Type: MarginFixed, Amount: 100}},
		Years: 5,
		BundleDiscounts: []BundleDiscount{
			{Years: 3, DiscountPercent: 5},
			{Years: 5, DiscountPercent: 10},
		},
		Incentives: []Incentive{
			{Amount: 1000, Selected: true},
			{Amount: 500, Selected: false},
		},
		CashMarkupPercent: 20,
	}
}

func TestComputeTotalsCash(t *testing.T) {
	totals, err := ComputeTotals(sampleInput())
	require.NoError(t, err)

	assert.Equal(t, FinancingCash, totals.PaymentMethod)
	assert.Equal(t, 15000.0, totals.EquipmentPrice)
	assert.Equal(t, 840.0, totals.AddOnsTotal)
	assert.Equal(t, 1350.0, totals.MaintenanceTotal)
	require.NotNil(t, totals.Maintenance)
	assert.Equal(t, 150.0, totals.Maintenance.Discount)
	assert.Equal(t, 1000.0, totals.IncentivesTotal)
	assert.Equal(t, 17190.0, totals.Subtotal)
	assert.Equal(t, 16190.0, totals.GrandTotal)
	assert.Nil(t, totals.Payment)
}

func TestComputeTotalsFinance(t *testing.T) {
	in := sampleInput()
	in.Financing = &Financing{Type: FinancingFinance, Provider: "Bank", TermMonths: 60}

	totals, err := ComputeTotals(in)
	require.NoError(t, err)

	assert.Equal(t, 12500.0, totals.EquipmentPrice)
	assert.Equal(t, 700.0, totals.AddOnsTotal)
	assert.Equal(t, 14550.0, totals.Subtotal)
	assert.Equal(t, 13550.0, totals.GrandTotal)
	require.NotNil(t, totals.Payment)
	assert.Equal(t, 225.83, totals.Payment.MonthlyPayment)
	assert.Equal(t, 13550.0, totals.Payment.TotalCost)
	assert.Equal(t, "Bank", totals.Payment.Provider)

	in.Financing.APR = 7.99
	in.Financing.TermMonths = 120
	totals, err = ComputeTotals(in)
	require.NoError(t, err)
	assert.Equal(t, 164.33, totals.Payment.MonthlyPayment)
}

func TestComputeTotalsLease(t *testing.T) {
	in := sampleInput()
	in.Financing = &Financing{Type: FinancingLease, Provider: "Lease Co", TermMonths: 120, EscalatorPercent: 1.99}

	totals, err := ComputeTotals(in)
	require.NoError(t, err)

	assert.Equal(t, FinancingLease, totals.PaymentMethod)
	assert.Equal(t, 13550.0, totals.GrandTotal)
	require.NotNil(t, totals.Payment)
	assert.Equal(t, 191.87, totals.Payment.MonthlyPayment)
	assert.Equal(t, "Year 1, increases 1.99% annually", totals.Payment.EscalatorNote)
	assert.Len(t, totals.Payment.Schedule, 10)
}

func TestComputeTotalsUnsupportedLeaseKeepsTotals(t *testing.T) {
	in := sampleInput()
	in.Financing = &Financing{Type: FinancingLease, TermMonths: 180}

	totals, err := ComputeTotals(in)
	require.ErrorIs(t, err, ErrUnsupportedFinancingTerm)
	assert.Equal(t, 13550.0, totals.GrandTotal)
	assert.Nil(t, totals.Payment)

	in.Financing = &Financing{Type: FinancingLease, TermMonths: 126}
	_, err = ComputeTotals(in)
	assert.ErrorIs(t, err, ErrUnsupportedFinancingTerm)
}

func TestComputeTotalsGrandTotalFloorsAtZero(t *testing.T) {
	in := sampleInput()
	in.Incentives = []Incentive{{Amount: 50000, Selected: true}}
	in.Financing = &Financing{Type: FinancingFinance, TermMonths: 12, APR: 4.99}

	totals, err := ComputeTotals(in)
	require.NoError(t, err)
	assert.Equal(t, 0.0, totals.GrandTotal)
	assert.Equal(t, 0.0, totals.Payment.MonthlyPayment)
}

func TestComputeTotalsEmptyProposal(t *testing.T) {
	totals, err := ComputeTotals(Input{CashMarkupPercent: 20})
	require.NoError(t, err)
	assert.Equal(t, Totals{PaymentMethod: FinancingCash}, totals)
}

func TestComputeTotalsRejectsPlanWithoutYears(t *testing.T) {
	in := sampleInput()
	in.Years = 0

	_, err := ComputeTotals(in)
	assert.ErrorIs(t, err, ErrInvalidTerm)
}

func TestComputeTotalsIdentity(t *testing.T) {
	in := sampleInput()
	in.CashMarkupPercent = 0

	totals, err := ComputeTotals(in)
	require.NoError(t, err)
	assert.Equal(t, totals.EquipmentPrice+totals.AddOnsTotal+totals.MaintenanceTotal, totals.Subtotal)
	assert.Equal(t, totals.Subtotal-totals.IncentivesTotal, totals.GrandTotal)
	assert.Equal(t, 12500.0, totals.EquipmentPrice)
}
