package pricing

import (
	"fmt"
	"math"
	"strconv"
)

type leaseKey struct {
	years        int
	escalatorBps int
}

// Month-one payment per dollar financed, as published by the lease provider's calculator.
// These are not derivable from an APR and must not be recomputed.
var leaseFactors = map[leaseKey]float64{
	{years: 10, escalatorBps: 0}:   0.01546,
	{years: 10, escalatorBps: 99}:  0.01487,
	{years: 10, escalatorBps: 199}: 0.01416,
	{years: 12, escalatorBps: 0}:   0.01397,
	{years: 12, escalatorBps: 99}:  0.01321,
	{years: 12, escalatorBps: 199}: 0.01247,
}

// Lease is the projected cost of a lease at a fixed payment factor.
type Lease struct {
	TermYears        int       `json:"term_years"`
	EscalatorPercent float64   `json:"escalator_percent"`
	Factor           float64   `json:"factor"`
	MonthlyPayment   float64   `json:"monthly_payment"`
	TotalCost        float64   `json:"total_cost"`
	EscalatorNote    string    `json:"escalator_note"`
	Schedule         []float64 `json:"schedule"`
}

// LeaseFactor returns the payment factor for a term and escalator pair.
func LeaseFactor(termYears int, escalatorPercent float64) (float64, error) {
	bps := math.Round(escalatorPercent * 100)
	if math.Abs(escalatorPercent*100-bps) > 1e-6 {
		return 0, fmt.Errorf("lease %d years at %v%% escalator: %w", termYears, escalatorPercent, ErrUnsupportedFinancingTerm)
	}
	factor, ok := leaseFactors[leaseKey{years: termYears, escalatorBps: int(bps)}]
	if !ok {
		return 0, fmt.Errorf("lease %d years at %v%% escalator: %w", termYears, escalatorPercent, ErrUnsupportedFinancingTerm)
	}
	return factor, nil
}

// LeasePayment prices a lease of systemPrice. The month-one payment escalates at every anniversary;
// Schedule holds the monthly payment in force for each contract year.
func LeasePayment(systemPrice float64, termYears int, escalatorPercent float64) (Lease, error) {
	factor, err := LeaseFactor(termYears, escalatorPercent)
	if err != nil {
		return Lease{}, err
	}
	if systemPrice < 0 {
		return Lease{}, fmt.Errorf("lease system price %v: %w", systemPrice, ErrInvalidConfiguration)
	}

	monthly := Product(systemPrice, factor, MoneyPrecision)
	schedule := make([]float64, 0, termYears)
	current := monthly
	total := 0.0
	for year := 0; year < termYears; year++ {
		if year > 0 && escalatorPercent > 0 {
			current *= 1 + escalatorPercent/100
		}
		schedule = append(schedule, Round(current, MoneyPrecision))
		total += current * 12
	}

	return Lease{
		TermYears:        termYears,
		EscalatorPercent: escalatorPercent,
		Factor:           factor,
		MonthlyPayment:   monthly,
		TotalCost:        Round(total, MoneyPrecision),
		EscalatorNote:    EscalatorNote(escalatorPercent),
		Schedule:         schedule,
	}, nil
}

// EscalatorNote describes how a lease payment changes over time.
func EscalatorNote(escalatorPercent float64) string {
	if escalatorPercent == 0 {
		return "Fixed monthly payment"
	}
	return "Year 1, increases " + strconv.FormatFloat(escalatorPercent, 'f', -1, 64) + "% annually"
}
