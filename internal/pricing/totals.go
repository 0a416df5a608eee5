package pricing

import "fmt"

// FinancingType is how the customer pays for the proposal.
type FinancingType string

const (
	FinancingCash    FinancingType = "cash"
	FinancingFinance FinancingType = "finance"
	FinancingLease   FinancingType = "lease"
)

// Valid reports whether t is a known financing type.
func (t FinancingType) Valid() bool {
	switch t {
	case FinancingCash, FinancingFinance, FinancingLease:
		return true
	}
	return false
}

// Financing is the selected payment arrangement. Lease terms must be whole years.
type Financing struct {
	Type             FinancingType `json:"type"`
	Provider         string        `json:"provider,omitempty"`
	TermMonths       int           `json:"term_months"`
	APR              float64       `json:"apr"`
	EscalatorPercent float64       `json:"escalator_percent,omitempty"`
}

// Line is an optional priced line item and whether the customer selected it.
type Line struct {
	Item     Priced
	Selected bool
}

// Incentive is a flat rebate subtracted from the subtotal when selected.
type Incentive struct {
	Amount   float64
	Selected bool
}

// Input is everything ComputeTotals needs. Equipment and Plan may be nil.
type Input struct {
	Equipment         Priced
	AddOns            []Line
	Plan              Priced
	Years             int
	BundleDiscounts   []BundleDiscount
	Incentives        []Incentive
	CashMarkupPercent float64
	Financing         *Financing
}

// Payment is the monthly figure shown next to the grand total.
type Payment struct {
	Type           FinancingType `json:"type"`
	Provider       string        `json:"provider,omitempty"`
	TermMonths     int           `json:"term_months"`
	APR            float64       `json:"apr"`
	MonthlyPayment float64       `json:"monthly_payment"`
	TotalCost      float64       `json:"total_cost"`
	EscalatorNote  string        `json:"escalator_note,omitempty"`
	Schedule       []float64     `json:"schedule,omitempty"`
}

// Totals is the priced view of a proposal.
type Totals struct {
	PaymentMethod    FinancingType `json:"payment_method"`
	EquipmentPrice   float64       `json:"equipment_price"`
	AddOnsTotal      float64       `json:"add_ons_total"`
	MaintenanceTotal float64       `json:"maintenance_total"`
	Maintenance      *BundleTotal  `json:"maintenance,omitempty"`
	IncentivesTotal  float64       `json:"incentives_total"`
	Subtotal         float64       `json:"subtotal"`
	GrandTotal       float64       `json:"grand_total"`
	Payment          *Payment      `json:"payment,omitempty"`
}

// PaymentMethod returns the financing type in effect for in; no financing means cash.
func (in Input) PaymentMethod() FinancingType {
	if in.Financing == nil || in.Financing.Type == "" {
		return FinancingCash
	}
	return in.Financing.Type
}

// ComputeTotals prices a proposal. Equipment and add-ons carry the cash markup on the cash path only;
// financed and leased paths aggregate sales prices. Maintenance is never marked up.
//
// When only the monthly payment cannot be computed, the returned Totals are complete except for
// Payment and the error wraps ErrUnsupportedFinancingTerm, ErrInvalidTerm or ErrInvalidConfiguration.
func ComputeTotals(in Input) (Totals, error) {
	method := in.PaymentMethod()
	linePrice := func(item Priced) float64 {
		sales := SalesPrice(item)
		if method == FinancingCash {
			return CustomerPrice(sales, in.CashMarkupPercent)
		}
		return sales
	}

	totals := Totals{PaymentMethod: method}
	if in.Equipment != nil {
		totals.EquipmentPrice = linePrice(in.Equipment)
	}
	for _, a := range in.AddOns {
		if a.Selected && a.Item != nil {
			totals.AddOnsTotal += linePrice(a.Item)
		}
	}
	totals.AddOnsTotal = Round(totals.AddOnsTotal, MoneyPrecision)

	if in.Plan != nil {
		if in.Years <= 0 {
			return Totals{}, fmt.Errorf("maintenance bundle of %d years: %w", in.Years, ErrInvalidTerm)
		}
		bundle := Bundle(SalesPrice(in.Plan), in.Years, in.BundleDiscounts)
		totals.Maintenance = &bundle
		totals.MaintenanceTotal = bundle.FinalPrice
	}

	for _, inc := range in.Incentives {
		if inc.Selected {
			totals.IncentivesTotal += inc.Amount
		}
	}
	totals.IncentivesTotal = Round(totals.IncentivesTotal, MoneyPrecision)

	totals.Subtotal = Round(totals.EquipmentPrice+totals.AddOnsTotal+totals.MaintenanceTotal, MoneyPrecision)
	totals.GrandTotal = max(0, Round(totals.Subtotal-totals.IncentivesTotal, MoneyPrecision))

	if method == FinancingCash {
		return totals, nil
	}
	payment, err := computePayment(totals.GrandTotal, *in.Financing)
	if err != nil {
		return totals, err
	}
	totals.Payment = &payment
	return totals, nil
}

func computePayment(principal float64, f Financing) (Payment, error) {
	p := Payment{Type: f.Type, Provider: f.Provider, TermMonths: f.TermMonths, APR: f.APR}

	switch f.Type {
	case FinancingFinance:
		monthly, err := MonthlyPayment(principal, f.APR, f.TermMonths)
		if err != nil {
			return Payment{}, err
		}
		p.MonthlyPayment = Round(monthly, MoneyPrecision)
		p.TotalCost = Round(monthly*float64(f.TermMonths), MoneyPrecision)
		return p, nil
	case FinancingLease:
		if f.TermMonths <= 0 || f.TermMonths%12 != 0 {
			return Payment{}, fmt.Errorf("lease term of %d months: %w", f.TermMonths, ErrUnsupportedFinancingTerm)
		}
		lease, err := LeasePayment(principal, f.TermMonths/12, f.EscalatorPercent)
		if err != nil {
			return Payment{}, err
		}
		p.MonthlyPayment = lease.MonthlyPayment
		p.TotalCost = lease.TotalCost
		p.EscalatorNote = lease.EscalatorNote
		p.Schedule = lease.Schedule
		return p, nil
	default:
		return Payment{}, fmt.Errorf("financing type %q: %w", f.Type, ErrInvalidConfiguration)
	}
}
