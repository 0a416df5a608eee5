package proposal

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hvacpro/proposals/internal/pricebook"
	"github.com/hvacpro/proposals/internal/pricing"
)

var (
	// ErrUnknownSelection is returned when a selection references a missing or inactive record.
	ErrUnknownSelection = errors.New("proposal: unknown selection")
	// ErrInvalidSelection is returned for selections that cannot be priced, such as a maintenance
	// plan without a number of years.
	ErrInvalidSelection = errors.New("proposal: invalid selection")
)

// Resolve maps selections onto the price book and builds the pricing engine input. Every active
// add-on and incentive becomes a line, selected when its id appears in sel.
func Resolve(book pricebook.Book, sel Selections) (pricing.Input, error) {
	in := pricing.Input{
		Years:             sel.Years,
		BundleDiscounts:   book.BundleDiscounts,
		CashMarkupPercent: book.Settings.CashMarkupPercent,
	}

	if sel.TierID != 0 {
		tier, err := lookupItem(book, pricebook.KindTier, sel.TierID)
		if err != nil {
			return pricing.Input{}, err
		}
		in.Equipment = tier
	}

	for _, id := range sel.AddOnIDs {
		if _, err := lookupItem(book, pricebook.KindAddOn, id); err != nil {
			return pricing.Input{}, err
		}
	}
	for _, addOn := range book.ItemsOfKind(pricebook.KindAddOn) {
		if !addOn.Active {
			continue
		}
		in.AddOns = append(in.AddOns, pricing.Line{Item: addOn, Selected: slices.Contains(sel.AddOnIDs, addOn.ID)})
	}

	if sel.PlanID != 0 {
		plan, err := lookupItem(book, pricebook.KindPlan, sel.PlanID)
		if err != nil {
			return pricing.Input{}, err
		}
		if sel.Years <= 0 {
			return pricing.Input{}, fmt.Errorf("%w: maintenance plan needs years greater than 0", ErrInvalidSelection)
		}
		in.Plan = plan
	}

	for _, id := range sel.IncentiveIDs {
		inc, ok := book.Incentive(id)
		if !ok || !inc.Active {
			return pricing.Input{}, fmt.Errorf("incentive %d: %w", id, ErrUnknownSelection)
		}
	}
	for _, inc := range book.Incentives {
		if !inc.Active {
			continue
		}
		in.Incentives = append(in.Incentives, pricing.Incentive{Amount: inc.Amount, Selected: slices.Contains(sel.IncentiveIDs, inc.ID)})
	}

	if sel.FinancingOptionID != 0 {
		option, ok := book.FinancingOption(sel.FinancingOptionID)
		if !ok || !option.Active {
			return pricing.Input{}, fmt.Errorf("financing option %d: %w", sel.FinancingOptionID, ErrUnknownSelection)
		}
		financing := option.Financing()
		in.Financing = &financing
	}

	return in, nil
}

// Price resolves sel against book and computes its totals. Payment errors are returned alongside
// the totals computed without a payment.
func Price(book pricebook.Book, sel Selections) (pricing.Totals, error) {
	in, err := Resolve(book, sel)
	if err != nil {
		return pricing.Totals{}, err
	}
	return pricing.ComputeTotals(in)
}

// Quote is a live price. When the selected financing cannot produce a monthly payment the totals
// are still returned and PaymentUnavailable is set.
type Quote struct {
	Totals             pricing.Totals `json:"totals"`
	PaymentUnavailable bool           `json:"payment_unavailable"`
	PaymentError       string         `json:"payment_error,omitempty"`
}

// NewQuote prices sel. Only selection errors are returned; payment errors are folded into the quote.
func NewQuote(book pricebook.Book, sel Selections) (Quote, error) {
	in, err := Resolve(book, sel)
	if err != nil {
		return Quote{}, err
	}
	totals, err := pricing.ComputeTotals(in)
	q := Quote{Totals: totals}
	if err != nil {
		q.PaymentUnavailable = true
		q.PaymentError = err.Error()
	}
	return q, nil
}

// Reprice prices a stored proposal against book. When its selections no longer resolve the stored
// totals are kept and the selection error is returned alongside them.
func Reprice(book pricebook.Book, p Proposal) (Proposal, Quote, error) {
	q, err := NewQuote(book, p.State.Selections)
	if err != nil {
		return p, Quote{Totals: p.Totals}, err
	}
	p.Totals = q.Totals
	return p, q, nil
}

// RepriceList replaces each row's stored grand total with the current one.
func RepriceList(book pricebook.Book, items []ListItem) {
	for i := range items {
		q, err := NewQuote(book, items[i].Selections)
		if err != nil {
			items[i].Stale = true
			continue
		}
		items[i].GrandTotal = q.Totals.GrandTotal
	}
}

func lookupItem(book pricebook.Book, kind pricebook.ItemKind, id int64) (pricebook.Item, error) {
	it, ok := book.Item(id)
	if !ok || it.Kind != kind || !it.Active {
		return pricebook.Item{}, fmt.Errorf("%s %d: %w", kind, id, ErrUnknownSelection)
	}
	return it, nil
}
