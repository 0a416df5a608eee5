package pricebook

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/currency"

	"github.com/hvacpro/proposals/internal/pricing"
)

var (
	// ErrNotFound is returned when a price book record does not exist.
	ErrNotFound = errors.New("pricebook: not found")
	// ErrInvalid wraps every validation failure of a price book record.
	ErrInvalid = errors.New("pricebook: invalid record")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
}

// Validate checks an item before it is stored.
func (i Item) Validate() error {
	if !i.Kind.Valid() {
		return invalid("kind must be tier, addon or plan")
	}
	if strings.TrimSpace(i.Name) == "" {
		return invalid("name is required")
	}
	if i.BaseCost < 0 {
		return invalid("base_cost must be greater than or equal to 0")
	}
	if !i.Margin.Type.Valid() {
		return invalid("margin type must be fixed or percentage")
	}
	if pricing.SalesPrice(i) < 0 {
		return invalid("margin makes the sales price negative")
	}
	if i.VisitsPerYear < 0 {
		return invalid("visits_per_year must be greater than or equal to 0")
	}
	return nil
}

// ValidateBundleDiscount checks a bundle discount before it is stored.
func ValidateBundleDiscount(d pricing.BundleDiscount) error {
	if d.Years <= 0 {
		return invalid("years must be greater than 0")
	}
	if d.DiscountPercent < 0 || d.DiscountPercent > 100 {
		return invalid("discount_percent must be between 0 and 100")
	}
	return nil
}

// Validate checks a financing option before it is stored. Lease options must match a published
// payment factor.
func (f FinancingOption) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return invalid("name is required")
	}
	if f.APR < 0 {
		return invalid("apr must be greater than or equal to 0")
	}

	switch f.Type {
	case pricing.FinancingCash:
		if f.TermMonths != 0 || f.APR != 0 || f.EscalatorPercent != 0 {
			return invalid("cash options take no term, apr or escalator")
		}
	case pricing.FinancingFinance:
		if f.TermMonths <= 0 {
			return invalid("term_months must be greater than 0")
		}
		if f.EscalatorPercent != 0 {
			return invalid("escalator_percent only applies to leases")
		}
	case pricing.FinancingLease:
		if f.TermMonths <= 0 || f.TermMonths%12 != 0 {
			return invalid("lease term_months must be a whole number of years")
		}
		if _, err := pricing.LeaseFactor(f.TermMonths/12, f.EscalatorPercent); err != nil {
			return invalid("no lease payment factor for %d months at %v%% escalator", f.TermMonths, f.EscalatorPercent)
		}
	default:
		return invalid("type must be cash, finance or lease")
	}
	return nil
}

// Validate checks an incentive before it is stored.
func (inc Incentive) Validate() error {
	if strings.TrimSpace(inc.Name) == "" {
		return invalid("name is required")
	}
	if inc.Amount < 0 {
		return invalid("amount must be greater than or equal to 0")
	}
	return nil
}

// Validate checks the price book settings.
func (s Settings) Validate() error {
	if s.CashMarkupPercent < 0 || s.CashMarkupPercent > 100 {
		return invalid("cash_markup_percent must be between 0 and 100")
	}
	if _, err := currency.ParseISO(s.Currency); err != nil {
		return invalid("currency %q is not an ISO 4217 code", s.Currency)
	}
	return nil
}
