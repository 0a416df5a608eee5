// Package proposal turns a customer's selections into a priced, persisted proposal.
package proposal

import (
	"time"

	"github.com/hvacpro/proposals/internal/pricing"
)

// Customer identifies who the proposal is for.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Property describes the home the system is installed in.
type Property struct {
	Address        string `json:"address,omitempty"`
	City           string `json:"city,omitempty"`
	State          string `json:"state,omitempty"`
	Zip            string `json:"zip,omitempty"`
	SquareFeet     int    `json:"square_feet,omitempty"`
	YearBuilt      int    `json:"year_built,omitempty"`
	ExistingSystem string `json:"existing_system,omitempty"`
}

// Selections are the price book ids chosen during the presentation. A zero id means nothing is
// selected.
type Selections struct {
	TierID            int64   `json:"tier_id,omitempty"`
	AddOnIDs          []int64 `json:"add_on_ids,omitempty"`
	PlanID            int64   `json:"plan_id,omitempty"`
	Years             int     `json:"years,omitempty"`
	IncentiveIDs      []int64 `json:"incentive_ids,omitempty"`
	FinancingOptionID int64   `json:"financing_option_id,omitempty"`
}

// State is everything a salesperson enters while building a proposal.
type State struct {
	Customer   Customer   `json:"customer"`
	Property   Property   `json:"property"`
	Selections Selections `json:"selections"`
}

// Proposal is a saved proposal with the totals it was last priced at.
type Proposal struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	State     State          `json:"state"`
	Totals    pricing.Totals `json:"totals"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ListItem is the row shown in the proposals list. GrandTotal is the stored total until
// RepriceList replaces it; Stale marks a row whose selections no longer resolve.
type ListItem struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	CustomerName string     `json:"customer_name"`
	GrandTotal   float64    `json:"grand_total"`
	Stale        bool       `json:"stale,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Selections   Selections `json:"-"`
}
