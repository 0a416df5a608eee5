package seed

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hvacpro/proposals/internal/pricebook"
	"github.com/hvacpro/proposals/internal/pricing"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type itemDefaults struct {
	Name          string         `yaml:"name"`
	Label         string         `yaml:"label"`
	Description   string         `yaml:"description"`
	Category      string         `yaml:"category"`
	SEER          float64        `yaml:"seer"`
	VisitsPerYear int            `yaml:"visits_per_year"`
	BaseCost      float64        `yaml:"base_cost"`
	Margin        marginDefaults `yaml:"margin"`
}

type marginDefaults struct {
	Type   string  `yaml:"type"`
	Amount float64 `yaml:"amount"`
}

// Defaults is the price book installed on an empty database.
type Defaults struct {
	Settings struct {
		CashMarkupPercent float64 `yaml:"cash_markup_percent"`
		Currency          string  `yaml:"currency"`
	} `yaml:"settings"`
	Tiers           []itemDefaults `yaml:"tiers"`
	AddOns          []itemDefaults `yaml:"add_ons"`
	Plans           []itemDefaults `yaml:"plans"`
	BundleDiscounts []struct {
		Years           int     `yaml:"years"`
		DiscountPercent float64 `yaml:"discount_percent"`
		Badge           string  `yaml:"badge"`
	} `yaml:"bundle_discounts"`
	FinancingOptions []struct {
		Name             string  `yaml:"name"`
		Type             string  `yaml:"type"`
		Provider         string  `yaml:"provider"`
		TermMonths       int     `yaml:"term_months"`
		APR              float64 `yaml:"apr"`
		EscalatorPercent float64 `yaml:"escalator_percent"`
	} `yaml:"financing_options"`
	Incentives []struct {
		Name   string  `yaml:"name"`
		Amount float64 `yaml:"amount"`
	} `yaml:"incentives"`
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Skipped int
}

// LoadDefaults parses the embedded default price book.
func LoadDefaults() (Defaults, error) {
	var d Defaults
	if err := yaml.Unmarshal(defaultsYAML, &d); err != nil {
		return Defaults{}, fmt.Errorf("parse default price book: %w", err)
	}
	return d, nil
}

// Run installs the default price book in an idempotent way: records that already exist, matched by
// their natural key, are left untouched so admin edits survive restarts.
func Run(ctx context.Context, db *sql.DB) (Stats, error) {
	defaults, err := LoadDefaults()
	if err != nil {
		return Stats{}, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}
	if err := apply(ctx, tx, defaults, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}
	return stats, nil
}

func apply(ctx context.Context, tx *sql.Tx, d Defaults, stats *Stats) error {
	if err := ensureSettings(ctx, tx, d, stats); err != nil {
		return err
	}
	groups := []struct {
		kind  pricebook.ItemKind
		items []itemDefaults
	}{
		{pricebook.KindTier, d.Tiers},
		{pricebook.KindAddOn, d.AddOns},
		{pricebook.KindPlan, d.Plans},
	}
	for _, g := range groups {
		for i, it := range g.items {
			if err := ensureItem(ctx, tx, g.kind, i, it, stats); err != nil {
				return err
			}
		}
	}
	for _, bd := range d.BundleDiscounts {
		discount := pricing.BundleDiscount{Years: bd.Years, DiscountPercent: bd.DiscountPercent, Badge: bd.Badge}
		if err := ensureBundleDiscount(ctx, tx, discount, stats); err != nil {
			return err
		}
	}
	for i, f := range d.FinancingOptions {
		option := pricebook.FinancingOption{
			Name:             f.Name,
			Type:             pricing.FinancingType(f.Type),
			Provider:         f.Provider,
			TermMonths:       f.TermMonths,
			APR:              f.APR,
			EscalatorPercent: f.EscalatorPercent,
			Active:           true,
			SortOrder:        i,
		}
		if err := ensureFinancingOption(ctx, tx, option, stats); err != nil {
			return err
		}
	}
	for _, inc := range d.Incentives {
		incentive := pricebook.Incentive{Name: inc.Name, Amount: inc.Amount, Active: true}
		if err := ensureIncentive(ctx, tx, incentive, stats); err != nil {
			return err
		}
	}
	return nil
}

func ensureSettings(ctx context.Context, tx *sql.Tx, d Defaults, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM settings WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check settings existence: %w", err)
	}
	if exists {
		stats.Skipped++
		return nil
	}

	settings := pricebook.Settings{CashMarkupPercent: d.Settings.CashMarkupPercent, Currency: d.Settings.Currency}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("default settings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO settings (id, cash_markup_percent, currency)
		VALUES (1, ?, ?)
	`, settings.CashMarkupPercent, settings.Currency); err != nil {
		return fmt.Errorf("insert settings singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureItem(ctx context.Context, tx *sql.Tx, kind pricebook.ItemKind, order int, d itemDefaults, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM priced_items WHERE kind = ? AND name = ? LIMIT 1)
	`, string(kind), d.Name).Scan(&exists); err != nil {
		return fmt.Errorf("check %s %q existence: %w", kind, d.Name, err)
	}
	if exists {
		stats.Skipped++
		return nil
	}

	item := pricebook.Item{
		Kind:          kind,
		Name:          d.Name,
		Description:   d.Description,
		Label:         d.Label,
		Category:      d.Category,
		SEER:          d.SEER,
		VisitsPerYear: d.VisitsPerYear,
		PricedItem: pricing.PricedItem{
			BaseCost: d.BaseCost,
			Margin:   pricing.Margin{Type: pricing.MarginType(d.Margin.Type), Amount: d.Margin.Amount},
		},
		Active:    true,
		SortOrder: order,
	}
	if err := item.Validate(); err != nil {
		return fmt.Errorf("default %s %q: %w", kind, d.Name, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO priced_items (
			kind, name, description, label, category, seer, visits_per_year,
			base_cost, margin_type, margin_amount, active, sort_order
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, string(item.Kind), item.Name, item.Description, item.Label, item.Category, item.SEER, item.VisitsPerYear,
		item.BaseCost, string(item.Margin.Type), item.Margin.Amount, item.Active, item.SortOrder); err != nil {
		return fmt.Errorf("insert default %s %q: %w", kind, d.Name, err)
	}
	stats.Inserts++
	return nil
}

func ensureBundleDiscount(ctx context.Context, tx *sql.Tx, d pricing.BundleDiscount, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM bundle_discounts WHERE years = ?)`, d.Years).Scan(&exists); err != nil {
		return fmt.Errorf("check bundle discount existence: %w", err)
	}
	if exists {
		stats.Skipped++
		return nil
	}
	if err := pricebook.ValidateBundleDiscount(d); err != nil {
		return fmt.Errorf("default bundle discount for %d years: %w", d.Years, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bundle_discounts (years, discount_percent, badge)
		VALUES (?, ?, ?)
	`, d.Years, d.DiscountPercent, d.Badge); err != nil {
		return fmt.Errorf("insert default bundle discount: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureFinancingOption(ctx context.Context, tx *sql.Tx, f pricebook.FinancingOption, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM financing_options WHERE name = ? LIMIT 1)`, f.Name).Scan(&exists); err != nil {
		return fmt.Errorf("check financing option existence: %w", err)
	}
	if exists {
		stats.Skipped++
		return nil
	}
	if err := f.Validate(); err != nil {
		return fmt.Errorf("default financing option %q: %w", f.Name, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO financing_options (name, type, provider, term_months, apr, escalator_percent, active, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, f.Name, string(f.Type), f.Provider, f.TermMonths, f.APR, f.EscalatorPercent, f.Active, f.SortOrder); err != nil {
		return fmt.Errorf("insert default financing option: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureIncentive(ctx context.Context, tx *sql.Tx, inc pricebook.Incentive, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM incentives WHERE name = ? LIMIT 1)`, inc.Name).Scan(&exists); err != nil {
		return fmt.Errorf("check incentive existence: %w", err)
	}
	if exists {
		stats.Skipped++
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO incentives (name, amount, active) VALUES (?, ?, ?)
	`, inc.Name, inc.Amount, inc.Active); err != nil {
		return fmt.Errorf("insert default incentive: %w", err)
	}
	stats.Inserts++
	return nil
}
