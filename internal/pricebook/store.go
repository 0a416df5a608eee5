package pricebook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hvacpro/proposals/internal/pricing"
)

const defaultCurrency = "USD"

// Store persists the price book in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store backed by db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// Load reads the whole price book into a snapshot.
func (s *Store) Load(ctx context.Context) (Book, error) {
	var (
		book Book
		err  error
	)
	if book.Items, err = s.ListItems(ctx, ""); err != nil {
		return Book{}, err
	}
	if book.BundleDiscounts, err = s.ListBundleDiscounts(ctx); err != nil {
		return Book{}, err
	}
	if book.FinancingOptions, err = s.ListFinancingOptions(ctx); err != nil {
		return Book{}, err
	}
	if book.Incentives, err = s.ListIncentives(ctx); err != nil {
		return Book{}, err
	}
	if book.Settings, err = s.GetSettings(ctx); err != nil {
		return Book{}, err
	}
	return book, nil
}

const itemColumns = `id, kind, name, description, label, category, seer, visits_per_year,
	base_cost, margin_type, margin_amount, active, sort_order`

func scanItem(row rowScanner) (Item, error) {
	var it Item
	err := row.Scan(
		&it.ID,
		&it.Kind,
		&it.Name,
		&it.Description,
		&it.Label,
		&it.Category,
		&it.SEER,
		&it.VisitsPerYear,
		&it.BaseCost,
		&it.Margin.Type,
		&it.Margin.Amount,
		&it.Active,
		&it.SortOrder,
	)
	return it, err
}

// ListItems returns the items of kind, or every item when kind is empty.
func (s *Store) ListItems(ctx context.Context, kind ItemKind) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM priced_items
		WHERE (? = '' OR kind = ?)
		ORDER BY kind, sort_order, id
	`, string(kind), string(kind))
	if err != nil {
		return nil, fmt.Errorf("query priced items: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan priced item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate priced items: %w", err)
	}
	return items, nil
}

// GetItem returns one item by id.
func (s *Store) GetItem(ctx context.Context, id int64) (Item, error) {
	it, err := scanItem(s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM priced_items WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, fmt.Errorf("priced item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Item{}, fmt.Errorf("query priced item: %w", err)
	}
	return it, nil
}

// CreateItem validates and inserts an item, returning it with its new id.
func (s *Store) CreateItem(ctx context.Context, it Item) (Item, error) {
	if err := it.Validate(); err != nil {
		return Item{}, err
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO priced_items (
			kind, name, description, label, category, seer, visits_per_year,
			base_cost, margin_type, margin_amount, active, sort_order
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, string(it.Kind), it.Name, it.Description, it.Label, it.Category, it.SEER, it.VisitsPerYear,
		it.BaseCost, string(it.Margin.Type), it.Margin.Amount, it.Active, it.SortOrder)
	if err != nil {
		return Item{}, fmt.Errorf("insert priced item: %w", err)
	}
	if it.ID, err = result.LastInsertId(); err != nil {
		return Item{}, fmt.Errorf("read priced item id: %w", err)
	}
	return it, nil
}

// UpdateItem validates and overwrites an existing item.
func (s *Store) UpdateItem(ctx context.Context, it Item) error {
	if err := it.Validate(); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE priced_items
		SET
			kind = ?,
			name = ?,
			description = ?,
			label = ?,
			category = ?,
			seer = ?,
			visits_per_year = ?,
			base_cost = ?,
			margin_type = ?,
			margin_amount = ?,
			active = ?,
			sort_order = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, string(it.Kind), it.Name, it.Description, it.Label, it.Category, it.SEER, it.VisitsPerYear,
		it.BaseCost, string(it.Margin.Type), it.Margin.Amount, it.Active, it.SortOrder, it.ID)
	if err != nil {
		return fmt.Errorf("update priced item: %w", err)
	}
	return expectAffected(result, fmt.Sprintf("priced item %d", it.ID))
}

// UpdateMargin changes only the margin rule of an item and returns the updated item.
func (s *Store) UpdateMargin(ctx context.Context, id int64, margin pricing.Margin) (Item, error) {
	it, err := s.GetItem(ctx, id)
	if err != nil {
		return Item{}, err
	}
	it.Margin = margin
	if err := s.UpdateItem(ctx, it); err != nil {
		return Item{}, err
	}
	return it, nil
}

// ListBundleDiscounts returns the bundle discounts ordered by years.
func (s *Store) ListBundleDiscounts(ctx context.Context) ([]pricing.BundleDiscount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT years, discount_percent, badge
		FROM bundle_discounts
		ORDER BY years
	`)
	if err != nil {
		return nil, fmt.Errorf("query bundle discounts: %w", err)
	}
	defer rows.Close()

	discounts := make([]pricing.BundleDiscount, 0)
	for rows.Next() {
		var d pricing.BundleDiscount
		if err := rows.Scan(&d.Years, &d.DiscountPercent, &d.Badge); err != nil {
			return nil, fmt.Errorf("scan bundle discount: %w", err)
		}
		discounts = append(discounts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bundle discounts: %w", err)
	}
	return discounts, nil
}

// PutBundleDiscount creates or replaces the discount for d.Years.
func (s *Store) PutBundleDiscount(ctx context.Context, d pricing.BundleDiscount) error {
	if err := ValidateBundleDiscount(d); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bundle_discounts (years, discount_percent, badge)
		VALUES (?, ?, ?)
		ON CONFLICT(years) DO UPDATE SET
			discount_percent = excluded.discount_percent,
			badge = excluded.badge
	`, d.Years, d.DiscountPercent, d.Badge)
	if err != nil {
		return fmt.Errorf("upsert bundle discount: %w", err)
	}
	return nil
}

// DeleteBundleDiscount removes the discount for years.
func (s *Store) DeleteBundleDiscount(ctx context.Context, years int) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM bundle_discounts WHERE years = ?`, years)
	if err != nil {
		return fmt.Errorf("delete bundle discount: %w", err)
	}
	return expectAffected(result, fmt.Sprintf("bundle discount for %d years", years))
}

// ListFinancingOptions returns the financing options in display order.
func (s *Store) ListFinancingOptions(ctx context.Context) ([]FinancingOption, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, provider, term_months, apr, escalator_percent, active, sort_order
		FROM financing_options
		ORDER BY sort_order, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query financing options: %w", err)
	}
	defer rows.Close()

	options := make([]FinancingOption, 0)
	for rows.Next() {
		var f FinancingOption
		if err := rows.Scan(&f.ID, &f.Name, &f.Type, &f.Provider, &f.TermMonths, &f.APR, &f.EscalatorPercent, &f.Active, &f.SortOrder); err != nil {
			return nil, fmt.Errorf("scan financing option: %w", err)
		}
		options = append(options, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate financing options: %w", err)
	}
	return options, nil
}

// CreateFinancingOption validates and inserts a financing option.
func (s *Store) CreateFinancingOption(ctx context.Context, f FinancingOption) (FinancingOption, error) {
	if err := f.Validate(); err != nil {
		return FinancingOption{}, err
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO financing_options (name, type, provider, term_months, apr, escalator_percent, active, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, f.Name, string(f.Type), f.Provider, f.TermMonths, f.APR, f.EscalatorPercent, f.Active, f.SortOrder)
	if err != nil {
		return FinancingOption{}, fmt.Errorf("insert financing option: %w", err)
	}
	if f.ID, err = result.LastInsertId(); err != nil {
		return FinancingOption{}, fmt.Errorf("read financing option id: %w", err)
	}
	return f, nil
}

// UpdateFinancingOption validates and overwrites an existing financing option.
func (s *Store) UpdateFinancingOption(ctx context.Context, f FinancingOption) error {
	if err := f.Validate(); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE financing_options
		SET
			name = ?,
			type = ?,
			provider = ?,
			term_months = ?,
			apr = ?,
			escalator_percent = ?,
			active = ?,
			sort_order = ?
		WHERE id = ?
	`, f.Name, string(f.Type), f.Provider, f.TermMonths, f.APR, f.EscalatorPercent, f.Active, f.SortOrder, f.ID)
	if err != nil {
		return fmt.Errorf("update financing option: %w", err)
	}
	return expectAffected(result, fmt.Sprintf("financing option %d", f.ID))
}

// ListIncentives returns every incentive.
func (s *Store) ListIncentives(ctx context.Context) ([]Incentive, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, amount, active FROM incentives ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query incentives: %w", err)
	}
	defer rows.Close()

	incentives := make([]Incentive, 0)
	for rows.Next() {
		var inc Incentive
		if err := rows.Scan(&inc.ID, &inc.Name, &inc.Amount, &inc.Active); err != nil {
			return nil, fmt.Errorf("scan incentive: %w", err)
		}
		incentives = append(incentives, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incentives: %w", err)
	}
	return incentives, nil
}

// CreateIncentive validates and inserts an incentive.
func (s *Store) CreateIncentive(ctx context.Context, inc Incentive) (Incentive, error) {
	if err := inc.Validate(); err != nil {
		return Incentive{}, err
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO incentives (name, amount, active) VALUES (?, ?, ?)
	`, inc.Name, inc.Amount, inc.Active)
	if err != nil {
		return Incentive{}, fmt.Errorf("insert incentive: %w", err)
	}
	if inc.ID, err = result.LastInsertId(); err != nil {
		return Incentive{}, fmt.Errorf("read incentive id: %w", err)
	}
	return inc, nil
}

// UpdateIncentive validates and overwrites an existing incentive.
func (s *Store) UpdateIncentive(ctx context.Context, inc Incentive) error {
	if err := inc.Validate(); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE incentives SET name = ?, amount = ?, active = ? WHERE id = ?
	`, inc.Name, inc.Amount, inc.Active, inc.ID)
	if err != nil {
		return fmt.Errorf("update incentive: %w", err)
	}
	return expectAffected(result, fmt.Sprintf("incentive %d", inc.ID))
}

// EnsureSettings inserts the settings singleton when it is missing.
func (s *Store) EnsureSettings(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (id, cash_markup_percent, currency)
		VALUES (1, 0, ?)
		ON CONFLICT(id) DO NOTHING
	`, defaultCurrency)
	if err != nil {
		return fmt.Errorf("insert default settings: %w", err)
	}
	return nil
}

// GetSettings returns the settings singleton, creating it with defaults when missing.
func (s *Store) GetSettings(ctx context.Context) (Settings, error) {
	if err := s.EnsureSettings(ctx); err != nil {
		return Settings{}, err
	}

	var st Settings
	err := s.db.QueryRowContext(ctx, `
		SELECT cash_markup_percent, currency
		FROM settings
		WHERE id = 1
	`).Scan(&st.CashMarkupPercent, &st.Currency)
	if err != nil {
		return Settings{}, fmt.Errorf("query settings: %w", err)
	}
	return st, nil
}

// UpdateSettings validates and stores the settings singleton.
func (s *Store) UpdateSettings(ctx context.Context, st Settings) error {
	if err := st.Validate(); err != nil {
		return err
	}
	if err := s.EnsureSettings(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE settings
		SET
			cash_markup_percent = ?,
			currency = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`, st.CashMarkupPercent, st.Currency)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

func expectAffected(result sql.Result, what string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s: %w", what, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
