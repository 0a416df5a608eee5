package seed

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/hvacpro/proposals/internal/db"
	"github.com/hvacpro/proposals/internal/migrations"
	"github.com/hvacpro/proposals/internal/pricebook"
)

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "seed-test.db")
	database, err := db.Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(ctx, database, nil); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	for i := 0; i < 10; i++ {
		stats, err := Run(ctx, database)
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != 21 {
				t.Fatalf("expected 21 inserts in first run, got %d", stats.Inserts)
			}
			continue
		}
		if stats.Inserts != 0 {
			t.Fatalf("expected 0 inserts in iteration %d, got %d", i, stats.Inserts)
		}
		if stats.Skipped != 21 {
			t.Fatalf("expected 21 skipped records in iteration %d, got %d", i, stats.Skipped)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM priced_items WHERE kind = ?`, "tier", 3)
	assertCount(t, database, `SELECT COUNT(*) FROM priced_items WHERE kind = ?`, "addon", 4)
	assertCount(t, database, `SELECT COUNT(*) FROM priced_items WHERE kind = ?`, "plan", 2)
	assertCount(t, database, `SELECT COUNT(*) FROM settings WHERE id = 1`, nil, 1)
	assertCount(t, database, `SELECT COUNT(*) FROM bundle_discounts`, nil, 3)
	assertCount(t, database, `SELECT COUNT(*) FROM financing_options WHERE type = ?`, "lease", 3)
	assertCount(t, database, `SELECT COUNT(*) FROM incentives`, nil, 2)
}

func TestRunKeepsAdminEdits(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "seed-edits.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(ctx, database, nil); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if _, err := Run(ctx, database); err != nil {
		t.Fatalf("first seed: %v", err)
	}

	if _, err := database.ExecContext(ctx, `UPDATE priced_items SET base_cost = 9999 WHERE kind = 'tier' AND name = 'Better'`); err != nil {
		t.Fatalf("edit tier: %v", err)
	}
	if _, err := Run(ctx, database); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	book, err := pricebook.NewStore(database).Load(ctx)
	if err != nil {
		t.Fatalf("load price book: %v", err)
	}
	var found bool
	for _, it := range book.ItemsOfKind(pricebook.KindTier) {
		if it.Name == "Better" {
			found = true
			if it.BaseCost != 9999 {
				t.Fatalf("expected edited base cost 9999, got %v", it.BaseCost)
			}
		}
	}
	if !found {
		t.Fatalf("expected Better tier in price book")
	}
	if book.Settings.Currency != "USD" || book.Settings.CashMarkupPercent != 3 {
		t.Fatalf("unexpected settings: %+v", book.Settings)
	}
}

func TestDefaultsAreValid(t *testing.T) {
	defaults, err := LoadDefaults()
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if len(defaults.Tiers) == 0 || len(defaults.Plans) == 0 {
		t.Fatalf("expected tiers and plans in defaults")
	}
	for _, f := range defaults.FinancingOptions {
		if f.Name == "" {
			t.Fatalf("financing option without a name: %+v", f)
		}
	}
}

func assertCount(t *testing.T, database *sql.DB, query string, args any, expected int) {
	t.Helper()

	var count int
	var err error
	switch v := args.(type) {
	case nil:
		err = database.QueryRow(query).Scan(&count)
	case []any:
		err = database.QueryRow(query, v...).Scan(&count)
	default:
		err = database.QueryRow(query, v).Scan(&count)
	}
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d", expected, count)
	}
}
