package pricebook

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvacpro/proposals/internal/db"
	"github.com/hvacpro/proposals/internal/migrations"
	"github.com/hvacpro/proposals/internal/pricing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "pricebook.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, migrations.Up(ctx, database, nil))

	return NewStore(database)
}

func tier(name string, cost float64, margin pricing.Margin) Item {
	return Item{
		Kind:       KindTier,
		Name:       name,
		PricedItem: pricing.PricedItem{BaseCost: cost, Margin: margin},
		Active:     true,
	}
}

func TestStoreItems(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	better, err := store.CreateItem(ctx, tier("Better", 10000, pricing.Margin{Type: pricing.MarginFixed, Amount: 2500}))
	require.NoError(t, err)
	assert.NotZero(t, better.ID)

	_, err = store.CreateItem(ctx, Item{
		Kind:       KindAddOn,
		Name:       "Smart thermostat",
		Category:   "controls",
		PricedItem: pricing.PricedItem{BaseCost: 350, Margin: pricing.Margin{Type: pricing.MarginPercentage, Amount: 60}},
		Active:     true,
	})
	require.NoError(t, err)

	all, err := store.ListItems(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	tiers, err := store.ListItems(ctx, KindTier)
	require.NoError(t, err)
	require.Len(t, tiers, 1)
	assert.Equal(t, "Better", tiers[0].Name)
	assert.Equal(t, 12500.0, pricing.SalesPrice(tiers[0]))

	got, err := store.GetItem(ctx, better.ID)
	require.NoError(t, err)
	assert.Equal(t, better, got)

	got.Label = "Most popular"
	got.BaseCost = 10400
	require.NoError(t, store.UpdateItem(ctx, got))

	reloaded, err := store.GetItem(ctx, better.ID)
	require.NoError(t, err)
	assert.Equal(t, "Most popular", reloaded.Label)
	assert.Equal(t, 10400.0, reloaded.BaseCost)
}

func TestStoreItemErrors(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.GetItem(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.UpdateItem(ctx, Item{ID: 42, Kind: KindPlan, Name: "Ghost", PricedItem: pricing.PricedItem{Margin: pricing.Margin{Type: pricing.MarginFixed}}})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.CreateItem(ctx, tier("", 100, pricing.Margin{Type: pricing.MarginFixed}))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = store.UpdateMargin(ctx, 42, pricing.Margin{Type: pricing.MarginFixed, Amount: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreUpdateMargin(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	plan, err := store.CreateItem(ctx, Item{
		Kind:          KindPlan,
		Name:          "Comfort Club",
		VisitsPerYear: 2,
		PricedItem:    pricing.PricedItem{BaseCost: 200, Margin: pricing.Margin{Type: pricing.MarginFixed, Amount: 100}},
		Active:        true,
	})
	require.NoError(t, err)

	updated, err := store.UpdateMargin(ctx, plan.ID, pricing.Margin{Type: pricing.MarginPercentage, Amount: 25})
	require.NoError(t, err)
	assert.Equal(t, 250.0, pricing.SalesPrice(updated))
	assert.Equal(t, 2, updated.VisitsPerYear)

	_, err = store.UpdateMargin(ctx, plan.ID, pricing.Margin{Type: "markup", Amount: 25})
	assert.ErrorIs(t, err, ErrInvalid)

	stored, err := store.GetItem(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, pricing.MarginPercentage, stored.Margin.Type)
}

func TestStoreBundleDiscounts(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.PutBundleDiscount(ctx, pricing.BundleDiscount{Years: 5, DiscountPercent: 10, Badge: "Most popular"}))
	require.NoError(t, store.PutBundleDiscount(ctx, pricing.BundleDiscount{Years: 3, DiscountPercent: 5}))
	require.NoError(t, store.PutBundleDiscount(ctx, pricing.BundleDiscount{Years: 5, DiscountPercent: 12, Badge: "Best value"}))

	discounts, err := store.ListBundleDiscounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []pricing.BundleDiscount{
		{Years: 3, DiscountPercent: 5},
		{Years: 5, DiscountPercent: 12, Badge: "Best value"},
	}, discounts)

	require.NoError(t, store.DeleteBundleDiscount(ctx, 3))
	assert.ErrorIs(t, store.DeleteBundleDiscount(ctx, 3), ErrNotFound)
	assert.ErrorIs(t, store.PutBundleDiscount(ctx, pricing.BundleDiscount{Years: 0, DiscountPercent: 5}), ErrInvalid)
}

func TestStoreFinancingOptionsAndIncentives(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	lease, err := store.CreateFinancingOption(ctx, FinancingOption{
		Name:             "10 year lease",
		Type:             pricing.FinancingLease,
		Provider:         "Comfort Lease",
		TermMonths:       120,
		EscalatorPercent: 0.99,
		Active:           true,
	})
	require.NoError(t, err)

	_, err = store.CreateFinancingOption(ctx, FinancingOption{Name: "15 year lease", Type: pricing.FinancingLease, TermMonths: 180})
	assert.ErrorIs(t, err, ErrInvalid)

	lease.Active = false
	require.NoError(t, store.UpdateFinancingOption(ctx, lease))

	options, err := store.ListFinancingOptions(ctx)
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.False(t, options[0].Active)
	assert.Equal(t, pricing.FinancingLease, options[0].Type)

	rebate, err := store.CreateIncentive(ctx, Incentive{Name: "Utility rebate", Amount: 500, Active: true})
	require.NoError(t, err)
	rebate.Amount = 750
	require.NoError(t, store.UpdateIncentive(ctx, rebate))
	assert.ErrorIs(t, store.UpdateIncentive(ctx, Incentive{ID: 99, Name: "Ghost"}), ErrNotFound)

	incentives, err := store.ListIncentives(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Incentive{{ID: rebate.ID, Name: "Utility rebate", Amount: 750, Active: true}}, incentives)
}

func TestStoreSettings(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	settings, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, Settings{CashMarkupPercent: 0, Currency: "USD"}, settings)

	require.NoError(t, store.UpdateSettings(ctx, Settings{CashMarkupPercent: 20, Currency: "CAD"}))
	settings, err = store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, Settings{CashMarkupPercent: 20, Currency: "CAD"}, settings)

	assert.ErrorIs(t, store.UpdateSettings(ctx, Settings{CashMarkupPercent: 120, Currency: "USD"}), ErrInvalid)
	assert.ErrorIs(t, store.UpdateSettings(ctx, Settings{CashMarkupPercent: 5, Currency: "dollars"}), ErrInvalid)
}

func TestStoreLoad(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.CreateItem(ctx, tier("Good", 7800, pricing.Margin{Type: pricing.MarginFixed, Amount: 2200}))
	require.NoError(t, err)
	require.NoError(t, store.PutBundleDiscount(ctx, pricing.BundleDiscount{Years: 5, DiscountPercent: 10}))

	book, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, book.Items, 1)
	assert.Len(t, book.BundleDiscounts, 1)
	assert.Empty(t, book.FinancingOptions)
	assert.Empty(t, book.Incentives)
	assert.Equal(t, "USD", book.Settings.Currency)
}
