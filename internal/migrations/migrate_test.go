package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvacpro/proposals/internal/db"
)

func TestUpCreatesSchemaAndIsRepeatable(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, Up(ctx, database, nil))
	require.NoError(t, Up(ctx, database, nil))

	for _, table := range []string{"priced_items", "bundle_discounts", "financing_options", "incentives", "settings", "proposals"} {
		var count int
		err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, table)
	}
}
