package migration

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add ingredients table", "add_ingredients_table"},
		{"Add-Batch-Ledger", "add_batch_ledger"},
		{"ADD_STOCK_ENTRIES", "add_stock_entries"},
		{"add__recipe__lines", "add_recipe_lines"},
		{"Menu Items 2", "menu_items_2"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add ingredients table")
	require.NoError(t, err)

	assert.Contains(t, mf.UpPath, "add_ingredients_table.up.sql")
	assert.Contains(t, mf.DownPath, "add_ingredients_table.down.sql")

	for _, path := range []string{mf.UpPath, mf.DownPath} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.False(t, info.IsDir())
	}
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()

	_, err := CreateMigration(dir, "first")
	require.NoError(t, err)

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	require.Len(t, migrations, 1)
	assert.Contains(t, migrations[0], "_first")
}

func TestListMigrations_MissingDir(t *testing.T) {
	migrations, err := ListMigrations("/nonexistent/migrations")
	require.NoError(t, err)
	assert.Empty(t, migrations)
}
