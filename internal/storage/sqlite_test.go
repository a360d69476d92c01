package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gastos/internal/core"
	"gastos/internal/storage"
	"gastos/internal/storage/storagetest"

	"github.com/stretchr/testify/require"
)

func newSQLite(t *testing.T) storage.ExpenseStore {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "gastos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepositoryContract(t *testing.T) {
	storagetest.Run(t, newSQLite)
}

func TestSQLiteMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gastos.db")
	v, err := storage.SchemaVersion(path)
	require.NoError(t, err)
	require.Zero(t, v)

	require.NoError(t, storage.RunMigrations(path))
	require.NoError(t, storage.RunMigrations(path))

	v, err = storage.SchemaVersion(path)
	require.NoError(t, err)
	require.Equal(t, uint(1), v)

	repo, err := storage.NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()
	require.NoError(t, repo.Ping(context.Background()))
}

func TestSQLiteKeepsUnknownCategories(t *testing.T) {
	ctx := context.Background()
	repo := newSQLite(t)
	e := core.Expense{
		ID:        "legacy",
		OwnerID:   "ana",
		Date:      time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		Category:  core.Category("groceries"),
		Amount:    core.Money{Cents: 100},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	_, err := repo.CreateExpense(ctx, e)
	require.NoError(t, err)

	got, err := repo.FetchExpensesInRange(ctx, "ana", core.DayPeriod(core.NewDate(2024, time.March, 5)))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.ErrorIs(t, got[0].CheckIntegrity(), core.ErrDataIntegrity)
}

func TestSortExpenses(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	expenses := []core.Expense{
		{ID: "old", Date: base, CreatedAt: base},
		{ID: "new-first", Date: base.AddDate(0, 0, 1), CreatedAt: base},
		{ID: "new-second", Date: base.AddDate(0, 0, 1).Add(time.Hour), CreatedAt: base.Add(time.Minute)},
	}
	storage.SortExpenses(expenses)
	require.Equal(t, "new-second", expenses[0].ID)
	require.Equal(t, "new-first", expenses[1].ID)
	require.Equal(t, "old", expenses[2].ID)
}
