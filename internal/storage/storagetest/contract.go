// Package storagetest holds the behaviour every storage.ExpenseStore must
// share, run by each backend's tests.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"gastos/internal/core"
	"gastos/internal/storage"

	"github.com/stretchr/testify/require"
)

// Factory returns an empty store. Cleanup is the caller's business.
type Factory func(t *testing.T) storage.ExpenseStore

var (
	art     = time.FixedZone("ART", -3*3600)
	created = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

func expense(id, owner string, date time.Time, cat core.Category, sub core.SubCategory, cents int64, offset time.Duration) core.Expense {
	return core.Expense{
		ID:          id,
		OwnerID:     owner,
		Date:        date,
		Category:    cat,
		SubCategory: sub,
		Amount:      core.Money{Cents: cents},
		Title:       "title " + id,
		Description: "description " + id,
		CreatedAt:   created.Add(offset),
		UpdatedAt:   created.Add(offset),
	}
}

// Run exercises the ExpenseStore contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("create and get", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		e := expense("e1", "ana", time.Date(2024, 3, 5, 23, 30, 0, 0, art), core.Transport, core.Saeta, 1250, 0)

		id, err := s.CreateExpense(ctx, e)
		require.NoError(t, err)
		require.Equal(t, "e1", id)

		got, err := s.GetExpense(ctx, "ana", "e1")
		require.NoError(t, err)
		require.Equal(t, e.ID, got.ID)
		require.Equal(t, e.OwnerID, got.OwnerID)
		require.True(t, e.Date.Equal(got.Date))
		require.Equal(t, "2024-03-05", got.Day().String())
		require.Equal(t, e.Category, got.Category)
		require.Equal(t, e.SubCategory, got.SubCategory)
		require.Equal(t, e.Amount, got.Amount)
		require.Equal(t, e.Title, got.Title)
		require.Equal(t, e.Description, got.Description)
		require.True(t, e.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("get is scoped to the owner", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		_, err := s.CreateExpense(ctx, expense("e1", "ana", time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), core.Food, "", 100, 0))
		require.NoError(t, err)

		_, err = s.GetExpense(ctx, "bruno", "e1")
		require.ErrorIs(t, err, storage.ErrNotFound)
		_, err = s.GetExpense(ctx, "ana", "missing")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("fetch range by calendar day", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		seed := []core.Expense{
			expense("feb29", "ana", time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC), core.Food, "", 1, 0),
			expense("mar1-early", "ana", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), core.Food, core.Rappi, 2, time.Minute),
			expense("mar1-late", "ana", time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC), core.Other, "", 3, 2*time.Minute),
			// 22:00 in Buenos Aires is already April 1st in UTC.
			expense("mar31-local", "ana", time.Date(2024, 3, 31, 22, 0, 0, 0, art), core.Transport, core.Uber, 4, 3*time.Minute),
			expense("apr1", "ana", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), core.Food, "", 5, 4*time.Minute),
			expense("other-owner", "bruno", time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), core.Food, "", 6, 5*time.Minute),
		}
		for _, e := range seed {
			_, err := s.CreateExpense(ctx, e)
			require.NoError(t, err)
		}

		got, err := s.FetchExpensesInRange(ctx, "ana", core.MonthPeriod(core.NewDate(2024, time.March, 1)))
		require.NoError(t, err)
		require.Equal(t, []string{"mar31-local", "mar1-late", "mar1-early"}, ids(got))

		got, err = s.FetchExpensesInRange(ctx, "bruno", core.MonthPeriod(core.NewDate(2024, time.March, 1)))
		require.NoError(t, err)
		require.Equal(t, []string{"other-owner"}, ids(got))

		got, err = s.FetchExpensesInRange(ctx, "carla", core.MonthPeriod(core.NewDate(2024, time.March, 1)))
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("update applies patch", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		_, err := s.CreateExpense(ctx, expense("e1", "ana", time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), core.Transport, core.Didi, 500, 0))
		require.NoError(t, err)

		food := core.Food
		amount := core.Money{Cents: 900}
		at := created.Add(time.Hour)
		updated, err := s.UpdateExpense(ctx, "ana", "e1", core.ExpensePatch{Category: &food, Amount: &amount}, at)
		require.NoError(t, err)
		require.Equal(t, core.Food, updated.Category)
		require.Equal(t, core.SubCategory(""), updated.SubCategory)
		require.Equal(t, int64(900), updated.Amount.Cents)
		require.True(t, at.Equal(updated.UpdatedAt))

		got, err := s.GetExpense(ctx, "ana", "e1")
		require.NoError(t, err)
		require.Equal(t, core.Food, got.Category)
		require.Equal(t, int64(900), got.Amount.Cents)
		require.True(t, at.Equal(got.UpdatedAt))
		require.True(t, created.Equal(got.CreatedAt))
	})

	t.Run("update rejects invalid result", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		_, err := s.CreateExpense(ctx, expense("e1", "ana", time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), core.Food, "", 500, 0))
		require.NoError(t, err)

		zero := core.Money{}
		_, err = s.UpdateExpense(ctx, "ana", "e1", core.ExpensePatch{Amount: &zero}, created)
		require.ErrorIs(t, err, core.ErrValidation)

		got, err := s.GetExpense(ctx, "ana", "e1")
		require.NoError(t, err)
		require.Equal(t, int64(500), got.Amount.Cents)

		_, err = s.UpdateExpense(ctx, "bruno", "e1", core.ExpensePatch{}, created)
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		_, err := s.CreateExpense(ctx, expense("e1", "ana", time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), core.Food, "", 500, 0))
		require.NoError(t, err)

		require.ErrorIs(t, s.DeleteExpense(ctx, "bruno", "e1"), storage.ErrNotFound)
		require.NoError(t, s.DeleteExpense(ctx, "ana", "e1"))
		require.ErrorIs(t, s.DeleteExpense(ctx, "ana", "e1"), storage.ErrNotFound)

		_, err = s.GetExpense(ctx, "ana", "e1")
		require.True(t, errors.Is(err, storage.ErrNotFound))
	})
}

func ids(expenses []core.Expense) []string {
	out := make([]string, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, e.ID)
	}
	return out
}
