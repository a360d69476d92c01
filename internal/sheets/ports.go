package sheets

import (
	"context"

	"gastos/internal/core"
)

// Mirror keeps a human-readable copy of the expenses outside the store.
// Both operations are idempotent.
type Mirror interface {
	UpsertExpense(ctx context.Context, e core.Expense) error
	DeleteExpense(ctx context.Context, id string) error
}
