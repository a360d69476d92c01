package storage

import (
	"context"
	"errors"
	"time"

	"gastos/internal/core"
)

// ErrNotFound is returned when an expense does not exist for the given owner.
var ErrNotFound = errors.New("expense not found")

// ExpenseStore persists expenses. Every read and write is scoped to an owner:
// an owner never sees another owner's records.
type ExpenseStore interface {
	// FetchExpensesInRange returns the owner's expenses whose calendar day
	// falls in p, newest day first and, within a day, newest created first.
	FetchExpensesInRange(ctx context.Context, ownerID string, p core.Period) ([]core.Expense, error)
	GetExpense(ctx context.Context, ownerID, id string) (core.Expense, error)
	// CreateExpense stores e as given and returns its id.
	CreateExpense(ctx context.Context, e core.Expense) (string, error)
	// UpdateExpense applies patch, validates the result and stamps at as
	// the update time.
	UpdateExpense(ctx context.Context, ownerID, id string, patch core.ExpensePatch, at time.Time) (core.Expense, error)
	DeleteExpense(ctx context.Context, ownerID, id string) error
	Close() error
}

// Pinger is implemented by stores that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}
