package storage

import (
	"sort"

	"gastos/internal/core"
)

// SortExpenses orders expenses the way FetchExpensesInRange returns them.
func SortExpenses(expenses []core.Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		di, dj := expenses[i].Day(), expenses[j].Day()
		if !di.SameDay(dj) {
			return di.After(dj)
		}
		return expenses[i].CreatedAt.After(expenses[j].CreatedAt)
	})
}
