package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gastos/internal/core"

	_ "modernc.org/sqlite"
)

const expenseColumns = `id, owner_id, spent_at, category, sub_category, amount_cents, title, description, created_at, updated_at`

type SQLiteRepository struct {
	db *sql.DB
}

var (
	_ ExpenseStore = (*SQLiteRepository)(nil)
	_ Pinger       = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) FetchExpensesInRange(ctx context.Context, ownerID string, p core.Period) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses
		 WHERE owner_id = ? AND spent_on BETWEEN ? AND ?
		 ORDER BY spent_on DESC, created_at DESC`,
		ownerID, p.Start.String(), p.End.String())
	if err != nil {
		return nil, fmt.Errorf("query expenses %s: %w", p, err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, ownerID, id string) (core.Expense, error) {
	return getExpense(ctx, r.db, ownerID, id)
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (string, error) {
	if e.ID == "" {
		return "", errors.New("create expense: empty id")
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, owner_id, spent_on, spent_at, category, sub_category, amount_cents, title, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.OwnerID, e.Day().String(), formatTime(e.Date), string(e.Category), string(e.SubCategory),
		e.Amount.Cents, e.Title, e.Description, formatStamp(e.CreatedAt), formatStamp(e.UpdatedAt))
	if err != nil {
		return "", fmt.Errorf("insert expense: %w", err)
	}

	slog.DebugContext(ctx, "Expense saved to SQLite",
		"expense_id", e.ID,
		"owner_id", e.OwnerID,
		"amount_cents", e.Amount.Cents,
		"day", e.Day().String())

	return e.ID, nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, ownerID, id string, patch core.ExpensePatch, at time.Time) (core.Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Expense{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := getExpense(ctx, tx, ownerID, id)
	if err != nil {
		return core.Expense{}, err
	}
	updated := patch.Apply(current)
	if err := updated.Validate(); err != nil {
		return core.Expense{}, err
	}
	updated.UpdatedAt = at

	_, err = tx.ExecContext(ctx,
		`UPDATE expenses SET spent_on = ?, spent_at = ?, category = ?, sub_category = ?, amount_cents = ?,
		        title = ?, description = ?, updated_at = ?
		 WHERE owner_id = ? AND id = ?`,
		updated.Day().String(), formatTime(updated.Date), string(updated.Category), string(updated.SubCategory),
		updated.Amount.Cents, updated.Title, updated.Description, formatStamp(updated.UpdatedAt),
		ownerID, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return core.Expense{}, fmt.Errorf("commit update: %w", err)
	}
	return updated, nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getExpense(ctx context.Context, q queryRower, ownerID, id string) (core.Expense, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE owner_id = ? AND id = ?`, ownerID, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, ErrNotFound
	}
	return e, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(s scanner) (core.Expense, error) {
	var e core.Expense
	var spentAt, createdAt, updatedAt, category, subCategory string
	err := s.Scan(&e.ID, &e.OwnerID, &spentAt, &category, &subCategory, &e.Amount.Cents,
		&e.Title, &e.Description, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Expense{}, err
		}
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}
	// Category values are passed through untouched; the aggregator decides
	// what to do with records outside the model.
	e.Category = core.Category(category)
	e.SubCategory = core.SubCategory(subCategory)

	if e.Date, err = parseTime(spentAt); err != nil {
		return core.Expense{}, fmt.Errorf("expense %s spent_at: %w", e.ID, err)
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.Expense{}, fmt.Errorf("expense %s created_at: %w", e.ID, err)
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return core.Expense{}, fmt.Errorf("expense %s updated_at: %w", e.ID, err)
	}
	return e, nil
}

// stampLayout keeps a fixed width so created_at sorts as text.
const stampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime keeps the offset of expense dates, which decides their day.
func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func formatStamp(t time.Time) string {
	return t.UTC().Format(stampLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
