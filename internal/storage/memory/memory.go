package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"gastos/internal/core"
	"gastos/internal/storage"
)

// Store keeps expenses in a map. Safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	items map[string]core.Expense
}

var _ storage.ExpenseStore = (*Store)(nil)

func New() *Store {
	return &Store{items: map[string]core.Expense{}}
}

// seedExpense is the JSON shape of a seed file entry. Date takes either a
// full RFC 3339 timestamp or a bare YYYY-MM-DD day; Amount is a decimal
// string in pesos.
type seedExpense struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
	Amount      string `json:"amount"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// NewFromFile returns a store seeded from a JSON array of expenses.
func NewFromFile(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seeds []seedExpense
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}

	s := New()
	now := time.Now().UTC()
	for i, in := range seeds {
		e, err := in.expense(now)
		if err != nil {
			return nil, fmt.Errorf("seed entry %d: %w", i, err)
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("seed entry %d: %w", i, err)
		}
		if _, err := s.CreateExpense(context.Background(), e); err != nil {
			return nil, fmt.Errorf("seed entry %d: %w", i, err)
		}
	}
	return s, nil
}

func (in seedExpense) expense(now time.Time) (core.Expense, error) {
	if in.ID == "" {
		return core.Expense{}, errors.New("missing id")
	}
	date, err := time.Parse(time.RFC3339, in.Date)
	if err != nil {
		d, derr := core.ParseDate(in.Date)
		if derr != nil {
			return core.Expense{}, derr
		}
		date = d.Time
	}
	cat, err := core.ParseCategory(in.Category)
	if err != nil {
		return core.Expense{}, err
	}
	sub, err := core.ParseSubCategory(in.SubCategory)
	if err != nil {
		return core.Expense{}, err
	}
	amount, err := core.ParseMoney(in.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		ID:          in.ID,
		OwnerID:     in.OwnerID,
		Date:        date,
		Category:    cat,
		SubCategory: sub,
		Amount:      amount,
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *Store) FetchExpensesInRange(_ context.Context, ownerID string, p core.Period) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Expense
	for _, e := range s.items {
		if e.OwnerID == ownerID && p.Contains(e.Date) {
			out = append(out, e)
		}
	}
	storage.SortExpenses(out)
	return out, nil
}

func (s *Store) GetExpense(_ context.Context, ownerID, id string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	if !ok || e.OwnerID != ownerID {
		return core.Expense{}, storage.ErrNotFound
	}
	return e, nil
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (string, error) {
	if e.ID == "" {
		return "", errors.New("create expense: empty id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[e.ID]; exists {
		return "", fmt.Errorf("create expense: id %s already exists", e.ID)
	}
	s.items[e.ID] = e
	return e.ID, nil
}

func (s *Store) UpdateExpense(_ context.Context, ownerID, id string, patch core.ExpensePatch, at time.Time) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.items[id]
	if !ok || current.OwnerID != ownerID {
		return core.Expense{}, storage.ErrNotFound
	}
	updated := patch.Apply(current)
	if err := updated.Validate(); err != nil {
		return core.Expense{}, err
	}
	updated.UpdatedAt = at
	s.items[id] = updated
	return updated, nil
}

func (s *Store) DeleteExpense(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	if !ok || e.OwnerID != ownerID {
		return storage.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
