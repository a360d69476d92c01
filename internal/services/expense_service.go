package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"gastos/internal/amqp"
	"gastos/internal/cache"
	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/storage"
)

// ErrLoadExpenses marks a failure of the store while reading a range.
var ErrLoadExpenses = errors.New("could not load expenses")

// Publisher emits expense change events. *amqp.Client implements it.
type Publisher interface {
	Publish(ctx context.Context, ev amqp.ExpenseEvent) error
}

// ExpenseService orchestrates expense writes and range reads across the
// store, the range cache and the event stream.
type ExpenseService struct {
	store     storage.ExpenseStore
	publisher Publisher
	ranges    cache.Cache[[]core.Expense]
	logger    *log.Logger
	now       func() time.Time
	newID     func() string

	// genMu guards generations, which invalidate bumps per owner. A fetch
	// only fills the cache if its owner's generation is unchanged.
	genMu       sync.Mutex
	generations map[string]uint64
}

// NewExpenseService wires the service. publisher and ranges may be nil, in
// which case events are not emitted and reads always hit the store.
func NewExpenseService(store storage.ExpenseStore, publisher Publisher, ranges cache.Cache[[]core.Expense], logger *log.Logger) *ExpenseService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExpenseService{
		store:       store,
		publisher:   publisher,
		ranges:      ranges,
		logger:      logger.WithComponent(log.ComponentExpense),
		now:         time.Now,
		newID:       uuid.NewString,
		generations: map[string]uint64{},
	}
}

// WithClock replaces the time source used to stamp writes.
func (s *ExpenseService) WithClock(now func() time.Time) *ExpenseService {
	s.now = now
	return s
}

// WithIDGenerator replaces the id source.
func (s *ExpenseService) WithIDGenerator(newID func() string) *ExpenseService {
	s.newID = newID
	return s
}

// CreateExpense assigns an id and timestamps, validates and persists e.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	now := s.now().UTC()
	e.ID = s.newID()
	e.CreatedAt = now
	e.UpdatedAt = now
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	if _, err := s.store.CreateExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	s.invalidate(e.OwnerID)
	s.publish(ctx, amqp.EventCreated, e.OwnerID, e.ID)
	s.logger.InfoContext(ctx, "Expense created",
		log.NewFields().WithOwner(e.OwnerID).
			WithExpense(e.ID, e.Amount.Cents, string(e.Category), string(e.SubCategory)).
			ToSlice()...)
	return e, nil
}

// UpdateExpense applies a partial update. An empty patch is a validation
// error.
func (s *ExpenseService) UpdateExpense(ctx context.Context, ownerID, id string, patch core.ExpensePatch) (core.Expense, error) {
	if patch.Empty() {
		return core.Expense{}, fmt.Errorf("%w: nothing to update", core.ErrValidation)
	}

	updated, err := s.store.UpdateExpense(ctx, ownerID, id, patch, s.now().UTC())
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %s: %w", id, err)
	}

	s.invalidate(ownerID)
	s.publish(ctx, amqp.EventUpdated, ownerID, id)
	s.logger.InfoContext(ctx, "Expense updated",
		log.NewFields().WithOwner(ownerID).
			WithExpense(id, updated.Amount.Cents, string(updated.Category), string(updated.SubCategory)).
			ToSlice()...)
	return updated, nil
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteExpense(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}

	s.invalidate(ownerID)
	s.publish(ctx, amqp.EventDeleted, ownerID, id)
	s.logger.InfoContext(ctx, "Expense deleted", log.FieldOwnerID, ownerID, log.FieldExpenseID, id)
	return nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, ownerID, id string) (core.Expense, error) {
	e, err := s.store.GetExpense(ctx, ownerID, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %s: %w", id, err)
	}
	return e, nil
}

// ListExpenses returns the owner's expenses dated inside p. Results are
// served from the range cache when possible; callers always get their own
// copy.
func (s *ExpenseService) ListExpenses(ctx context.Context, ownerID string, p core.Period) ([]core.Expense, error) {
	key := rangeKey(ownerID, p)
	var gen uint64
	if s.ranges != nil {
		if cached, ok := s.ranges.Get(key); ok {
			return clone(cached), nil
		}
		gen = s.generation(ownerID)
	}

	expenses, err := s.store.FetchExpensesInRange(ctx, ownerID, p)
	if err != nil {
		s.logger.ErrorContext(ctx, "Range fetch failed",
			log.FieldOwnerID, ownerID, log.FieldPeriod, p.String(), log.FieldError, err)
		return nil, fmt.Errorf("%w: %w", ErrLoadExpenses, err)
	}

	if s.ranges != nil {
		s.genMu.Lock()
		if s.generations[ownerID] == gen {
			s.ranges.Set(key, clone(expenses))
		}
		s.genMu.Unlock()
	}
	return expenses, nil
}

func (s *ExpenseService) generation(ownerID string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[ownerID]
}

// invalidate drops the owner's cached ranges and bumps its generation so a
// fetch already in flight does not cache what it read before the write.
func (s *ExpenseService) invalidate(ownerID string) {
	if s.ranges == nil {
		return
	}
	s.genMu.Lock()
	s.generations[ownerID]++
	n := s.ranges.DeletePrefix(ownerID + "|")
	s.genMu.Unlock()
	if n > 0 {
		s.logger.Debug("Range cache invalidated", log.FieldOwnerID, ownerID, log.FieldCount, n)
	}
}

// publish never fails the write; the mirror is eventually consistent.
func (s *ExpenseService) publish(ctx context.Context, t amqp.EventType, ownerID, id string) {
	if s.publisher == nil {
		return
	}
	ev := amqp.NewExpenseEvent(t, ownerID, id, s.now())
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish expense event",
			log.FieldOperation, log.OpPublish,
			log.FieldEventType, string(t),
			log.FieldExpenseID, id,
			log.FieldError, err)
	}
}

func rangeKey(ownerID string, p core.Period) string {
	return ownerID + "|" + p.String()
}

func clone(expenses []core.Expense) []core.Expense {
	if expenses == nil {
		return nil
	}
	return append([]core.Expense(nil), expenses...)
}
