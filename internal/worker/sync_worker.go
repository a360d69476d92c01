package worker

import (
	"context"
	"errors"
	"fmt"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/sheets"
	"gastos/internal/storage"
)

// SyncWorker mirrors store writes into a sheets.Mirror as events arrive.
type SyncWorker struct {
	store  storage.ExpenseStore
	mirror sheets.Mirror
	logger *log.Logger
}

func NewSyncWorker(store storage.ExpenseStore, mirror sheets.Mirror, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &SyncWorker{store: store, mirror: mirror, logger: logger.WithComponent(log.ComponentWorker)}
}

// HandleEvent is an amqp.Handler. Created and updated events reload the
// record so the mirror always gets the latest version; a record that is
// already gone is skipped, its deleted event will follow.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev amqp.ExpenseEvent) error {
	fields := log.NewFields().
		WithOwner(ev.OwnerID).
		WithOperation(log.OpSync)
	fields[log.FieldExpenseID] = ev.ID
	fields[log.FieldEventType] = string(ev.Type)

	switch ev.Type {
	case amqp.EventCreated, amqp.EventUpdated:
		e, err := w.store.GetExpense(ctx, ev.OwnerID, ev.ID)
		if errors.Is(err, storage.ErrNotFound) {
			w.logger.InfoContext(ctx, "Expense gone before sync, skipping", fields.ToSlice()...)
			return nil
		}
		if err != nil {
			return fmt.Errorf("load expense %s: %w", ev.ID, err)
		}
		if err := w.mirror.UpsertExpense(ctx, e); err != nil {
			return fmt.Errorf("mirror expense %s: %w", ev.ID, err)
		}
	case amqp.EventDeleted:
		if err := w.mirror.DeleteExpense(ctx, ev.ID); err != nil {
			return fmt.Errorf("remove mirrored expense %s: %w", ev.ID, err)
		}
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}

	w.logger.InfoContext(ctx, "Expense mirrored", fields.ToSlice()...)
	return nil
}

// Resync pushes every expense of owner in p to the mirror. Used to backfill
// a sheet after it was created or edited by hand.
func (w *SyncWorker) Resync(ctx context.Context, ownerID string, p core.Period) (int, error) {
	expenses, err := w.store.FetchExpensesInRange(ctx, ownerID, p)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", p, err)
	}
	for i, e := range expenses {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := w.mirror.UpsertExpense(ctx, e); err != nil {
			return i, fmt.Errorf("mirror expense %s: %w", e.ID, err)
		}
	}
	w.logger.InfoContext(ctx, "Resync complete",
		log.FieldOwnerID, ownerID,
		log.FieldPeriod, p.String(),
		log.FieldCount, len(expenses))
	return len(expenses), nil
}
