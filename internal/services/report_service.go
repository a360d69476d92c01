package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"gastos/internal/core"
	"gastos/internal/log"
)

// MonthCalendar is the calendar view of one month.
type MonthCalendar struct {
	Month     core.Date // first day of the month
	WeekStart core.WeekStart
	Cells     []core.CalendarCell
	Summary   core.ExpenseSummary // current month only, lead/trail days excluded
	Prev      core.Date
	Next      core.Date
}

// Overview compares a month with the one before it.
type Overview struct {
	Current  core.ExpenseSummary
	Previous core.ExpenseSummary
	Days     []core.DaySummary // days of the current month with spending
	Delta    core.Money
	// DeltaBasisPoints is the change relative to the previous total, zero
	// when the previous month had no spending.
	DeltaBasisPoints int64
}

// ReportService builds the read models. All reads go through the expense
// service so they share its range cache.
type ReportService struct {
	expenses *ExpenseService
	logger   *log.Logger
}

func NewReportService(expenses *ExpenseService, logger *log.Logger) *ReportService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ReportService{expenses: expenses, logger: logger.WithComponent(log.ComponentReport)}
}

func (s *ReportService) Summary(ctx context.Context, ownerID string, p core.Period) (core.ExpenseSummary, error) {
	list, err := s.expenses.ListExpenses(ctx, ownerID, p)
	if err != nil {
		return core.ExpenseSummary{}, err
	}
	sum, err := core.SummarizePeriod(list, p)
	if err != nil {
		return core.ExpenseSummary{}, fmt.Errorf("summarize %s: %w", p, err)
	}
	s.logger.DebugContext(ctx, "Summary built",
		log.FieldOperation, log.OpSummary,
		log.FieldOwnerID, ownerID,
		log.FieldPeriod, p.String(),
		log.FieldCount, len(list))
	return sum, nil
}

// Calendar fetches the whole grid span so lead and trail days show their
// expenses, but summarises the month itself only.
func (s *ReportService) Calendar(ctx context.Context, ownerID string, ref core.Date, ws core.WeekStart) (MonthCalendar, error) {
	list, err := s.expenses.ListExpenses(ctx, ownerID, core.GridPeriod(ref, ws))
	if err != nil {
		return MonthCalendar{}, err
	}

	month := core.MonthPeriod(ref)
	sum, err := core.SummarizePeriod(month.Filter(list), month)
	if err != nil {
		return MonthCalendar{}, fmt.Errorf("summarize %s: %w", month, err)
	}

	cal := MonthCalendar{
		Month:     month.Start,
		WeekStart: ws,
		Cells:     core.MonthCalendar(ref, ws, list),
		Summary:   sum,
		Prev:      ref.AddMonths(-1),
		Next:      ref.AddMonths(1),
	}
	s.logger.DebugContext(ctx, "Calendar built",
		log.FieldOperation, log.OpCalendar,
		log.FieldOwnerID, ownerID,
		log.FieldPeriod, month.String(),
		log.FieldCount, len(cal.Cells))
	return cal, nil
}

func (s *ReportService) Day(ctx context.Context, ownerID string, d core.Date) (core.DaySummary, error) {
	list, err := s.expenses.ListExpenses(ctx, ownerID, core.DayPeriod(d))
	if err != nil {
		return core.DaySummary{}, err
	}
	ds, err := core.SummarizeDay(list, d)
	if err != nil {
		return core.DaySummary{}, fmt.Errorf("summarize %s: %w", d, err)
	}
	return ds, nil
}

// Overview loads month and the previous month concurrently.
func (s *ReportService) Overview(ctx context.Context, ownerID string, month core.Date) (Overview, error) {
	current := core.MonthPeriod(month)
	previous := core.MonthPeriod(month.AddMonths(-1))

	var curList, prevList []core.Expense
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		curList, err = s.expenses.ListExpenses(gctx, ownerID, current)
		return err
	})
	g.Go(func() error {
		var err error
		prevList, err = s.expenses.ListExpenses(gctx, ownerID, previous)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	var (
		ov  Overview
		err error
	)
	if ov.Current, err = core.SummarizePeriod(curList, current); err != nil {
		return Overview{}, fmt.Errorf("summarize %s: %w", current, err)
	}
	if ov.Previous, err = core.SummarizePeriod(prevList, previous); err != nil {
		return Overview{}, fmt.Errorf("summarize %s: %w", previous, err)
	}
	if ov.Days, err = core.SummarizeDays(curList); err != nil {
		return Overview{}, fmt.Errorf("summarize days: %w", err)
	}
	ov.Delta = core.Money{Cents: ov.Current.Total.Cents - ov.Previous.Total.Cents}
	ov.DeltaBasisPoints = core.BasisPoints(ov.Delta.Cents, ov.Previous.Total.Cents)
	return ov, nil
}
