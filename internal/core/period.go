package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	ViewDay   ViewMode = "day"
	ViewWeek  ViewMode = "week"
	ViewMonth ViewMode = "month"
	ViewYear  ViewMode = "year"
)

type (
	// Period is a closed [Start, End] interval of calendar days.
	Period struct {
		Start Date
		End   Date
	}

	ViewMode string
)

// NewPeriod fails with ErrInvalidRange when start is after end.
func NewPeriod(start, end Date) (Period, error) {
	if start.After(end) {
		return Period{}, fmt.Errorf("%w (%s > %s)", ErrInvalidRange, start, end)
	}
	return Period{Start: start, End: end}, nil
}

func DayPeriod(d Date) Period {
	return Period{Start: d, End: d}
}

func MonthPeriod(d Date) Period {
	return Period{Start: d.FirstOfMonth(), End: d.LastOfMonth()}
}

func YearPeriod(d Date) Period {
	return Period{Start: NewDate(d.Year(), time.January, 1), End: NewDate(d.Year(), time.December, 31)}
}

// WeekPeriod returns the seven days of the week containing d.
func WeekPeriod(d Date, ws WeekStart) Period {
	start := StartOfWeek(d, ws)
	return Period{Start: start, End: start.AddDays(6)}
}

func ParseViewMode(s string) (ViewMode, error) {
	switch m := ViewMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ViewDay, ViewWeek, ViewMonth, ViewYear:
		return m, nil
	case "":
		return ViewMonth, nil
	default:
		return "", fmt.Errorf("unknown view mode %q", s)
	}
}

// PeriodFor returns the window of the given view around d.
func PeriodFor(mode ViewMode, d Date, ws WeekStart) (Period, error) {
	switch mode {
	case ViewDay:
		return DayPeriod(d), nil
	case ViewWeek:
		return WeekPeriod(d, ws), nil
	case ViewMonth:
		return MonthPeriod(d), nil
	case ViewYear:
		return YearPeriod(d), nil
	default:
		return Period{}, fmt.Errorf("unknown view mode %q", mode)
	}
}

// Contains compares by calendar date of t in t's location.
func (p Period) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Days returns the number of calendar days in the period.
func (p Period) Days() int {
	return int(p.End.Sub(p.Start.Time).Hours()/24) + 1
}

// Filter keeps the expenses dated inside the period, preserving order.
// The aggregator never filters; callers use this to pre-scope a list.
func (p Period) Filter(expenses []Expense) []Expense {
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if p.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

func (p Period) String() string {
	return p.Start.String() + ".." + p.End.String()
}
