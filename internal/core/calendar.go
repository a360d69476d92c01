package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	Monday WeekStart = iota
	Sunday
)

// WeekStart selects the first column of a calendar row.
type WeekStart int

// CalendarCell is one day slot of a month grid.
type CalendarCell struct {
	Date           Date
	InCurrentMonth bool // false for lead/trail days of adjacent months
	Expenses       []Expense
	Total          Money
}

func ParseWeekStart(s string) (WeekStart, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "monday", "mon", "1":
		return Monday, nil
	case "sunday", "sun", "0":
		return Sunday, nil
	default:
		return Monday, fmt.Errorf("unknown week start %q", s)
	}
}

func (ws WeekStart) String() string {
	if ws == Sunday {
		return "sunday"
	}
	return "monday"
}

func (ws WeekStart) weekday() time.Weekday {
	if ws == Sunday {
		return time.Sunday
	}
	return time.Monday
}

// StartOfWeek returns the first day of the week containing d.
func StartOfWeek(d Date, ws WeekStart) Date {
	back := (int(d.Weekday()) - int(ws.weekday()) + 7) % 7
	return d.AddDays(-back)
}

// EndOfWeek returns the last day of the week containing d.
func EndOfWeek(d Date, ws WeekStart) Date {
	return StartOfWeek(d, ws).AddDays(6)
}

// GridPeriod is the span shown by the month grid of ref, lead and trail
// days included.
func GridPeriod(ref Date, ws WeekStart) Period {
	return Period{
		Start: StartOfWeek(ref.FirstOfMonth(), ws),
		End:   EndOfWeek(ref.LastOfMonth(), ws),
	}
}

// BuildMonthGrid returns the cells of ref's month, extended to whole weeks,
// in row-major chronological order. The result always has a multiple of 7
// cells. Cells carry no expenses; see MonthCalendar.
func BuildMonthGrid(ref Date, ws WeekStart) []CalendarCell {
	span := GridPeriod(ref, ws)
	cells := make([]CalendarCell, 0, span.Days())
	for d := span.Start; !d.After(span.End); d = d.AddDays(1) {
		cells = append(cells, CalendarCell{
			Date:           d,
			InCurrentMonth: d.SameMonth(ref),
		})
	}
	return cells
}

// MonthCalendar builds the grid of ref and fills every cell, lead and trail
// days included, with the expenses dated on it.
func MonthCalendar(ref Date, ws WeekStart, expenses []Expense) []CalendarCell {
	cells := BuildMonthGrid(ref, ws)
	index := make(map[int]int, len(cells))
	for i, c := range cells {
		index[c.Date.key()] = i
	}
	for _, e := range expenses {
		i, ok := index[e.Day().key()]
		if !ok {
			continue
		}
		cells[i].Expenses = append(cells[i].Expenses, e)
		cells[i].Total = cells[i].Total.Add(e.Amount)
	}
	return cells
}

// ExpensesForDay returns the expenses whose calendar date is d, in input
// order. Time of day is ignored.
func ExpensesForDay(expenses []Expense, d Date) []Expense {
	var out []Expense
	for _, e := range expenses {
		if e.Day().SameDay(d) {
			out = append(out, e)
		}
	}
	return out
}

// DayTotal sums the amounts of the given expenses. Amounts are not validated.
func DayTotal(expenses []Expense) Money {
	var total Money
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// HasCategory reports whether any expense of the cell is in c.
func (c CalendarCell) HasCategory(cat Category) bool {
	for _, e := range c.Expenses {
		if e.Category == cat {
			return true
		}
	}
	return false
}

// Weeks splits a grid into rows of seven cells.
func Weeks(cells []CalendarCell) [][]CalendarCell {
	rows := make([][]CalendarCell, 0, len(cells)/7)
	for i := 0; i+7 <= len(cells); i += 7 {
		rows = append(rows, cells[i:i+7])
	}
	return rows
}
