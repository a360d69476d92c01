package core

import "sort"

// ExpenseSummary is derived from a list of expenses and never persisted.
type ExpenseSummary struct {
	Total         Money
	ByCategory    map[Category]Money // every category present, zero by default
	BySubCategory map[SubCategory]Money
	Period        Period
}

// DaySummary is the per-day breakdown used by day views.
type DaySummary struct {
	Date       Date
	Expenses   []Expense
	Total      Money
	ByCategory map[Category]Money
}

// Summarize totals expenses over the period [start, end].
//
// The input is trusted to be already scoped to the period: nothing is
// filtered by date, and the period is only stamped on the result. Amounts are
// summed as given, zero and negative included. An expense whose category or
// sub-category is outside the closed model fails the whole call with
// ErrDataIntegrity. Accumulation follows input order.
func Summarize(expenses []Expense, start, end Date) (ExpenseSummary, error) {
	period, err := NewPeriod(start, end)
	if err != nil {
		return ExpenseSummary{}, err
	}
	s := ExpenseSummary{
		ByCategory:    zeroByCategory(),
		BySubCategory: map[SubCategory]Money{},
		Period:        period,
	}
	for _, e := range expenses {
		if err := e.CheckIntegrity(); err != nil {
			return ExpenseSummary{}, err
		}
		s.Total = s.Total.Add(e.Amount)
		s.ByCategory[e.Category] = s.ByCategory[e.Category].Add(e.Amount)
		if e.SubCategory != "" {
			s.BySubCategory[e.SubCategory] = s.BySubCategory[e.SubCategory].Add(e.Amount)
		}
	}
	return s, nil
}

// SummarizePeriod is Summarize over an already validated Period.
func SummarizePeriod(expenses []Expense, p Period) (ExpenseSummary, error) {
	return Summarize(expenses, p.Start, p.End)
}

// SummarizeDays groups expenses by calendar day, oldest first.
func SummarizeDays(expenses []Expense) ([]DaySummary, error) {
	byDay := map[int]*DaySummary{}
	for _, e := range expenses {
		if err := e.CheckIntegrity(); err != nil {
			return nil, err
		}
		d := e.Day()
		ds, ok := byDay[d.key()]
		if !ok {
			ds = &DaySummary{Date: d, ByCategory: zeroByCategory()}
			byDay[d.key()] = ds
		}
		ds.Expenses = append(ds.Expenses, e)
		ds.Total = ds.Total.Add(e.Amount)
		ds.ByCategory[e.Category] = ds.ByCategory[e.Category].Add(e.Amount)
	}
	out := make([]DaySummary, 0, len(byDay))
	for _, ds := range byDay {
		out = append(out, *ds)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// SummarizeDay returns the breakdown of a single day. Expenses dated on
// other days are ignored.
func SummarizeDay(expenses []Expense, d Date) (DaySummary, error) {
	ds := DaySummary{Date: d, ByCategory: zeroByCategory()}
	for _, e := range ExpensesForDay(expenses, d) {
		if err := e.CheckIntegrity(); err != nil {
			return DaySummary{}, err
		}
		ds.Expenses = append(ds.Expenses, e)
		ds.Total = ds.Total.Add(e.Amount)
		ds.ByCategory[e.Category] = ds.ByCategory[e.Category].Add(e.Amount)
	}
	return ds, nil
}

// Share returns c's share of the total in basis points (0..10000), rounded
// like BasisPoints.
func (s ExpenseSummary) Share(c Category) int64 {
	return BasisPoints(s.ByCategory[c].Cents, s.Total.Cents)
}

// SubShare returns sc's share of its parent category in basis points.
func (s ExpenseSummary) SubShare(sc SubCategory) int64 {
	parent, ok := sc.Parent()
	if !ok {
		return 0
	}
	return BasisPoints(s.BySubCategory[sc].Cents, s.ByCategory[parent].Cents)
}

// BasisPoints returns part/whole in hundredths of a percent, rounded half
// away from zero. Zero when whole is zero.
func BasisPoints(part, whole int64) int64 {
	if whole == 0 {
		return 0
	}
	num, den := part*10000, whole
	neg := (num < 0) != (den < 0)
	if num < 0 {
		num = -num
	}
	if den < 0 {
		den = -den
	}
	q := (num + den/2) / den
	if neg {
		return -q
	}
	return q
}

func zeroByCategory() map[Category]Money {
	m := make(map[Category]Money, len(subCategories))
	for _, c := range Categories() {
		m[c] = Money{}
	}
	return m
}
