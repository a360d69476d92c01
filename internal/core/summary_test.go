package core

import (
	"errors"
	"math/rand"
	"testing"
	"time"
)

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestSummarizeExampleScenario(t *testing.T) {
	expenses := []Expense{
		{ID: "1", Date: at(2024, 3, 1, 9), Category: Food, Amount: Money{Cents: 100000}},
		{ID: "2", Date: at(2024, 3, 2, 9), Category: Transport, SubCategory: Uber, Amount: Money{Cents: 50000}},
		{ID: "3", Date: at(2024, 3, 3, 9), Category: Food, SubCategory: Homemade, Amount: Money{Cents: 25000}},
	}
	start, end := NewDate(2024, 3, 1), NewDate(2024, 3, 31)

	s, err := Summarize(expenses, start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Total.Cents != 175000 {
		t.Fatalf("total = %d, want 175000", s.Total.Cents)
	}
	wantCat := map[Category]int64{Food: 125000, Transport: 50000, Other: 0}
	for c, want := range wantCat {
		got, ok := s.ByCategory[c]
		if !ok || got.Cents != want {
			t.Fatalf("byCategory[%s] = %d (present=%v), want %d", c, got.Cents, ok, want)
		}
	}
	if len(s.BySubCategory) != 2 || s.BySubCategory[Uber].Cents != 50000 || s.BySubCategory[Homemade].Cents != 25000 {
		t.Fatalf("unexpected bySubCategory %v", s.BySubCategory)
	}
	if !s.Period.Start.SameDay(start) || !s.Period.End.SameDay(end) {
		t.Fatalf("period not stamped: %v", s.Period)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s, err := Summarize(nil, NewDate(2024, 1, 1), NewDate(2024, 1, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Total.Cents != 0 || len(s.ByCategory) != 3 || len(s.BySubCategory) != 0 {
		t.Fatalf("unexpected empty summary %+v", s)
	}
	if s.Share(Food) != 0 {
		t.Fatalf("share of an empty summary must be 0")
	}
}

func TestSummarizeDoesNotFilterByDate(t *testing.T) {
	expenses := []Expense{
		{ID: "in", Date: at(2024, 3, 15, 0), Category: Other, Amount: Money{Cents: 100}},
		{ID: "out", Date: at(2023, 1, 1, 0), Category: Other, Amount: Money{Cents: 900}},
	}
	s, err := Summarize(expenses, NewDate(2024, 3, 1), NewDate(2024, 3, 31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Total.Cents != 1000 {
		t.Fatalf("aggregator must trust its input, total = %d", s.Total.Cents)
	}
}

func TestSummarizeSumsNonPositiveAmounts(t *testing.T) {
	expenses := []Expense{
		{ID: "a", Category: Food, Amount: Money{Cents: 500}},
		{ID: "b", Category: Food, Amount: Money{Cents: 0}},
		{ID: "c", Category: Food, Amount: Money{Cents: -200}},
	}
	s, err := Summarize(expenses, NewDate(2024, 1, 1), NewDate(2024, 1, 31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Total.Cents != 300 {
		t.Fatalf("total = %d, want 300", s.Total.Cents)
	}
}

func TestSummarizeRejectsCorruptRecords(t *testing.T) {
	cases := []Expense{
		{ID: "bad-cat", Category: "rent", Amount: Money{Cents: 1}},
		{ID: "bad-sub", Category: Other, SubCategory: Uber, Amount: Money{Cents: 1}},
	}
	for _, bad := range cases {
		in := []Expense{{ID: "ok", Category: Food, Amount: Money{Cents: 1}}, bad}
		_, err := Summarize(in, NewDate(2024, 1, 1), NewDate(2024, 1, 31))
		if !errors.Is(err, ErrDataIntegrity) {
			t.Fatalf("%s: expected ErrDataIntegrity, got %v", bad.ID, err)
		}
	}
}

func TestSummarizeInvalidRange(t *testing.T) {
	_, err := Summarize(nil, NewDate(2024, 2, 1), NewDate(2024, 1, 31))
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func randomExpenses(r *rand.Rand, n int) []Expense {
	out := make([]Expense, n)
	for i := range out {
		c := Categories()[r.Intn(3)]
		var sc SubCategory
		if subs := SubCategoriesOf(c); len(subs) > 0 && r.Intn(2) == 0 {
			sc = subs[r.Intn(len(subs))]
		}
		out[i] = Expense{
			ID:          string(rune('a' + i%26)),
			Date:        at(2024, 5, 1+r.Intn(31), r.Intn(24)),
			Category:    c,
			SubCategory: sc,
			Amount:      Money{Cents: int64(r.Intn(1_000_000))},
		}
	}
	return out
}

func TestSummarizeInvariants(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	start, end := NewDate(2024, 5, 1), NewDate(2024, 5, 31)
	for round := 0; round < 50; round++ {
		expenses := randomExpenses(r, r.Intn(60))
		s, err := Summarize(expenses, start, end)
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}

		var sum int64
		for _, e := range expenses {
			sum += e.Amount.Cents
		}
		if s.Total.Cents != sum {
			t.Fatalf("round %d: sum invariant broken: %d != %d", round, s.Total.Cents, sum)
		}

		var partition int64
		for _, m := range s.ByCategory {
			partition += m.Cents
		}
		if partition != s.Total.Cents {
			t.Fatalf("round %d: partition invariant broken: %d != %d", round, partition, s.Total.Cents)
		}

		for _, c := range Categories() {
			var subs, bare int64
			for _, sc := range SubCategoriesOf(c) {
				subs += s.BySubCategory[sc].Cents
			}
			for _, e := range expenses {
				if e.Category == c && e.SubCategory == "" {
					bare += e.Amount.Cents
				}
			}
			if s.ByCategory[c].Cents != subs+bare {
				t.Fatalf("round %d: category %s = %d, want subs %d + bare %d", round, c, s.ByCategory[c].Cents, subs, bare)
			}
			if subs > s.ByCategory[c].Cents {
				t.Fatalf("round %d: sub-categories of %s exceed the category total", round, c)
			}
		}

		shuffled := append([]Expense(nil), expenses...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		again, err := Summarize(shuffled, start, end)
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		if again.Total != s.Total {
			t.Fatalf("round %d: order changed the total", round)
		}
		for c, m := range s.ByCategory {
			if again.ByCategory[c] != m {
				t.Fatalf("round %d: order changed byCategory[%s]", round, c)
			}
		}
		for sc, m := range s.BySubCategory {
			if again.BySubCategory[sc] != m {
				t.Fatalf("round %d: order changed bySubCategory[%s]", round, sc)
			}
		}
	}
}

func TestShares(t *testing.T) {
	expenses := []Expense{
		{Category: Food, SubCategory: Rappi, Amount: Money{Cents: 300}},
		{Category: Food, Amount: Money{Cents: 100}},
		{Category: Transport, Amount: Money{Cents: 200}},
	}
	s, err := Summarize(expenses, NewDate(2024, 1, 1), NewDate(2024, 1, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Share(Food); got != 6667 {
		t.Fatalf("food share = %d, want 6667", got)
	}
	if got := s.Share(Other); got != 0 {
		t.Fatalf("other share = %d, want 0", got)
	}
	if got := s.SubShare(Rappi); got != 7500 {
		t.Fatalf("rappi share of food = %d, want 7500", got)
	}
}

func TestBasisPoints(t *testing.T) {
	tests := []struct {
		part, whole, want int64
	}{
		{2, 3, 6667},
		{1, 3, 3333},
		{-2, 3, -6667},
		{2, -3, -6667},
		{1, 20000, 1},
		{-1, 20000, -1},
		{5, 0, 0},
		{0, 7, 0},
	}
	for _, tt := range tests {
		if got := BasisPoints(tt.part, tt.whole); got != tt.want {
			t.Errorf("BasisPoints(%d, %d) = %d, want %d", tt.part, tt.whole, got, tt.want)
		}
	}
}

func TestSummarizeDays(t *testing.T) {
	expenses := []Expense{
		{ID: "late", Date: at(2024, 3, 2, 22), Category: Food, Amount: Money{Cents: 100}},
		{ID: "first", Date: at(2024, 3, 1, 8), Category: Other, Amount: Money{Cents: 50}},
		{ID: "early", Date: at(2024, 3, 2, 7), Category: Transport, SubCategory: Saeta, Amount: Money{Cents: 30}},
	}
	days, err := SummarizeDays(expenses)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if !days[0].Date.SameDay(NewDate(2024, 3, 1)) || days[0].Total.Cents != 50 {
		t.Fatalf("unexpected first day %+v", days[0])
	}
	second := days[1]
	if len(second.Expenses) != 2 || second.Total.Cents != 130 || second.ByCategory[Transport].Cents != 30 || second.ByCategory[Other].Cents != 0 {
		t.Fatalf("unexpected second day %+v", second)
	}

	one, err := SummarizeDay(expenses, NewDate(2024, 3, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if one.Total.Cents != 130 || len(one.Expenses) != 2 {
		t.Fatalf("unexpected day summary %+v", one)
	}

	if _, err := SummarizeDays([]Expense{{Category: "x"}}); !errors.Is(err, ErrDataIntegrity) {
		t.Fatalf("expected ErrDataIntegrity, got %v", err)
	}
}
