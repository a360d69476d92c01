package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSubCategoryMembership(t *testing.T) {
	cases := []struct {
		sc   SubCategory
		c    Category
		want bool
	}{
		{Uber, Transport, true},
		{Saeta, Transport, true},
		{Didi, Transport, true},
		{Homemade, Food, true},
		{PedidosYa, Food, true},
		{Uber, Food, false},
		{Rappi, Other, false},
		{"taxi", Transport, false},
	}
	for _, tc := range cases {
		if got := tc.sc.BelongsTo(tc.c); got != tc.want {
			t.Fatalf("%s.BelongsTo(%s) = %v, want %v", tc.sc, tc.c, got, tc.want)
		}
	}
	if subs := SubCategoriesOf(Other); len(subs) != 0 {
		t.Fatalf("other must have no sub-categories, got %v", subs)
	}
}

func TestParseCategory(t *testing.T) {
	if c, err := ParseCategory(" Food "); err != nil || c != Food {
		t.Fatalf("expected food, got %q (err=%v)", c, err)
	}
	if _, err := ParseCategory("rent"); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
	if sc, err := ParseSubCategory(""); err != nil || sc != "" {
		t.Fatalf("empty sub-category must parse as none, got %q (err=%v)", sc, err)
	}
	if sc, err := ParseSubCategory("PEDIDOS_YA"); err != nil || sc != PedidosYa {
		t.Fatalf("expected pedidos_ya, got %q (err=%v)", sc, err)
	}
	if _, err := ParseSubCategory("bike"); !errors.Is(err, ErrInvalidSubCategory) {
		t.Fatalf("expected ErrInvalidSubCategory, got %v", err)
	}
}

func TestExpenseValidate(t *testing.T) {
	day := time.Date(2024, 3, 10, 13, 0, 0, 0, time.UTC)
	good := Expense{
		OwnerID:     "u1",
		Date:        day,
		Category:    Transport,
		SubCategory: Uber,
		Amount:      Money{Cents: 50000},
		Title:       "Viaje al trabajo",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{OwnerID: "", Date: day, Category: Food, Amount: Money{Cents: 1}},
		{OwnerID: "u1", Category: Food, Amount: Money{Cents: 1}},
		{OwnerID: "u1", Date: day, Category: "rent", Amount: Money{Cents: 1}},
		{OwnerID: "u1", Date: day, Category: Food, SubCategory: Uber, Amount: Money{Cents: 1}},
		{OwnerID: "u1", Date: day, Category: Other, SubCategory: Rappi, Amount: Money{Cents: 1}},
		{OwnerID: "u1", Date: day, Category: Food, Amount: Money{Cents: 0}},
		{OwnerID: "u1", Date: day, Category: Food, Amount: Money{Cents: -10}},
		{OwnerID: "u1", Date: day, Category: Food, Amount: Money{Cents: 1}, Title: strings.Repeat("x", 101)},
		{OwnerID: "u1", Date: day, Category: Food, Amount: Money{Cents: 1}, Description: strings.Repeat("x", 201)},
	}
	if err := bads[5].Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount to stay visible, got %v", err)
	}
	for i, e := range bads {
		if err := e.Validate(); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: expected ErrValidation, got %v", i, err)
		}
	}
}

func TestCheckIntegrity(t *testing.T) {
	ok := Expense{ID: "a", Category: Food, SubCategory: Bought, Amount: Money{Cents: -5}}
	if err := ok.CheckIntegrity(); err != nil {
		t.Fatalf("negative amounts are not an integrity problem: %v", err)
	}
	for _, e := range []Expense{
		{ID: "b", Category: "groceries"},
		{ID: "c", Category: Transport, SubCategory: Homemade},
	} {
		if err := e.CheckIntegrity(); !errors.Is(err, ErrDataIntegrity) {
			t.Fatalf("expense %s: expected ErrDataIntegrity, got %v", e.ID, err)
		}
	}
}

func TestExpensePatchApply(t *testing.T) {
	base := Expense{ID: "x", Category: Transport, SubCategory: Uber, Amount: Money{Cents: 100}, Title: "uber"}

	food := Food
	moved := ExpensePatch{Category: &food}.Apply(base)
	if moved.Category != Food || moved.SubCategory != "" {
		t.Fatalf("moving category must drop a foreign sub-category, got %+v", moved)
	}

	didi := Didi
	amt := Money{Cents: 900}
	changed := ExpensePatch{SubCategory: &didi, Amount: &amt}.Apply(base)
	if changed.SubCategory != Didi || changed.Amount.Cents != 900 || changed.Title != "uber" {
		t.Fatalf("unexpected patch result %+v", changed)
	}

	if !(ExpensePatch{}).Empty() {
		t.Fatalf("zero patch must be empty")
	}
}
