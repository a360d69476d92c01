package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Food      Category = "food"
	Transport Category = "transport"
	Other     Category = "other"
)

const (
	Saeta     SubCategory = "saeta"
	Didi      SubCategory = "didi"
	Uber      SubCategory = "uber"
	PedidosYa SubCategory = "pedidos_ya"
	Rappi     SubCategory = "rappi"
	Homemade  SubCategory = "homemade"
	Bought    SubCategory = "bought"
)

type (
	Category    string
	SubCategory string

	Money struct {
		Cents int64
	}

	Expense struct {
		ID          string
		OwnerID     string
		Date        time.Time // any time of day; grouped by calendar date
		Category    Category
		SubCategory SubCategory // empty when the expense has none
		Amount      Money
		Title       string
		Description string
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// ExpensePatch carries the fields of a partial update. Nil means unchanged.
	ExpensePatch struct {
		Date        *time.Time
		Category    *Category
		SubCategory *SubCategory
		Amount      *Money
		Title       *string
		Description *string
	}
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDataIntegrity      = errors.New("data integrity")
	ErrInvalidRange       = errors.New("invalid range: start is after end")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidSubCategory = errors.New("invalid sub-category")
	ErrEmptyOwner         = errors.New("empty owner")
	ErrZeroDate           = errors.New("date cannot be zero")
)

var subCategories = map[Category][]SubCategory{
	Transport: {Saeta, Didi, Uber},
	Food:      {PedidosYa, Rappi, Homemade, Bought},
	Other:     nil,
}

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{Food, Transport, Other}
}

// SubCategoriesOf returns the sub-categories permitted for c.
func SubCategoriesOf(c Category) []SubCategory {
	return append([]SubCategory(nil), subCategories[c]...)
}

func (c Category) Valid() bool {
	_, ok := subCategories[c]
	return ok
}

func (c Category) String() string {
	return string(c)
}

// BelongsTo reports whether sc is one of c's sub-categories.
func (sc SubCategory) BelongsTo(c Category) bool {
	for _, s := range subCategories[c] {
		if s == sc {
			return true
		}
	}
	return false
}

// Parent returns the category sc belongs to.
func (sc SubCategory) Parent() (Category, bool) {
	for _, c := range Categories() {
		if sc.BelongsTo(c) {
			return c, true
		}
	}
	return "", false
}

func (sc SubCategory) String() string {
	return string(sc)
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

// ParseSubCategory accepts an empty string as "no sub-category".
func ParseSubCategory(s string) (SubCategory, error) {
	sc := SubCategory(strings.ToLower(strings.TrimSpace(s)))
	if sc == "" {
		return "", nil
	}
	if _, ok := sc.Parent(); !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidSubCategory, s)
	}
	return sc, nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// CheckIntegrity verifies the closed category model only. Amounts and dates
// are not looked at.
func (e Expense) CheckIntegrity() error {
	if !e.Category.Valid() {
		return fmt.Errorf("%w: expense %q has unknown category %q", ErrDataIntegrity, e.ID, e.Category)
	}
	if e.SubCategory != "" && !e.SubCategory.BelongsTo(e.Category) {
		return fmt.Errorf("%w: expense %q has sub-category %q outside category %q", ErrDataIntegrity, e.ID, e.SubCategory, e.Category)
	}
	return nil
}

// Validate is the write-side check. Every failure wraps ErrValidation.
func (e Expense) Validate() error {
	if err := e.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

func (e Expense) validate() error {
	if strings.TrimSpace(e.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if e.Date.IsZero() {
		return ErrZeroDate
	}
	if !e.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, e.Category)
	}
	if e.SubCategory != "" && !e.SubCategory.BelongsTo(e.Category) {
		return fmt.Errorf("%w: %q is not a %s sub-category", ErrInvalidSubCategory, e.SubCategory, e.Category)
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if len([]rune(e.Title)) > 100 {
		return errors.New("title too long (max 100 characters)")
	}
	if len([]rune(e.Description)) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// Day returns the calendar date of the expense.
func (e Expense) Day() Date {
	return DateOf(e.Date)
}

// Empty reports whether the patch changes nothing.
func (p ExpensePatch) Empty() bool {
	return p.Date == nil && p.Category == nil && p.SubCategory == nil &&
		p.Amount == nil && p.Title == nil && p.Description == nil
}

// Apply returns e with the patch applied. Moving an expense to another
// category without naming a sub-category drops a sub-category that no
// longer fits.
func (p ExpensePatch) Apply(e Expense) Expense {
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Category != nil {
		e.Category = *p.Category
		if p.SubCategory == nil && e.SubCategory != "" && !e.SubCategory.BelongsTo(e.Category) {
			e.SubCategory = ""
		}
	}
	if p.SubCategory != nil {
		e.SubCategory = *p.SubCategory
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	return e
}
