// Package http provides HTTP server and handler implementations.
//
// This file implements the parsing of query parameters and JSON bodies into
// domain values.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gastos/internal/core"
)

const maxBodyBytes = 64 << 10

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month time.Month
}

// Date returns the first day of the month.
func (p MonthParams) Date() core.Date {
	return core.NewDate(p.Year, p.Month, 1)
}

// ParseMonthParams reads year and month from the query, defaulting each to
// today's. Out of range values are errors, not silently corrected.
func ParseMonthParams(query url.Values, today core.Date) (MonthParams, error) {
	params := MonthParams{Year: today.Year(), Month: today.Month()}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 || y > 9999 {
			return MonthParams{}, fmt.Errorf("invalid year %q", v)
		}
		params.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return MonthParams{}, fmt.Errorf("invalid month %q", v)
		}
		params.Month = time.Month(m)
	}
	return params, nil
}

// ParseDateParam reads a YYYY-MM-DD query value, returning def when absent.
func ParseDateParam(query url.Values, key string, def core.Date) (core.Date, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return def, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// ParseWeekStartParam reads week_start, returning def when absent.
func ParseWeekStartParam(query url.Values, def core.WeekStart) (core.WeekStart, error) {
	v := strings.TrimSpace(query.Get("week_start"))
	if v == "" {
		return def, nil
	}
	return core.ParseWeekStart(v)
}

// ParseRangeParams reads from/to. Missing bounds default to the month of
// today; an inverted range fails with core.ErrInvalidRange.
func ParseRangeParams(query url.Values, today core.Date) (core.Period, error) {
	month := core.MonthPeriod(today)
	from, err := ParseDateParam(query, "from", month.Start)
	if err != nil {
		return core.Period{}, err
	}
	to, err := ParseDateParam(query, "to", month.End)
	if err != nil {
		return core.Period{}, err
	}
	return core.NewPeriod(from, to)
}

// hasRangeParams reports whether the caller asked for an explicit range.
func hasRangeParams(query url.Values) bool {
	return query.Get("from") != "" || query.Get("to") != ""
}

// decodeJSON reads a single JSON object from the body, rejecting unknown
// fields and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("invalid request body: trailing data")
	}
	return nil
}

// expenseRequest is the body of POST /api/expenses. Amount takes a JSON
// number or a decimal string ("1500", "12.34", "12,34").
type expenseRequest struct {
	Date        string          `json:"date"`
	Category    string          `json:"category"`
	SubCategory string          `json:"sub_category"`
	Amount      json.RawMessage `json:"amount"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
}

// patchRequest is the body of PATCH /api/expenses/{id}. Absent fields are
// left unchanged.
type patchRequest struct {
	Date        *string         `json:"date"`
	Category    *string         `json:"category"`
	SubCategory *string         `json:"sub_category"`
	Amount      json.RawMessage `json:"amount"`
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", core.ErrValidation, err)
}

// toExpense converts the request. Conversion failures wrap
// core.ErrValidation like the domain checks do.
func (req expenseRequest) toExpense(ownerID string, now time.Time) (core.Expense, error) {
	date := now
	if strings.TrimSpace(req.Date) != "" {
		d, err := parseExpenseDate(req.Date)
		if err != nil {
			return core.Expense{}, invalid(err)
		}
		date = d
	}
	cat, err := core.ParseCategory(req.Category)
	if err != nil {
		return core.Expense{}, invalid(err)
	}
	sub, err := core.ParseSubCategory(req.SubCategory)
	if err != nil {
		return core.Expense{}, invalid(err)
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.Expense{}, invalid(err)
	}
	return core.Expense{
		OwnerID:     ownerID,
		Date:        date,
		Category:    cat,
		SubCategory: sub,
		Amount:      amount,
		Title:       sanitizeInput(req.Title),
		Description: sanitizeInput(req.Description),
	}, nil
}

func (req patchRequest) toPatch() (core.ExpensePatch, error) {
	var p core.ExpensePatch
	if req.Date != nil {
		d, err := parseExpenseDate(*req.Date)
		if err != nil {
			return p, invalid(err)
		}
		p.Date = &d
	}
	if req.Category != nil {
		c, err := core.ParseCategory(*req.Category)
		if err != nil {
			return p, invalid(err)
		}
		p.Category = &c
	}
	if req.SubCategory != nil {
		sc, err := core.ParseSubCategory(*req.SubCategory)
		if err != nil {
			return p, invalid(err)
		}
		p.SubCategory = &sc
	}
	if len(req.Amount) > 0 && string(req.Amount) != "null" {
		m, err := parseAmount(req.Amount)
		if err != nil {
			return p, invalid(err)
		}
		p.Amount = &m
	}
	if req.Title != nil {
		t := sanitizeInput(*req.Title)
		p.Title = &t
	}
	if req.Description != nil {
		d := sanitizeInput(*req.Description)
		p.Description = &d
	}
	return p, nil
}

// parseExpenseDate accepts a full RFC 3339 timestamp, kept with its offset,
// or a bare YYYY-MM-DD day.
func parseExpenseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	return d.Time, nil
}

func parseAmount(raw json.RawMessage) (core.Money, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return core.Money{}, core.ErrInvalidAmount
	}
	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return core.Money{}, core.ErrInvalidAmount
		}
	} else {
		s = string(raw)
	}
	// Exponent notation is not a peso amount.
	if strings.ContainsAny(s, "eE") {
		return core.Money{}, fmt.Errorf("%w: %q", core.ErrInvalidAmount, s)
	}
	return core.ParseMoney(s)
}

// sanitizeInput removes control characters except tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
