package http

import (
	"encoding/json"
	"errors"
	"net/url"
	"testing"
	"time"

	"gastos/internal/core"
)

func TestParseMonthParams(t *testing.T) {
	today := core.NewDate(2024, time.March, 15)
	tests := []struct {
		query   string
		want    MonthParams
		wantErr bool
	}{
		{"", MonthParams{2024, time.March}, false},
		{"year=2023&month=12", MonthParams{2023, time.December}, false},
		{"month=1", MonthParams{2024, time.January}, false},
		{"month=0", MonthParams{}, true},
		{"month=13", MonthParams{}, true},
		{"year=abc", MonthParams{}, true},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		got, err := ParseMonthParams(q, today)
		if (err != nil) != tt.wantErr {
			t.Fatalf("%q: err = %v", tt.query, err)
		}
		if !tt.wantErr && got != tt.want {
			t.Fatalf("%q: got %+v, want %+v", tt.query, got, tt.want)
		}
	}
}

func TestParseRangeParams(t *testing.T) {
	today := core.NewDate(2024, time.February, 10)

	p, err := ParseRangeParams(url.Values{}, today)
	if err != nil || p.Start.String() != "2024-02-01" || p.End.String() != "2024-02-29" {
		t.Fatalf("default range = %s, %v", p, err)
	}

	p, err = ParseRangeParams(url.Values{"from": {"2024-01-15"}}, today)
	if err != nil || p.Start.String() != "2024-01-15" || p.End.String() != "2024-02-29" {
		t.Fatalf("open-ended range = %s, %v", p, err)
	}

	_, err = ParseRangeParams(url.Values{"from": {"2024-02-10"}, "to": {"2024-02-01"}}, today)
	if !errors.Is(err, core.ErrInvalidRange) {
		t.Fatalf("expected invalid range, got %v", err)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{`"1500"`, 150000, false},
		{`"12,34"`, 1234, false},
		{`12.345`, 1235, false},
		{`7`, 700, false},
		{`"1e3"`, 0, true},
		{`1e3`, 0, true},
		{`null`, 0, true},
		{`"-1"`, 0, true},
		{`true`, 0, true},
	}
	for _, tt := range tests {
		got, err := parseAmount(json.RawMessage(tt.raw))
		if (err != nil) != tt.wantErr {
			t.Fatalf("%s: err = %v", tt.raw, err)
		}
		if !tt.wantErr && got.Cents != tt.want {
			t.Fatalf("%s: got %d, want %d", tt.raw, got.Cents, tt.want)
		}
	}
}

func TestPatchRequestToPatch(t *testing.T) {
	title := "  taxi\x00 "
	cat := "transport"
	req := patchRequest{Title: &title, Category: &cat, Amount: json.RawMessage(`"250"`)}

	p, err := req.toPatch()
	if err != nil {
		t.Fatalf("toPatch: %v", err)
	}
	if *p.Title != "taxi" || *p.Category != core.Transport || p.Amount.Cents != 25000 || p.Date != nil {
		t.Fatalf("unexpected patch: %+v", p)
	}

	bad := "rent"
	if _, err := (patchRequest{Category: &bad}).toPatch(); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseExpenseDate(t *testing.T) {
	got, err := parseExpenseDate("2024-03-10T22:00:00-03:00")
	if err != nil || core.DateOf(got).String() != "2024-03-10" {
		t.Fatalf("timestamp with offset: %v, %v", got, err)
	}
	got, err = parseExpenseDate("2024-03-10")
	if err != nil || !got.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("bare day: %v, %v", got, err)
	}
	if _, err := parseExpenseDate("10/03/2024"); err == nil {
		t.Fatal("expected error for foreign layout")
	}
}
