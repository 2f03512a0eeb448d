package daterange_test

import (
	"errors"
	"testing"
	"time"

	"fitbitconvert/internal/daterange"
	"fitbitconvert/internal/faults"
)

func TestParseDateAcceptsUnpadded(t *testing.T) {
	d, err := daterange.ParseDate("2023-1-3")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Year != 2023 || d.Month != time.January || d.Day != 3 {
		t.Fatalf("unexpected date %+v", d)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, value := range []string{"", "2023-13-1", "2023-02-30", "yesterday", "03-01-2023"} {
		if _, err := daterange.ParseDate(value); err == nil {
			t.Fatalf("expected error for %q", value)
		} else if !errors.Is(err, faults.ErrValidation) {
			t.Fatalf("expected validation fault for %q, got %v", value, err)
		}
	}
}

func TestNewRejectsInvertedRange(t *testing.T) {
	_, err := daterange.New("2023-1-5", "2023-1-3")
	if err == nil {
		t.Fatal("expected error for inverted range")
	}
	if !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("expected validation fault, got %v", err)
	}
}

func TestContainsInclusiveBounds(t *testing.T) {
	r, err := daterange.New("2023-1-3", "2023-1-5")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	loc, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}

	cases := []struct {
		ts     time.Time
		expect bool
	}{
		{time.Date(2023, 1, 2, 23, 59, 59, 0, loc), false},
		{time.Date(2023, 1, 3, 0, 0, 0, 0, loc), true},
		{time.Date(2023, 1, 4, 12, 0, 0, 0, loc), true},
		{time.Date(2023, 1, 5, 23, 59, 59, 0, loc), true},
		{time.Date(2023, 1, 6, 0, 0, 0, 0, loc), false},
	}
	for _, tc := range cases {
		if got := r.Contains(tc.ts); got != tc.expect {
			t.Fatalf("Contains(%s) = %v, want %v", tc.ts, got, tc.expect)
		}
	}
}

func TestOpenEndedRanges(t *testing.T) {
	ts := time.Date(2023, 1, 4, 8, 0, 0, 0, time.UTC)

	onlyStart, err := daterange.New("2023-1-4", "")
	if err != nil {
		t.Fatalf("New start-only: %v", err)
	}
	if !onlyStart.Contains(ts) {
		t.Fatal("start-only range should contain its start date")
	}
	if onlyStart.Contains(ts.AddDate(0, 0, -1)) {
		t.Fatal("start-only range should exclude earlier dates")
	}

	onlyEnd, err := daterange.New("", "2023-1-4")
	if err != nil {
		t.Fatalf("New end-only: %v", err)
	}
	if !onlyEnd.Contains(ts) {
		t.Fatal("end-only range should contain its end date")
	}
	if onlyEnd.Contains(ts.AddDate(0, 0, 1)) {
		t.Fatal("end-only range should exclude later dates")
	}

	open, err := daterange.New("", "")
	if err != nil {
		t.Fatalf("New open: %v", err)
	}
	if !open.Unbounded() || !open.Contains(ts) {
		t.Fatal("open range should contain everything")
	}
}

func TestRangeString(t *testing.T) {
	cases := []struct {
		start, end string
		expect     string
	}{
		{"", "", "all dates"},
		{"2023-1-3", "", "2023-01-03.."},
		{"", "2023-1-5", "..2023-01-05"},
		{"2023-1-3", "2023-1-5", "2023-01-03..2023-01-05"},
	}
	for _, tc := range cases {
		r, err := daterange.New(tc.start, tc.end)
		if err != nil {
			t.Fatalf("New(%q, %q): %v", tc.start, tc.end, err)
		}
		if got := r.String(); got != tc.expect {
			t.Fatalf("String() = %q, want %q", got, tc.expect)
		}
	}
}
