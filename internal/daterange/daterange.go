// Package daterange implements the inclusive calendar-date filter applied to
// converted records. Bounds are optional on either side; an absent bound
// leaves that side unbounded.
package daterange

import (
	"fmt"
	"time"

	"fitbitconvert/internal/faults"
)

// inputLayout accepts non-padded months and days (2023-1-3).
const inputLayout = "2006-1-2"

// Date is a calendar date without a time component or location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate converts a YYYY-M-D string into a Date.
func ParseDate(value string) (Date, error) {
	parsed, err := time.Parse(inputLayout, value)
	if err != nil {
		return Date{}, faults.Wrap(faults.ErrValidation, "dates", "parse",
			fmt.Sprintf("%q is not a valid YYYY-M-D date", value), err)
	}
	return DateOf(parsed), nil
}

// DateOf extracts the calendar date of ts in its own location.
func DateOf(ts time.Time) Date {
	year, month, day := ts.Date()
	return Date{Year: year, Month: month, Day: day}
}

// Compare orders two dates: -1 when d is earlier than other, 0 when equal,
// +1 when later.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(int(d.Month) - int(other.Month))
	default:
		return sign(d.Day - other.Day)
	}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}

// Range is an inclusive pair of optional date bounds.
type Range struct {
	Start *Date
	End   *Date
}

// New parses the optional start and end strings into a Range. Empty strings
// leave the corresponding side unbounded. An inverted pair is a validation
// fault.
func New(start, end string) (Range, error) {
	var r Range
	if start != "" {
		d, err := ParseDate(start)
		if err != nil {
			return Range{}, err
		}
		r.Start = &d
	}
	if end != "" {
		d, err := ParseDate(end)
		if err != nil {
			return Range{}, err
		}
		r.End = &d
	}
	if r.Start != nil && r.End != nil && r.Start.Compare(*r.End) > 0 {
		return Range{}, faults.Wrap(faults.ErrValidation, "dates", "order",
			fmt.Sprintf("start date %s is after end date %s", r.Start, r.End), nil)
	}
	return r, nil
}

// Contains reports whether the calendar date of ts (in its own location)
// falls within the range. Both bounds are inclusive.
func (r Range) Contains(ts time.Time) bool {
	d := DateOf(ts)
	if r.Start != nil && d.Compare(*r.Start) < 0 {
		return false
	}
	if r.End != nil && d.Compare(*r.End) > 0 {
		return false
	}
	return true
}

// Unbounded reports whether the range filters nothing.
func (r Range) Unbounded() bool {
	return r.Start == nil && r.End == nil
}

// String renders the range for logs and the run catalog.
func (r Range) String() string {
	switch {
	case r.Unbounded():
		return "all dates"
	case r.Start == nil:
		return fmt.Sprintf("..%s", r.End)
	case r.End == nil:
		return fmt.Sprintf("%s..", r.Start)
	default:
		return fmt.Sprintf("%s..%s", r.Start, r.End)
	}
}
