/*
Package calendar provides calendar-date arithmetic and chargeable-day counting.

PURPOSE:
  Leave is accounted in calendar dates, never in instants. A request for
  "2024-03-10" must mean day 10 for every caller regardless of their time
  zone, so this package normalizes everything to midnight UTC and serializes
  dates as plain "YYYY-MM-DD" strings.

KEY CONCEPTS IN THIS FILE (date.go):
  - Date: A calendar day (no time-of-day, no zone)
  - Comparison and arithmetic helpers used by every other package

SEE ALSO:
  - businessday.go: Chargeable-day counting over a date range
  - holiday.go: Holiday calendar used for exclusion
*/
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DATE - A calendar day, normalized to midnight UTC
// =============================================================================

// Date is a calendar date with day granularity. The zero value is "no date".
type Date struct {
	Time time.Time
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates a timestamp to its calendar date, dropping zone offset
// effects by reading the wall-clock date.
func FromTime(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return FromTime(time.Now())
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool         { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool         { return d.Time.Equal(other.Time) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return FromTime(d.Time.AddDate(0, 0, n)) }

// Properties
func (d Date) Year() int             { return d.Time.Year() }
func (d Date) Month() time.Month     { return d.Time.Month() }
func (d Date) Day() int              { return d.Time.Day() }
func (d Date) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Date) IsZero() bool          { return d.Time.IsZero() }

func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) String() string {
	return d.Time.Format(dateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes from "YYYY-MM-DD".
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// DATE UTILITIES
// =============================================================================

// DaysBetween returns the whole days from 'from' to 'to' (negative if to < from).
func DaysBetween(from, to Date) int {
	return int(to.Time.Sub(from.Time).Hours() / 24)
}

func StartOfYear(year int) Date { return NewDate(year, time.January, 1) }
func EndOfYear(year int) Date   { return NewDate(year, time.December, 31) }

// DaysInYear returns 365 or 366.
func DaysInYear(year int) int {
	return DaysBetween(StartOfYear(year), StartOfYear(year+1))
}

// RangesOverlap reports whether [aStart,aEnd] and [bStart,bEnd] intersect.
// Both ranges are inclusive.
func RangesOverlap(aStart, aEnd, bStart, bEnd Date) bool {
	return aStart.BeforeOrEqual(bEnd) && bStart.BeforeOrEqual(aEnd)
}
