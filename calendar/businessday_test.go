package calendar_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/calendar"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func d(year int, month time.Month, day int) calendar.Date {
	return calendar.NewDate(year, month, day)
}

func days(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

func holidaySet(dates ...calendar.Date) calendar.HolidaySet {
	holidays := make([]calendar.Holiday, len(dates))
	for i, date := range dates {
		holidays[i] = calendar.Holiday{Date: date}
	}
	return calendar.NewHolidaySet(holidays)
}

// =============================================================================
// CHARGEABLE DAY COUNTING
// =============================================================================

func TestCountChargeableDays_FullWorkWeek(t *testing.T) {
	// GIVEN: Monday through Friday, no holidays
	// WHEN: Counting chargeable days
	// THEN: All 5 days are charged

	got := calendar.CountChargeableDays(d(2024, time.March, 4), d(2024, time.March, 8), nil, false)
	if !got.Equal(days(5)) {
		t.Errorf("expected 5 days, got %v", got)
	}
}

func TestCountChargeableDays_SpansWeekend(t *testing.T) {
	// GIVEN: Friday through Monday
	// WHEN: Counting chargeable days
	// THEN: Saturday and Sunday are free, only 2 days charged

	got := calendar.CountChargeableDays(d(2024, time.March, 8), d(2024, time.March, 11), nil, false)
	if !got.Equal(days(2)) {
		t.Errorf("expected 2 days, got %v", got)
	}
}

func TestCountChargeableDays_ExcludesHolidays(t *testing.T) {
	// GIVEN: Monday-Friday with a holiday on Wednesday
	// WHEN: Counting chargeable days
	// THEN: The holiday is not charged

	holidays := holidaySet(d(2024, time.March, 6))
	got := calendar.CountChargeableDays(d(2024, time.March, 4), d(2024, time.March, 8), holidays, false)
	if !got.Equal(days(4)) {
		t.Errorf("expected 4 days, got %v", got)
	}
}

func TestCountChargeableDays_WeekendHolidayNotDoubleCounted(t *testing.T) {
	// A holiday falling on a Saturday changes nothing.
	holidays := holidaySet(d(2024, time.March, 9))
	got := calendar.CountChargeableDays(d(2024, time.March, 8), d(2024, time.March, 11), holidays, false)
	if !got.Equal(days(2)) {
		t.Errorf("expected 2 days, got %v", got)
	}
}

func TestCountChargeableDays_HalfDay(t *testing.T) {
	got := calendar.CountChargeableDays(d(2024, time.March, 4), d(2024, time.March, 4), nil, true)
	if !got.Equal(calendar.HalfDayCharge()) {
		t.Errorf("expected 0.5 days, got %v", got)
	}
}

func TestCountChargeableDays_EndBeforeStart(t *testing.T) {
	got := calendar.CountChargeableDays(d(2024, time.March, 8), d(2024, time.March, 4), nil, false)
	if !got.IsZero() {
		t.Errorf("expected 0 days, got %v", got)
	}
}

func TestCountChargeableDays_SingleDay(t *testing.T) {
	got := calendar.CountChargeableDays(d(2024, time.March, 4), d(2024, time.March, 4), nil, false)
	if !got.Equal(days(1)) {
		t.Errorf("expected 1 day, got %v", got)
	}
}

func TestCountChargeableDays_PlainRangeEqualsCalendarLength(t *testing.T) {
	// GIVEN: A range with no weekends and no holidays in it
	// THEN: Chargeable days == calendar days, inclusive

	start := d(2024, time.March, 4) // Monday
	end := d(2024, time.March, 8)   // Friday
	want := calendar.DaysBetween(start, end) + 1

	got := calendar.CountChargeableDays(start, end, nil, false)
	if !got.Equal(days(want)) {
		t.Errorf("expected %d days, got %v", want, got)
	}
}

func TestCountChargeableDays_MonotonicInRangeWidth(t *testing.T) {
	// Widening the range can never reduce the charge.
	start := d(2024, time.February, 1)
	holidays := holidaySet(d(2024, time.February, 14), d(2024, time.March, 6))

	prev := calendar.CountChargeableDays(start, start, holidays, false)
	for n := 1; n <= 60; n++ {
		cur := calendar.CountChargeableDays(start, start.AddDays(n), holidays, false)
		if cur.LessThan(prev) {
			t.Fatalf("count decreased from %v to %v at width %d", prev, cur, n)
		}
		prev = cur
	}
}

// =============================================================================
// DATE BASICS
// =============================================================================

func TestDate_JSONRoundTrip(t *testing.T) {
	date := d(2024, time.March, 10)
	raw, err := date.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"2024-03-10"` {
		t.Errorf("expected \"2024-03-10\", got %s", raw)
	}

	var back calendar.Date
	if err := back.UnmarshalJSON(raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(date) {
		t.Errorf("round trip changed the date: %v -> %v", date, back)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	if _, err := calendar.ParseDate("10/03/2024"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

func TestRangesOverlap(t *testing.T) {
	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     calendar.Date
		want                           bool
	}{
		{"disjoint", d(2024, 3, 4), d(2024, 3, 8), d(2024, 3, 11), d(2024, 3, 15), false},
		{"touching edge", d(2024, 3, 4), d(2024, 3, 8), d(2024, 3, 8), d(2024, 3, 12), true},
		{"contained", d(2024, 3, 4), d(2024, 3, 8), d(2024, 3, 6), d(2024, 3, 6), true},
		{"reversed order", d(2024, 3, 11), d(2024, 3, 15), d(2024, 3, 4), d(2024, 3, 8), false},
	}
	for _, tc := range cases {
		if got := calendar.RangesOverlap(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}
