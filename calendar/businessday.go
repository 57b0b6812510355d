/*
businessday.go - Chargeable-day counting

PURPOSE:
  Computes how many leave days a date range actually consumes. Weekends and
  company holidays are free; a half-day request always charges exactly 0.5.
  This is the single source of truth for request sizing - validation and
  display both call it, so the two can never drift apart.

CONTRACT:
  CountChargeableDays(start, end, holidays, isHalfDay)
    - isHalfDay: returns 0.5; callers must pass start == end
    - end before start: returns 0 (callers reject this earlier)
    - otherwise: counts days in [start, end] that are neither Saturday,
      Sunday, nor in the holiday set

  Deterministic and side-effect free. Linear in range length, which is fine
  for the few-hundred-day ranges leave requests actually span.
*/
package calendar

import "github.com/shopspring/decimal"

var (
	zeroDays = decimal.Zero
	halfDay  = decimal.NewFromFloat(0.5)
	oneDay   = decimal.NewFromInt(1)
)

// HalfDayCharge is the fixed charge for a half-day request.
func HalfDayCharge() decimal.Decimal { return halfDay }

// CountChargeableDays returns the number of leave days charged for the
// inclusive range [start, end], excluding weekends and holidays.
func CountChargeableDays(start, end Date, holidays HolidaySet, isHalfDay bool) decimal.Decimal {
	if isHalfDay {
		return halfDay
	}
	if end.Before(start) {
		return zeroDays
	}

	count := zeroDays
	for d := start; d.BeforeOrEqual(end); d = d.AddDays(1) {
		if d.IsWeekend() {
			continue
		}
		if holidays.Contains(d) {
			continue
		}
		count = count.Add(oneDay)
	}
	return count
}
