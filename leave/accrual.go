/*
accrual.go - Accrual math for the balance engine

PURPOSE:
  Turns a policy's accrual cadence into "days accrued so far this year".
  Annual and one-time policies grant the full entitlement on day one;
  monthly and quarterly policies release it period by period. Pro-rated
  policies grant only the remaining fraction of the hire year.

ROUNDING:
  Fractional accrual (20 days / 12 months after 5 months = 8.33) is floored
  to the nearest 0.5 day. Half days are the smallest unit the engine
  charges, so they are also the smallest unit it grants.
*/
package leave

import (
	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/policy"
)

var two = decimal.NewFromInt(2)

// floorToHalf rounds down to the nearest 0.5.
func floorToHalf(d decimal.Decimal) decimal.Decimal {
	return d.Mul(two).Floor().Div(two)
}

// accruedForYear returns the entitlement accrued in 'year' as of 'asOf',
// before carry-forward. The hire date bounds both pro-ration and the first
// accrual period.
//
// Upfront cadences (annually, one-time) grant the full entitlement from day
// one of the year regardless of 'asOf', so next year's leave can be booked
// this December. Periodic cadences release nothing ahead of the year: the
// per-period shares have not been earned yet.
func accruedForYear(p policy.LeavePolicy, hire calendar.Date, year int, asOf calendar.Date) decimal.Decimal {
	if year < hire.Year() {
		return decimal.Zero
	}

	switch p.Accrual {
	case policy.AccrueMonthly:
		return periodicAccrual(p, hire, year, asOf, 12, monthIndex)
	case policy.AccrueQuarterly:
		return periodicAccrual(p, hire, year, asOf, 4, quarterIndex)
	default: // annually, one-time
		return upfrontAccrual(p, hire, year)
	}
}

// upfrontAccrual grants the full entitlement at the start of the year,
// pro-rated linearly for the hire year when the policy says so.
func upfrontAccrual(p policy.LeavePolicy, hire calendar.Date, year int) decimal.Decimal {
	entitled := p.DaysAllowed
	if !p.ProRated || hire.Year() != year {
		return entitled
	}

	total := decimal.NewFromInt(int64(calendar.DaysInYear(year)))
	remaining := decimal.NewFromInt(int64(calendar.DaysBetween(hire, calendar.StartOfYear(year+1))))
	return floorToHalf(entitled.Mul(remaining).Div(total))
}

// periodicAccrual releases entitlement period by period. Each period's
// share becomes available at the period start. For hire-year employees the
// first period is the one containing the hire date.
func periodicAccrual(p policy.LeavePolicy, hire calendar.Date, year int, asOf calendar.Date, totalPeriods int, index func(calendar.Date) int) decimal.Decimal {
	firstPeriod := 0
	if hire.Year() == year {
		firstPeriod = index(hire)
	}

	lastPeriod := totalPeriods - 1
	if asOf.Year() == year {
		lastPeriod = index(asOf)
	} else if asOf.Year() < year {
		return decimal.Zero
	}

	elapsed := lastPeriod - firstPeriod + 1
	if elapsed <= 0 {
		return decimal.Zero
	}

	share := p.DaysAllowed.
		Mul(decimal.NewFromInt(int64(elapsed))).
		Div(decimal.NewFromInt(int64(totalPeriods)))
	return floorToHalf(share)
}

func monthIndex(d calendar.Date) int   { return int(d.Month()) - 1 }
func quarterIndex(d calendar.Date) int { return (int(d.Month()) - 1) / 3 }
