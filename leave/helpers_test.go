package leave_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/leave/store"
	"github.com/warp/leave-engine/policy"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func days(n float64) decimal.Decimal { return decimal.NewFromFloat(n) }

func daysPtr(n float64) *decimal.Decimal {
	d := days(n)
	return &d
}

func date(year int, month time.Month, day int) calendar.Date {
	return calendar.NewDate(year, month, day)
}

// staticHolidays is a fixed HolidayCalendar for tests.
type staticHolidays []calendar.Holiday

func (s staticHolidays) HolidaysInRange(_ context.Context, from, to calendar.Date) ([]calendar.Holiday, error) {
	var result []calendar.Holiday
	for _, h := range s {
		if from.BeforeOrEqual(h.Date) && h.Date.BeforeOrEqual(to) {
			result = append(result, h)
		}
	}
	return result, nil
}

// harness wires the whole engine over in-memory stores with a fixed clock.
type harness struct {
	policies  *policy.Memory
	requests  *store.Memory
	directory leave.StaticDirectory
	holidays  staticHolidays
	balances  *leave.BalanceEngine
	validator *leave.Validator
	index     *leave.CalendarIndex
	workflow  *leave.Workflow
}

// newHarness pins "today" to 2024-02-01 and hires emp-1 on 2022-01-10.
func newHarness() *harness {
	h := &harness{
		policies: policy.NewMemory(),
		requests: store.NewMemory(),
		directory: leave.StaticDirectory{
			"emp-1": {ID: "emp-1", HireDate: date(2022, time.January, 10), Department: "engineering"},
			"emp-2": {ID: "emp-2", HireDate: date(2022, time.January, 10), Department: "sales"},
		},
	}

	today := date(2024, time.February, 1)
	now := time.Date(2024, time.February, 1, 9, 0, 0, 0, time.UTC)

	h.balances = leave.NewBalanceEngine(h.policies, h.requests, h.directory)
	h.balances.Now = func() calendar.Date { return today }

	h.index = leave.NewCalendarIndex(h.requests)
	h.validator = leave.NewValidator(h.policies, h.directory, h.balances, h.holidays, h.index)
	h.validator.Now = func() calendar.Date { return today }

	h.workflow = leave.NewWorkflow(h.requests, h.validator, h.balances)
	h.workflow.Now = func() time.Time { return now }

	return h
}

func (h *harness) setToday(d calendar.Date) {
	h.balances.Now = func() calendar.Date { return d }
	h.validator.Now = func() calendar.Date { return d }
	h.workflow.Now = func() time.Time {
		return time.Date(d.Year(), d.Month(), d.Day(), 9, 0, 0, 0, time.UTC)
	}
}

func (h *harness) addPolicy(p policy.LeavePolicy) {
	if _, err := h.policies.Put(context.Background(), p); err != nil {
		panic(err)
	}
}

func annualPolicy20() policy.LeavePolicy {
	return policy.LeavePolicy{
		LeaveTypeID: "annual",
		DaysAllowed: days(20),
		Accrual:     policy.AccrueAnnually,
		IsActive:    true,
		Department:  policy.DepartmentAll,
	}
}

func fullDays(start, end calendar.Date) leave.Candidate {
	return leave.Candidate{
		EmployeeID:  "emp-1",
		LeaveTypeID: "annual",
		Span:        leave.FullDays{Start: start, End: end},
		Reason:      "vacation",
	}
}
