/*
validator.go - Candidate request validation

PURPOSE:
  Runs the full admission check for a candidate request, in a fixed order
  with short-circuit on the first failure:

    1. Date range well-formed (half day = exactly one date)
    2. Not backdated (unless the policy allows retroactive leave)
    3. Employee eligible (applicability window, active, department)
    4. No conflicting pending/approved request
    5. Enough balance for the chargeable days
    6. Documents attached when the policy requires them

  On success it returns the request with NumberOfDays populated from the
  chargeable-day counter - the same counter the UI uses for display, so the
  validated figure and the displayed figure cannot drift. Validation never
  mutates anything; a rejected candidate leaves the system untouched.
*/
package leave

import (
	"context"

	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/policy"
)

// =============================================================================
// VALIDATOR
// =============================================================================

type Validator struct {
	Policies  policy.Store
	Directory Directory
	Balances  *BalanceEngine
	Holidays  calendar.HolidayCalendar
	Index     *CalendarIndex

	// Now is injectable for tests; defaults to calendar.Today.
	Now func() calendar.Date
}

func NewValidator(policies policy.Store, directory Directory, balances *BalanceEngine, holidays calendar.HolidayCalendar, index *CalendarIndex) *Validator {
	return &Validator{
		Policies:  policies,
		Directory: directory,
		Balances:  balances,
		Holidays:  holidays,
		Index:     index,
		Now:       calendar.Today,
	}
}

// Validate checks a candidate and, on success, returns the request shape
// with NumberOfDays populated. Status, ID and AppliedOn are left for the
// workflow to assign.
func (v *Validator) Validate(ctx context.Context, c Candidate) (Request, error) {
	request, err := requestShape(c)
	if err != nil {
		return Request{}, err
	}

	today := v.Now()

	p, err := v.Policies.Policy(ctx, c.LeaveTypeID)
	if err != nil {
		return Request{}, err
	}

	// 2. Backdating
	if request.StartDate.Before(today) && !p.AllowRetroactive {
		return Request{}, ErrBackdatedRequest
	}

	// 3. Eligibility
	emp, err := v.Directory.Employee(ctx, c.EmployeeID)
	if err != nil {
		return Request{}, err
	}
	if !p.IsActive || !p.AppliesTo(emp.Department) {
		return Request{}, ErrNotEligible
	}
	if !policy.IsEligible(emp.HireDate, p, today) {
		return Request{}, ErrNotEligible
	}

	// 4. Overlap
	conflicts, err := v.Index.ActiveConflicts(ctx, request)
	if err != nil {
		return Request{}, err
	}
	if len(conflicts) > 0 {
		return Request{}, ErrOverlappingRequest
	}

	// 5. Balance
	holidays, err := calendar.SetInRange(ctx, v.Holidays, request.StartDate, request.EndDate)
	if err != nil {
		return Request{}, err
	}
	request.NumberOfDays = calendar.CountChargeableDays(request.StartDate, request.EndDate, holidays, request.IsHalfDay)
	if !request.NumberOfDays.IsPositive() {
		// Range holds only weekends/holidays, nothing to charge.
		return Request{}, ErrInvalidDateRange
	}

	balance, err := v.Balances.computeForEmployee(ctx, emp, c.LeaveTypeID, request.StartDate.Year())
	if err != nil {
		return Request{}, err
	}
	available := balance.Available()
	if request.NumberOfDays.GreaterThan(available) {
		return Request{}, &InsufficientBalanceError{
			EmployeeID: c.EmployeeID,
			Available:  available,
			Requested:  request.NumberOfDays,
			Shortfall:  request.NumberOfDays.Sub(available),
		}
	}

	// 6. Documents
	if p.RequiresDocuments && len(c.Attachments) == 0 {
		return Request{}, ErrMissingDocuments
	}

	return request, nil
}

// requestShape maps the tagged span onto the flat request record and
// rejects malformed ranges.
func requestShape(c Candidate) (Request, error) {
	r := Request{
		EmployeeID:  c.EmployeeID,
		LeaveTypeID: c.LeaveTypeID,
		Reason:      c.Reason,
		ContactInfo: c.ContactInfo,
		Attachments: c.Attachments,
	}

	switch span := c.Span.(type) {
	case HalfDay:
		if span.Date.IsZero() {
			return Request{}, ErrInvalidDateRange
		}
		if span.Period != FirstHalf && span.Period != SecondHalf {
			return Request{}, ErrInvalidDateRange
		}
		r.StartDate = span.Date
		r.EndDate = span.Date
		r.IsHalfDay = true
		r.HalfDayPeriod = span.Period
	case FullDays:
		if span.Start.IsZero() || span.End.IsZero() || span.End.Before(span.Start) {
			return Request{}, ErrInvalidDateRange
		}
		r.StartDate = span.Start
		r.EndDate = span.End
	default:
		return Request{}, ErrInvalidDateRange
	}

	return r, nil
}
