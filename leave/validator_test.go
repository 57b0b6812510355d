package leave_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// ORDERED VALIDATION CHECKS
// =============================================================================

func TestValidate_EndBeforeStart(t *testing.T) {
	h := newHarness()
	h.addPolicy(annualPolicy20())

	_, err := h.validator.Validate(context.Background(), fullDays(date(2024, time.March, 8), date(2024, time.March, 4)))
	if !errors.Is(err, leave.ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestValidate_HalfDayNeedsValidPeriod(t *testing.T) {
	h := newHarness()
	h.addPolicy(annualPolicy20())

	c := leave.Candidate{
		EmployeeID:  "emp-1",
		LeaveTypeID: "annual",
		Span:        leave.HalfDay{Date: date(2024, time.March, 4)},
	}
	if _, err := h.validator.Validate(context.Background(), c); !errors.Is(err, leave.ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange for missing half-day period, got %v", err)
	}
}

func TestValidate_BackdatedRejectedByDefault(t *testing.T) {
	// Today is 2024-02-01; a January request is backdated.
	h := newHarness()
	h.addPolicy(annualPolicy20())

	_, err := h.validator.Validate(context.Background(), fullDays(date(2024, time.January, 15), date(2024, time.January, 16)))
	if !errors.Is(err, leave.ErrBackdatedRequest) {
		t.Errorf("expected ErrBackdatedRequest, got %v", err)
	}
}

func TestValidate_BackdatedAllowedWhenPolicyRetroactive(t *testing.T) {
	h := newHarness()
	p := annualPolicy20()
	p.AllowRetroactive = true
	h.addPolicy(p)

	r, err := h.validator.Validate(context.Background(), fullDays(date(2024, time.January, 15), date(2024, time.January, 16)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.NumberOfDays.Equal(days(2)) {
		t.Errorf("expected 2 days, got %v", r.NumberOfDays)
	}
}

func TestValidate_ProbationWindowNotCleared(t *testing.T) {
	// GIVEN: Policy applicable 180 days after hire, employee hired 30 days ago
	h := newHarness()
	p := annualPolicy20()
	p.ApplicableAfterDays = 180
	h.addPolicy(p)
	h.directory["emp-new"] = leave.Employee{
		ID:         "emp-new",
		HireDate:   date(2024, time.January, 2),
		Department: "engineering",
	}

	c := fullDays(date(2024, time.March, 4), date(2024, time.March, 5))
	c.EmployeeID = "emp-new"

	if _, err := h.validator.Validate(context.Background(), c); !errors.Is(err, leave.ErrNotEligible) {
		t.Errorf("expected ErrNotEligible, got %v", err)
	}
}

func TestValidate_InactivePolicyNotEligible(t *testing.T) {
	h := newHarness()
	p := annualPolicy20()
	p.IsActive = false
	h.addPolicy(p)

	_, err := h.validator.Validate(context.Background(), fullDays(date(2024, time.March, 4), date(2024, time.March, 5)))
	if !errors.Is(err, leave.ErrNotEligible) {
		t.Errorf("expected ErrNotEligible, got %v", err)
	}
}

func TestValidate_InsufficientBalanceCarriesShortfall(t *testing.T) {
	// GIVEN: Balance of 20 days
	// WHEN: Requesting 25 chargeable days (5 full weeks)
	// THEN: Rejected with shortfall = 5

	h := newHarness()
	h.addPolicy(annualPolicy20())

	// 2024-03-04 (Mon) .. 2024-04-05 (Fri): 5 full work weeks
	_, err := h.validator.Validate(context.Background(), fullDays(date(2024, time.March, 4), date(2024, time.April, 5)))
	if !errors.Is(err, leave.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	var shortfall *leave.InsufficientBalanceError
	if !errors.As(err, &shortfall) {
		t.Fatalf("expected InsufficientBalanceError, got %T", err)
	}
	if !shortfall.Shortfall.Equal(days(5)) {
		t.Errorf("expected shortfall 5, got %v", shortfall.Shortfall)
	}
	if !shortfall.Requested.Equal(days(25)) {
		t.Errorf("expected requested 25, got %v", shortfall.Requested)
	}
}

func TestValidate_DocumentsRequired(t *testing.T) {
	h := newHarness()
	p := annualPolicy20()
	p.LeaveTypeID = "sick"
	p.RequiresDocuments = true
	h.addPolicy(p)

	c := fullDays(date(2024, time.March, 4), date(2024, time.March, 5))
	c.LeaveTypeID = "sick"
	if _, err := h.validator.Validate(context.Background(), c); !errors.Is(err, leave.ErrMissingDocuments) {
		t.Errorf("expected ErrMissingDocuments, got %v", err)
	}

	c.Attachments = []leave.Attachment{{Name: "certificate.pdf", ContentType: "application/pdf"}}
	if _, err := h.validator.Validate(context.Background(), c); err != nil {
		t.Errorf("expected success with attachment, got %v", err)
	}
}

func TestValidate_WeekendOnlyRangeRejected(t *testing.T) {
	// Saturday-Sunday charges zero days; there is nothing to request.
	h := newHarness()
	h.addPolicy(annualPolicy20())

	_, err := h.validator.Validate(context.Background(), fullDays(date(2024, time.March, 9), date(2024, time.March, 10)))
	if !errors.Is(err, leave.ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange for weekend-only range, got %v", err)
	}
}

func TestValidate_PopulatesNumberOfDaysFromCalculator(t *testing.T) {
	// The validated figure must equal the calculator's output for the same
	// inputs - validation and display share one counter.
	h := newHarness()
	h.holidays = staticHolidays{{Date: date(2024, time.March, 6), Name: "Founders Day"}}
	h.validator.Holidays = h.holidays
	h.addPolicy(annualPolicy20())

	r, err := h.validator.Validate(context.Background(), fullDays(date(2024, time.March, 4), date(2024, time.March, 8)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := calendar.CountChargeableDays(
		r.StartDate, r.EndDate,
		calendar.NewHolidaySet([]calendar.Holiday{{Date: date(2024, time.March, 6)}}),
		r.IsHalfDay,
	)
	if !r.NumberOfDays.Equal(want) {
		t.Errorf("validator days %v != calculator days %v", r.NumberOfDays, want)
	}
	if !r.NumberOfDays.Equal(days(4)) {
		t.Errorf("expected 4 days (holiday excluded), got %v", r.NumberOfDays)
	}
}

func TestValidate_HalfDayChargesHalf(t *testing.T) {
	h := newHarness()
	h.addPolicy(annualPolicy20())

	c := leave.Candidate{
		EmployeeID:  "emp-1",
		LeaveTypeID: "annual",
		Span:        leave.HalfDay{Date: date(2024, time.March, 4), Period: leave.FirstHalf},
	}
	r, err := h.validator.Validate(context.Background(), c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.NumberOfDays.Equal(days(0.5)) {
		t.Errorf("expected 0.5 days, got %v", r.NumberOfDays)
	}
	if !r.StartDate.Equal(r.EndDate) {
		t.Error("half-day request must cover exactly one date")
	}
}
