package policy_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/policy"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func days(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }

func daysPtr(n int) *decimal.Decimal {
	d := days(n)
	return &d
}

func annualPolicy() policy.LeavePolicy {
	return policy.LeavePolicy{
		LeaveTypeID: "annual",
		DaysAllowed: days(20),
		Accrual:     policy.AccrueAnnually,
		IsActive:    true,
		Department:  policy.DepartmentAll,
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate_NegativeDaysAllowed(t *testing.T) {
	p := annualPolicy()
	p.DaysAllowed = days(-1)

	if err := p.Validate(); !errors.Is(err, policy.ErrNegativeDaysAllowed) {
		t.Errorf("expected ErrNegativeDaysAllowed, got %v", err)
	}
}

func TestValidate_NegativeApplicability(t *testing.T) {
	p := annualPolicy()
	p.ApplicableAfterDays = -30

	if err := p.Validate(); !errors.Is(err, policy.ErrNegativeApplicability) {
		t.Errorf("expected ErrNegativeApplicability, got %v", err)
	}
}

func TestValidate_CarryForwardNeedsCap(t *testing.T) {
	p := annualPolicy()
	p.CarryForward = true
	p.MaxCarryForward = nil

	if err := p.Validate(); !errors.Is(err, policy.ErrCarryForwardCap) {
		t.Errorf("expected ErrCarryForwardCap, got %v", err)
	}
}

func TestValidate_CapCannotExceedEntitlement(t *testing.T) {
	p := annualPolicy()
	p.CarryForward = true
	p.MaxCarryForward = daysPtr(25)

	if err := p.Validate(); !errors.Is(err, policy.ErrCarryForwardCap) {
		t.Errorf("expected ErrCarryForwardCap, got %v", err)
	}
}

func TestValidate_CapWithoutCarryForwardRejected(t *testing.T) {
	p := annualPolicy()
	p.MaxCarryForward = daysPtr(5)

	if err := p.Validate(); err == nil {
		t.Error("expected error for cap on non-carry-forward policy")
	}
}

func TestValidate_WellFormedPolicy(t *testing.T) {
	p := annualPolicy()
	p.CarryForward = true
	p.MaxCarryForward = daysPtr(5)

	if err := p.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// =============================================================================
// ELIGIBILITY
// =============================================================================

func TestIsEligible_ApplicabilityWindow(t *testing.T) {
	// GIVEN: A policy applicable 90 days after hire
	p := annualPolicy()
	p.ApplicableAfterDays = 90
	hired := calendar.NewDate(2024, time.January, 1)

	// THEN: Not eligible at day 89, eligible from day 90
	if policy.IsEligible(hired, p, hired.AddDays(89)) {
		t.Error("expected not eligible one day before the window closes")
	}
	if !policy.IsEligible(hired, p, hired.AddDays(90)) {
		t.Error("expected eligible once the window has elapsed")
	}
}

func TestIsEligible_ZeroWindow(t *testing.T) {
	p := annualPolicy()
	hired := calendar.NewDate(2024, time.June, 1)

	if !policy.IsEligible(hired, p, hired) {
		t.Error("expected immediate eligibility for zero applicability window")
	}
}

func TestAppliesTo_DepartmentScoping(t *testing.T) {
	p := annualPolicy()
	p.Department = "engineering"

	if !p.AppliesTo("engineering") {
		t.Error("expected policy to apply to its own department")
	}
	if p.AppliesTo("sales") {
		t.Error("expected policy not to apply to other departments")
	}

	p.Department = policy.DepartmentAll
	if !p.AppliesTo("sales") {
		t.Error("expected all-department policy to apply everywhere")
	}
}

// =============================================================================
// STORE
// =============================================================================

func TestMemoryStore_PutValidatesAndVersions(t *testing.T) {
	ctx := context.Background()
	store := policy.NewMemory()

	stored, err := store.Put(ctx, annualPolicy())
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if stored.Version != 1 {
		t.Errorf("expected version 1, got %d", stored.Version)
	}

	stored.DaysAllowed = days(25)
	updated, err := store.Put(ctx, stored)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Version != 2 {
		t.Errorf("expected version 2 after update, got %d", updated.Version)
	}

	bad := annualPolicy()
	bad.DaysAllowed = days(-5)
	if _, err := store.Put(ctx, bad); err == nil {
		t.Error("expected invalid policy to be rejected")
	}
}

func TestMemoryStore_PolicyNotFound(t *testing.T) {
	store := policy.NewMemory()
	if _, err := store.Policy(context.Background(), "missing"); !errors.Is(err, policy.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
