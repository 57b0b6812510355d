/*
Package policy defines leave types and the per-type leave policies.

PURPOSE:
  A LeavePolicy is the contract between the organization and employees for
  one leave type: how many days it grants, how they accrue over the year,
  what carries forward, and who the policy applies to. Policies are
  read-mostly configuration; every other part of the engine consults them
  but never mutates them.

KEY CONCEPTS:
  - LeaveType: Stable reference entity (annual, sick, casual, ...)
  - LeavePolicy: The complete ruleset for one leave type
  - AccrualRate: How entitlement becomes available over the year
  - Eligibility: The applicability window after hire

INVARIANTS (enforced by Validate):
  - DaysAllowed >= 0, ApplicableAfterDays >= 0
  - MaxCarryForward set if and only if CarryForward, and
    0 <= MaxCarryForward <= DaysAllowed

SEE ALSO:
  - store.go: Policy store interface and in-memory implementation
  - leave/balance.go: Consumes policies for accrual math
*/
package policy

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/calendar"
)

// =============================================================================
// LEAVE TYPE - Stable reference entity
// =============================================================================

type LeaveTypeID string

type Category string

const (
	CategoryPaid    Category = "paid"
	CategoryUnpaid  Category = "unpaid"
	CategoryMedical Category = "medical"
)

type LeaveType struct {
	ID       LeaveTypeID
	Name     string
	Category Category
}

// =============================================================================
// LEAVE POLICY - Rules for one leave type
// =============================================================================

// AccrualRate is the cadence at which entitlement becomes available.
type AccrualRate string

const (
	AccrueAnnually  AccrualRate = "annually"
	AccrueMonthly   AccrualRate = "monthly"
	AccrueQuarterly AccrualRate = "quarterly"
	AccrueOneTime   AccrualRate = "one-time"
)

// DepartmentAll applies a policy to every department.
const DepartmentAll = "all"

type LeavePolicy struct {
	LeaveTypeID LeaveTypeID
	DaysAllowed decimal.Decimal
	Accrual     AccrualRate

	// Carry-forward of unused balance into the next year.
	// MaxCarryForward is meaningful only when CarryForward is true.
	CarryForward    bool
	MaxCarryForward *decimal.Decimal

	// ProRated grants only a fraction of the entitlement in the hire year.
	ProRated bool

	// ApplicableAfterDays is the probation window: days since hire before
	// the employee may use this leave type.
	ApplicableAfterDays int

	RequiresApproval  bool
	RequiresDocuments bool

	// AllowRetroactive permits requests starting before "today".
	AllowRetroactive bool

	IsActive   bool
	Department string // DepartmentAll or a named department

	// Version increments on every administrative update.
	Version int
}

// Validation errors for administrative policy writes.
var (
	ErrNegativeDaysAllowed   = errors.New("days allowed must not be negative")
	ErrNegativeApplicability = errors.New("applicable-after days must not be negative")
	ErrCarryForwardCap       = errors.New("carry-forward cap must be set, non-negative, and not exceed days allowed")
)

// Validate checks the administrative invariants before a policy is stored.
func (p LeavePolicy) Validate() error {
	if p.LeaveTypeID == "" {
		return errors.New("leave type id is required")
	}
	if p.DaysAllowed.IsNegative() {
		return ErrNegativeDaysAllowed
	}
	if p.ApplicableAfterDays < 0 {
		return ErrNegativeApplicability
	}
	if p.CarryForward {
		if p.MaxCarryForward == nil || p.MaxCarryForward.IsNegative() || p.MaxCarryForward.GreaterThan(p.DaysAllowed) {
			return ErrCarryForwardCap
		}
	} else if p.MaxCarryForward != nil {
		return fmt.Errorf("carry-forward cap set on non-carry-forward policy %q", p.LeaveTypeID)
	}
	return nil
}

// AppliesTo reports whether the policy covers the given department.
func (p LeavePolicy) AppliesTo(department string) bool {
	return p.Department == DepartmentAll || p.Department == "" || p.Department == department
}

// IsEligible reports whether an employee hired on hireDate has cleared the
// policy's applicability window as of today.
func IsEligible(hireDate calendar.Date, p LeavePolicy, today calendar.Date) bool {
	return calendar.DaysBetween(hireDate, today) >= p.ApplicableAfterDays
}
