/*
Package factory provides JSON to Go policy conversion and default seeds.

PURPOSE:
  Converts JSON policy definitions into policy.LeavePolicy values. This
  enables policy configuration without code changes - HR can define leave
  types in JSON, and the factory creates the proper Go structs. Also
  ships the standard policy set and default holidays used to bootstrap
  a fresh database.

WHY JSON?
  - Non-developers can modify policies
  - Easy integration with admin UI
  - Version control for policy definitions
  - Database storage of policy configs

JSON SCHEMA:
  {
    "leave_type_id": "annual",
    "days_allowed": 20,
    "accrual": "annually",
    "carry_forward": true,
    "max_carry_forward": 5,
    "pro_rated": true,
    "applicable_after_days": 90,
    "requires_approval": true,
    "requires_documents": false,
    "allow_retroactive": false,
    "department": "all"
  }

USAGE:
  factory := NewPolicyFactory()
  p, err := factory.ParsePolicy(jsonString)

  // Bootstrap a fresh store with the standard set
  err = factory.SeedDefaults(ctx, policyStore, holidayStore)

SEE ALSO:
  - policy/policy.go: LeavePolicy type definition
  - cmd/server/main.go: Seeds defaults on first run
*/
package factory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/policy"
)

// =============================================================================
// JSON POLICY PARSING
// =============================================================================

// PolicyJSON is the external JSON shape of a leave policy.
type PolicyJSON struct {
	LeaveTypeID         string   `json:"leave_type_id"`
	DaysAllowed         float64  `json:"days_allowed"`
	Accrual             string   `json:"accrual"`
	CarryForward        bool     `json:"carry_forward"`
	MaxCarryForward     *float64 `json:"max_carry_forward,omitempty"`
	ProRated            bool     `json:"pro_rated"`
	ApplicableAfterDays int      `json:"applicable_after_days"`
	RequiresApproval    *bool    `json:"requires_approval,omitempty"`
	RequiresDocuments   bool     `json:"requires_documents"`
	AllowRetroactive    bool     `json:"allow_retroactive"`
	IsActive            *bool    `json:"is_active,omitempty"`
	Department          string   `json:"department,omitempty"`
}

// PolicyFactory converts JSON policy configs to domain policies.
type PolicyFactory struct{}

// NewPolicyFactory creates a new policy factory.
func NewPolicyFactory() *PolicyFactory {
	return &PolicyFactory{}
}

// ParsePolicy converts a JSON policy definition to a LeavePolicy.
// Missing optional fields default to: requires_approval true, is_active
// true, department "all".
func (f *PolicyFactory) ParsePolicy(configJSON string) (policy.LeavePolicy, error) {
	var cfg PolicyJSON
	if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
		return policy.LeavePolicy{}, fmt.Errorf("invalid policy JSON: %w", err)
	}
	if cfg.LeaveTypeID == "" {
		return policy.LeavePolicy{}, fmt.Errorf("policy missing leave_type_id")
	}

	accrual := policy.AccrualRate(cfg.Accrual)
	switch accrual {
	case policy.AccrueAnnually, policy.AccrueMonthly, policy.AccrueQuarterly, policy.AccrueOneTime:
	case "":
		accrual = policy.AccrueAnnually
	default:
		return policy.LeavePolicy{}, fmt.Errorf("unknown accrual rate %q", cfg.Accrual)
	}

	p := policy.LeavePolicy{
		LeaveTypeID:         policy.LeaveTypeID(cfg.LeaveTypeID),
		DaysAllowed:         decimal.NewFromFloat(cfg.DaysAllowed),
		Accrual:             accrual,
		CarryForward:        cfg.CarryForward,
		ProRated:            cfg.ProRated,
		ApplicableAfterDays: cfg.ApplicableAfterDays,
		RequiresApproval:    true,
		RequiresDocuments:   cfg.RequiresDocuments,
		AllowRetroactive:    cfg.AllowRetroactive,
		IsActive:            true,
		Department:          cfg.Department,
	}
	if cfg.MaxCarryForward != nil {
		cap := decimal.NewFromFloat(*cfg.MaxCarryForward)
		p.MaxCarryForward = &cap
	}
	if cfg.RequiresApproval != nil {
		p.RequiresApproval = *cfg.RequiresApproval
	}
	if cfg.IsActive != nil {
		p.IsActive = *cfg.IsActive
	}
	if p.Department == "" {
		p.Department = policy.DepartmentAll
	}

	if err := p.Validate(); err != nil {
		return policy.LeavePolicy{}, err
	}
	return p, nil
}

// =============================================================================
// STANDARD POLICY SET
// =============================================================================

// StandardPolicies returns the default leave types for a new installation.
func StandardPolicies() []policy.LeavePolicy {
	carryAnnual := decimal.NewFromInt(5)
	return []policy.LeavePolicy{
		{
			LeaveTypeID:         "annual",
			DaysAllowed:         decimal.NewFromInt(20),
			Accrual:             policy.AccrueMonthly,
			CarryForward:        true,
			MaxCarryForward:     &carryAnnual,
			ProRated:            true,
			ApplicableAfterDays: 90,
			RequiresApproval:    true,
			IsActive:            true,
			Department:          policy.DepartmentAll,
		},
		{
			LeaveTypeID:       "sick",
			DaysAllowed:       decimal.NewFromInt(10),
			Accrual:           policy.AccrueAnnually,
			RequiresApproval:  true,
			RequiresDocuments: true,
			AllowRetroactive:  true,
			IsActive:          true,
			Department:        policy.DepartmentAll,
		},
		{
			LeaveTypeID:      "casual",
			DaysAllowed:      decimal.NewFromInt(7),
			Accrual:          policy.AccrueQuarterly,
			RequiresApproval: true,
			IsActive:         true,
			Department:       policy.DepartmentAll,
		},
		{
			LeaveTypeID:         "maternity",
			DaysAllowed:         decimal.NewFromInt(90),
			Accrual:             policy.AccrueOneTime,
			ApplicableAfterDays: 180,
			RequiresApproval:    true,
			RequiresDocuments:   true,
			IsActive:            true,
			Department:          policy.DepartmentAll,
		},
		{
			LeaveTypeID:      "unpaid",
			DaysAllowed:      decimal.NewFromInt(30),
			Accrual:          policy.AccrueOneTime,
			RequiresApproval: true,
			IsActive:         true,
			Department:       policy.DepartmentAll,
		},
	}
}

// StandardLeaveTypes returns the reference entities behind StandardPolicies.
func StandardLeaveTypes() []policy.LeaveType {
	return []policy.LeaveType{
		{ID: "annual", Name: "Annual Leave", Category: policy.CategoryPaid},
		{ID: "sick", Name: "Sick Leave", Category: policy.CategoryMedical},
		{ID: "casual", Name: "Casual Leave", Category: policy.CategoryPaid},
		{ID: "maternity", Name: "Maternity Leave", Category: policy.CategoryMedical},
		{ID: "unpaid", Name: "Unpaid Leave", Category: policy.CategoryUnpaid},
	}
}

// DefaultHolidays returns common US holidays for the given year.
func DefaultHolidays(year int) []calendar.Holiday {
	fixed := []struct {
		month time.Month
		day   int
		name  string
	}{
		{time.January, 1, "New Year's Day"},
		{time.July, 4, "Independence Day"},
		{time.November, 11, "Veterans Day"},
		{time.December, 25, "Christmas Day"},
	}

	holidays := make([]calendar.Holiday, 0, len(fixed))
	for _, f := range fixed {
		date := calendar.NewDate(year, f.month, f.day)
		holidays = append(holidays, calendar.Holiday{
			ID:   fmt.Sprintf("%s-%s", date, slug(f.name)),
			Date: date,
			Name: f.name,
		})
	}
	return holidays
}

func slug(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z':
			out = append(out, c+'a'-'A')
		case c >= 'a' && c <= 'z' || c >= '0' && c <= '9':
			out = append(out, c)
		case c == ' ':
			out = append(out, '-')
		}
	}
	return string(out)
}

// =============================================================================
// SEEDING
// =============================================================================

// HolidaySink accepts holiday writes during seeding.
type HolidaySink interface {
	PutHoliday(ctx context.Context, h calendar.Holiday) error
}

// TypeRegistrar is implemented by stores that keep leave type reference
// entities alongside policies.
type TypeRegistrar interface {
	PutType(t policy.LeaveType)
}

// SeedDefaults writes the standard policy set and this year's default
// holidays. Existing policies are overwritten (their version bumps);
// existing holidays are left alone.
func (f *PolicyFactory) SeedDefaults(ctx context.Context, policies policy.Store, holidays HolidaySink) error {
	for _, p := range StandardPolicies() {
		if _, err := policies.Put(ctx, p); err != nil {
			return fmt.Errorf("seed policy %s: %w", p.LeaveTypeID, err)
		}
	}
	if registrar, ok := policies.(TypeRegistrar); ok {
		for _, t := range StandardLeaveTypes() {
			registrar.PutType(t)
		}
	}
	if holidays == nil {
		return nil
	}
	year := calendar.Today().Year()
	for _, h := range DefaultHolidays(year) {
		if err := holidays.PutHoliday(ctx, h); err != nil {
			return fmt.Errorf("seed holiday %s: %w", h.Name, err)
		}
	}
	return nil
}
