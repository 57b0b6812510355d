/*
balance.go - Derived balance engine

PURPOSE:
  Answers "how many days does this employee have?" for one leave type and
  year. There is no stored balance row anywhere: the figure is always
  derived from policy (entitlement + accrual cadence + carry-forward) and
  the authoritative request set (pending and approved requests count as
  used). That is what makes releasing a reservation on reject/cancel
  automatic - the rejected request simply stops matching the aggregation.

BALANCE COMPONENTS:
  Entitled:     Full-year entitlement from policy
  Accrued:      What has become available so far (incl. carry-forward)
  CarriedOver:  Portion of Accrued brought in from the prior year
  Used:         Sum of pending + approved request days this year
  Available():  Accrued - Used

CARRY-FORWARD:
  Prior-year unused balance is a recursive call to the same computation for
  year-1, capped by the policy's MaxCarryForward. Recursion bottoms out at
  the hire year.

CACHING:
  Computation is read-only, so results are cached per
  (employee, leaveType, year) and invalidated whenever a workflow
  transition touches that key. Entries also expire when the calendar day
  changes, since periodic accrual depends on "today".
*/
package leave

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/policy"
)

// =============================================================================
// BALANCE - Derived snapshot for employee + leave type + year
// =============================================================================

type Balance struct {
	EmployeeID  string
	LeaveTypeID policy.LeaveTypeID
	Year        int

	Entitled    decimal.Decimal
	Accrued     decimal.Decimal
	CarriedOver decimal.Decimal
	Used        decimal.Decimal
}

// Available returns the balance that can still be requested.
func (b Balance) Available() decimal.Decimal {
	return b.Accrued.Sub(b.Used)
}

// =============================================================================
// BALANCE ENGINE
// =============================================================================

type balanceKey struct {
	employeeID  string
	leaveTypeID policy.LeaveTypeID
	year        int
}

type cachedBalance struct {
	balance Balance
	asOf    calendar.Date
}

// BalanceEngine derives balances from policy and the request set.
type BalanceEngine struct {
	Policies  policy.Store
	Requests  RequestStore
	Directory Directory

	// Now is injectable for tests; defaults to calendar.Today.
	Now func() calendar.Date

	mu    sync.RWMutex
	cache map[balanceKey]cachedBalance
}

func NewBalanceEngine(policies policy.Store, requests RequestStore, directory Directory) *BalanceEngine {
	return &BalanceEngine{
		Policies:  policies,
		Requests:  requests,
		Directory: directory,
		Now:       calendar.Today,
		cache:     make(map[balanceKey]cachedBalance),
	}
}

// ComputeBalance derives the balance for an employee, leave type and year.
func (e *BalanceEngine) ComputeBalance(ctx context.Context, employeeID string, leaveTypeID policy.LeaveTypeID, year int) (Balance, error) {
	emp, err := e.Directory.Employee(ctx, employeeID)
	if err != nil {
		return Balance{}, err
	}
	return e.computeForEmployee(ctx, emp, leaveTypeID, year)
}

func (e *BalanceEngine) computeForEmployee(ctx context.Context, emp Employee, leaveTypeID policy.LeaveTypeID, year int) (Balance, error) {
	asOf := e.Now()
	key := balanceKey{emp.ID, leaveTypeID, year}

	e.mu.RLock()
	cached, ok := e.cache[key]
	e.mu.RUnlock()
	if ok && cached.asOf.Equal(asOf) {
		return cached.balance, nil
	}

	balance, err := e.compute(ctx, emp, leaveTypeID, year, asOf)
	if err != nil {
		return Balance{}, err
	}

	e.mu.Lock()
	e.cache[key] = cachedBalance{balance: balance, asOf: asOf}
	e.mu.Unlock()
	return balance, nil
}

func (e *BalanceEngine) compute(ctx context.Context, emp Employee, leaveTypeID policy.LeaveTypeID, year int, asOf calendar.Date) (Balance, error) {
	balance := Balance{
		EmployeeID:  emp.ID,
		LeaveTypeID: leaveTypeID,
		Year:        year,
	}

	p, err := e.Policies.Policy(ctx, leaveTypeID)
	if err != nil {
		return Balance{}, err
	}

	// Inactive or out-of-department policies grant nothing.
	if !p.IsActive || !p.AppliesTo(emp.Department) {
		return balance, nil
	}

	balance.Entitled = p.DaysAllowed
	balance.Accrued = accruedForYear(p, emp.HireDate, year, asOf)

	if p.CarryForward && year > emp.HireDate.Year() {
		carried, err := e.carryForward(ctx, emp, p, year)
		if err != nil {
			return Balance{}, err
		}
		balance.CarriedOver = carried
		balance.Accrued = balance.Accrued.Add(carried)
	}

	used, err := e.usedInYear(ctx, emp.ID, leaveTypeID, year)
	if err != nil {
		return Balance{}, err
	}
	balance.Used = used

	return balance, nil
}

// carryForward computes min(prior-year unused, cap). The prior-year figure
// is the same derivation one year back.
func (e *BalanceEngine) carryForward(ctx context.Context, emp Employee, p policy.LeavePolicy, year int) (decimal.Decimal, error) {
	prior, err := e.computeForEmployee(ctx, emp, p.LeaveTypeID, year-1)
	if err != nil {
		return decimal.Zero, err
	}

	unused := prior.Available()
	if !unused.IsPositive() {
		return decimal.Zero, nil
	}
	if p.MaxCarryForward != nil && unused.GreaterThan(*p.MaxCarryForward) {
		return *p.MaxCarryForward, nil
	}
	return unused, nil
}

// usedInYear sums the days of pending and approved requests. A request
// belongs to the year its start date falls in.
func (e *BalanceEngine) usedInYear(ctx context.Context, employeeID string, leaveTypeID policy.LeaveTypeID, year int) (decimal.Decimal, error) {
	requests, err := e.Requests.InRange(ctx, calendar.StartOfYear(year), calendar.EndOfYear(year), Filter{
		EmployeeID:  employeeID,
		LeaveTypeID: leaveTypeID,
		Statuses:    []Status{StatusPending, StatusApproved},
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("loading requests for %s/%s: %w", employeeID, leaveTypeID, err)
	}

	used := decimal.Zero
	for _, r := range requests {
		if r.StartDate.Year() != year {
			continue
		}
		used = used.Add(r.NumberOfDays)
	}
	return used, nil
}

// Invalidate drops cached balances for an employee + leave type. Future
// years are dropped too, since carry-forward chains forward.
func (e *BalanceEngine) Invalidate(employeeID string, leaveTypeID policy.LeaveTypeID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for key := range e.cache {
		if key.employeeID == employeeID && key.leaveTypeID == leaveTypeID {
			delete(e.cache, key)
		}
	}
}
