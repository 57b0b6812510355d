/*
store.go - Persistence interface for the request set

PURPOSE:
  The request set is the authoritative record the whole engine derives
  from: balances are aggregations over it, overlap checks are range queries
  against it, and the calendar index is a read-only projection of it.

WRITE CONTRACT:
  Requests are inserted once and then only change status. UpdateStatus is a
  compare-and-swap on the current status: the write succeeds only if the
  stored status still equals 'from', which is what makes each workflow
  transition all-or-nothing even under concurrent callers. A lost race
  surfaces as ErrConflict, not a partial write.

IMPLEMENTATIONS:
  - leave/store/memory.go: In-memory, for tests and development
  - store/sqlite/sqlite.go: SQLite-backed, for production
*/
package leave

import (
	"context"
	"time"

	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/policy"
)

// =============================================================================
// REQUEST STORE
// =============================================================================

// Action records who performed a transition, when, and why.
type Action struct {
	ActorID string
	At      time.Time
	Comment string
}

// Filter narrows range queries. Zero fields match everything.
type Filter struct {
	EmployeeID  string
	LeaveTypeID policy.LeaveTypeID
	Statuses    []Status
}

// Matches reports whether a request passes the filter.
func (f Filter) Matches(r Request) bool {
	if f.EmployeeID != "" && r.EmployeeID != f.EmployeeID {
		return false
	}
	if f.LeaveTypeID != "" && r.LeaveTypeID != f.LeaveTypeID {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if r.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// RequestStore persists leave requests.
type RequestStore interface {
	// Insert stores a new request. The id must be unique.
	Insert(ctx context.Context, r Request) error

	// Get returns a request by id, or ErrRequestNotFound.
	Get(ctx context.Context, id RequestID) (Request, error)

	// UpdateStatus transitions a request from 'from' to 'to', recording the
	// action trail. Returns ErrConflict if the stored status is no longer
	// 'from', ErrRequestNotFound if the id does not exist. The returned
	// request reflects the committed state.
	UpdateStatus(ctx context.Context, id RequestID, from, to Status, action Action) (Request, error)

	// ByEmployee returns all requests for an employee, ordered by start date.
	ByEmployee(ctx context.Context, employeeID string) ([]Request, error)

	// InRange returns requests whose [StartDate, EndDate] intersects
	// [from, to], filtered, ordered by start date.
	InRange(ctx context.Context, from, to calendar.Date, f Filter) ([]Request, error)

	// ByStatus returns all requests in a status, ordered by applied-on time.
	ByStatus(ctx context.Context, s Status) ([]Request, error)
}
