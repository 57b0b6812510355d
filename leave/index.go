/*
index.go - Read-only calendar projection over the request set

PURPOSE:
  Answers "who is out on this date / in this range?" for team calendars and
  for the validator's overlap check. The index is backed directly by the
  request store rather than a materialized copy, so every workflow
  transition is visible immediately - a cancelled request can never satisfy
  a stale overlap check.
*/
package leave

import (
	"context"

	"github.com/warp/leave-engine/calendar"
)

// =============================================================================
// CALENDAR INDEX
// =============================================================================

type CalendarIndex struct {
	Requests RequestStore
}

func NewCalendarIndex(requests RequestStore) *CalendarIndex {
	return &CalendarIndex{Requests: requests}
}

// LeavesOnDate returns requests covering the given date, filtered.
func (ci *CalendarIndex) LeavesOnDate(ctx context.Context, date calendar.Date, f Filter) ([]Request, error) {
	return ci.Requests.InRange(ctx, date, date, f)
}

// LeavesInRange returns requests intersecting [from, to], filtered.
func (ci *CalendarIndex) LeavesInRange(ctx context.Context, from, to calendar.Date, f Filter) ([]Request, error) {
	return ci.Requests.InRange(ctx, from, to, f)
}

// ActiveConflicts returns the employee's pending or approved requests that
// book the same time as the candidate request.
func (ci *CalendarIndex) ActiveConflicts(ctx context.Context, candidate Request) ([]Request, error) {
	existing, err := ci.Requests.InRange(ctx, candidate.StartDate, candidate.EndDate, Filter{
		EmployeeID: candidate.EmployeeID,
		Statuses:   []Status{StatusPending, StatusApproved},
	})
	if err != nil {
		return nil, err
	}

	var conflicts []Request
	for _, r := range existing {
		if r.ID == candidate.ID {
			continue
		}
		if candidate.ConflictsWith(r) {
			conflicts = append(conflicts, r)
		}
	}
	return conflicts, nil
}
