/*
workflow.go - Request lifecycle state machine

PURPOSE:
  Governs the lifecycle of a leave request and the balance side effects of
  each transition:

    submit  -> pending   (balance reserved via the derived "used" sum)
    approve -> approved  (reservation confirmed; no balance change)
    reject  -> rejected  (reservation released)
    cancel  -> cancelled (reservation released; allowed from pending or
                          not-yet-started approved leave)

  Because balance is derived, "reserve" and "release" are not mutations -
  a request counts against balance exactly while its status is pending or
  approved, and stops counting the instant it leaves those states.

ATOMICITY:
  Each call executes as one unit against the store. Submit holds a
  per-employee lock across validation + insert so two concurrent submits
  cannot both pass the overlap/balance check and over-book the same days.
  Status changes go through the store's compare-and-swap, so a transition
  either fully commits or the caller gets ErrConflict/ErrInvalidTransition
  with nothing changed.
*/
package leave

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/leave-engine/calendar"
)

// =============================================================================
// WORKFLOW
// =============================================================================

type Workflow struct {
	Requests  RequestStore
	Validator *Validator
	Balances  *BalanceEngine

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewWorkflow(requests RequestStore, validator *Validator, balances *BalanceEngine) *Workflow {
	return &Workflow{
		Requests:  requests,
		Validator: validator,
		Balances:  balances,
		Now:       time.Now,
		locks:     make(map[string]*sync.Mutex),
	}
}

// employeeLock serializes submit/transition calls per employee.
func (w *Workflow) employeeLock(employeeID string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	lock, ok := w.locks[employeeID]
	if !ok {
		lock = &sync.Mutex{}
		w.locks[employeeID] = lock
	}
	return lock
}

// Submit validates a candidate and creates it in pending state. The
// pending request immediately reserves its days: the balance engine counts
// pending requests as used. On validation failure nothing is created.
func (w *Workflow) Submit(ctx context.Context, c Candidate) (Request, error) {
	lock := w.employeeLock(c.EmployeeID)
	lock.Lock()
	defer lock.Unlock()

	request, err := w.Validator.Validate(ctx, c)
	if err != nil {
		return Request{}, err
	}

	request.ID = RequestID(uuid.NewString())
	request.Status = StatusPending
	request.AppliedOn = w.Now()

	if err := w.Requests.Insert(ctx, request); err != nil {
		return Request{}, err
	}

	w.Balances.Invalidate(request.EmployeeID, request.LeaveTypeID)
	return request, nil
}

// Approve confirms a pending request. The reservation was already counted
// while pending, so approval changes no balance.
func (w *Workflow) Approve(ctx context.Context, id RequestID, approverID, comment string) (Request, error) {
	return w.transition(ctx, id, StatusApproved, approverID, comment, func(r Request) error {
		if r.Status != StatusPending {
			return &InvalidTransitionError{RequestID: id, From: r.Status, Attempted: "approve"}
		}
		return nil
	})
}

// Reject declines a pending request, releasing its reservation.
func (w *Workflow) Reject(ctx context.Context, id RequestID, approverID, comment string) (Request, error) {
	return w.transition(ctx, id, StatusRejected, approverID, comment, func(r Request) error {
		if r.Status != StatusPending {
			return &InvalidTransitionError{RequestID: id, From: r.Status, Attempted: "reject"}
		}
		return nil
	})
}

// Cancel withdraws a pending request, or an approved one that has not yet
// started. Approved leave whose start date has passed was already taken
// and cannot be cancelled.
func (w *Workflow) Cancel(ctx context.Context, id RequestID, actorID string) (Request, error) {
	return w.transition(ctx, id, StatusCancelled, actorID, "", func(r Request) error {
		if r.Status.IsTerminal() {
			return &InvalidTransitionError{RequestID: id, From: r.Status, Attempted: "cancel"}
		}
		if r.Status == StatusApproved && r.StartDate.Before(calendar.FromTime(w.Now())) {
			return ErrPastApprovedCancellation
		}
		return nil
	})
}

// transition loads the request, checks the transition under the employee
// lock, and commits it via compare-and-swap on the current status. A lost
// CAS race (an external writer on the same store) is retried once with
// fresh state; a second conflict surfaces as ErrConflict.
func (w *Workflow) transition(ctx context.Context, id RequestID, to Status, actorID, comment string, check func(Request) error) (Request, error) {
	current, err := w.Requests.Get(ctx, id)
	if err != nil {
		return Request{}, err
	}

	lock := w.employeeLock(current.EmployeeID)
	lock.Lock()
	defer lock.Unlock()

	for attempt := 0; ; attempt++ {
		// Re-read under the lock; another transition may have won the race.
		current, err = w.Requests.Get(ctx, id)
		if err != nil {
			return Request{}, err
		}
		if err := check(current); err != nil {
			return Request{}, err
		}

		updated, err := w.Requests.UpdateStatus(ctx, id, current.Status, to, Action{
			ActorID: actorID,
			At:      w.Now(),
			Comment: comment,
		})
		if errors.Is(err, ErrConflict) && attempt == 0 {
			continue
		}
		if err != nil {
			return Request{}, err
		}

		w.Balances.Invalidate(updated.EmployeeID, updated.LeaveTypeID)
		return updated, nil
	}
}
