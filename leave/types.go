/*
Package leave implements the leave management engine: balance accounting
derived from the request history, request validation, and the approval
workflow state machine.

PURPOSE:
  Everything that decides how many days a request consumes, whether an
  employee can take it, and how the request moves through its lifecycle
  lives here. Balance is never stored - it is always derived from policy
  plus the authoritative request set, which makes the "release on
  reject/cancel" rule automatic instead of a decrement someone can forget.

KEY CONCEPTS IN THIS FILE (types.go):
  - Request: A leave request with its lifecycle status
  - Span: Tagged date coverage - a full-day range or a single half day
  - Candidate: An unvalidated submission, before it becomes a Request
  - Employee / Directory: The external employee-directory collaborator

SEE ALSO:
  - balance.go: Derived balance engine
  - validator.go: Candidate validation
  - workflow.go: State machine and transition side effects
*/
package leave

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/policy"
)

// =============================================================================
// REQUEST - A leave request and its lifecycle status
// =============================================================================

type RequestID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether no further transition is allowed from s.
// Approved is terminal for approve/reject but still cancellable; the
// workflow handles that special case explicitly.
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusCancelled
}

type HalfDayPeriod string

const (
	FirstHalf  HalfDayPeriod = "first-half"
	SecondHalf HalfDayPeriod = "second-half"
)

// Attachment is document metadata supplied with a request. Content storage
// is an external collaborator; the engine only checks presence.
type Attachment struct {
	Name        string
	ContentType string
	Size        int64
}

// Request is a leave request. Invariants, maintained by the validator and
// workflow: EndDate >= StartDate; IsHalfDay implies StartDate == EndDate
// and NumberOfDays == 0.5; NumberOfDays > 0.
type Request struct {
	ID          RequestID
	EmployeeID  string
	LeaveTypeID policy.LeaveTypeID

	StartDate     calendar.Date
	EndDate       calendar.Date
	IsHalfDay     bool
	HalfDayPeriod HalfDayPeriod // set only when IsHalfDay

	NumberOfDays decimal.Decimal
	Reason       string
	ContactInfo  string

	Status    Status
	AppliedOn time.Time

	// Approval trail
	ActionedBy string
	ActionedOn *time.Time
	Comment    string

	Attachments []Attachment
}

// Active reports whether the request currently reserves balance.
func (r Request) Active() bool {
	return r.Status == StatusPending || r.Status == StatusApproved
}

// CoversDate reports whether the request includes the given calendar date.
func (r Request) CoversDate(d calendar.Date) bool {
	return r.StartDate.BeforeOrEqual(d) && d.BeforeOrEqual(r.EndDate)
}

// ConflictsWith reports whether two requests book the same time. Two
// half-day requests collide only on the same date and same half; any other
// combination collides whenever the date ranges intersect.
func (r Request) ConflictsWith(other Request) bool {
	if r.IsHalfDay && other.IsHalfDay {
		return r.StartDate.Equal(other.StartDate) && r.HalfDayPeriod == other.HalfDayPeriod
	}
	return calendar.RangesOverlap(r.StartDate, r.EndDate, other.StartDate, other.EndDate)
}

// =============================================================================
// SPAN - Tagged date coverage of a submission
// =============================================================================

// Span is the date coverage of a candidate request: either a full-day range
// or a single half day. The tagged shape removes the "half-day flag plus
// conditionally-meaningful period field" coupling from the submission API.
type Span interface {
	// Bounds returns the inclusive [start, end] date range covered.
	Bounds() (start, end calendar.Date)
	span()
}

// FullDays covers every chargeable day in [Start, End].
type FullDays struct {
	Start calendar.Date
	End   calendar.Date
}

func (f FullDays) Bounds() (calendar.Date, calendar.Date) { return f.Start, f.End }
func (FullDays) span()                                    {}

// HalfDay covers one half of a single date.
type HalfDay struct {
	Date   calendar.Date
	Period HalfDayPeriod
}

func (h HalfDay) Bounds() (calendar.Date, calendar.Date) { return h.Date, h.Date }
func (HalfDay) span()                                    {}

// Candidate is an unvalidated request submission.
type Candidate struct {
	EmployeeID  string
	LeaveTypeID policy.LeaveTypeID
	Span        Span
	Reason      string
	ContactInfo string
	Attachments []Attachment
}

// =============================================================================
// EMPLOYEE DIRECTORY - External collaborator
// =============================================================================

// Employee carries the directory fields the engine needs: hire date for
// eligibility and pro-ration, department for policy scoping.
type Employee struct {
	ID         string
	HireDate   calendar.Date
	Department string
}

// Directory is the external employee directory collaborator.
type Directory interface {
	Employee(ctx context.Context, id string) (Employee, error)
}

// StaticDirectory is an in-memory Directory for tests and development.
type StaticDirectory map[string]Employee

func (d StaticDirectory) Employee(_ context.Context, id string) (Employee, error) {
	e, ok := d[id]
	if !ok {
		return Employee{}, ErrEmployeeNotFound
	}
	return e, nil
}
