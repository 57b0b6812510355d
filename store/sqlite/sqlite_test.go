package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/policy"
	"github.com/warp/leave-engine/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func date(year int, month time.Month, day int) calendar.Date {
	return calendar.NewDate(year, month, day)
}

func sampleRequest(id string) leave.Request {
	return leave.Request{
		ID:           leave.RequestID(id),
		EmployeeID:   "emp-1",
		LeaveTypeID:  "annual",
		StartDate:    date(2024, time.March, 4),
		EndDate:      date(2024, time.March, 8),
		NumberOfDays: decimal.NewFromInt(5),
		Reason:       "vacation",
		Status:       leave.StatusPending,
		AppliedOn:    time.Date(2024, time.February, 1, 9, 0, 0, 0, time.UTC),
		Attachments:  []leave.Attachment{{Name: "itinerary.pdf", ContentType: "application/pdf", Size: 1024}},
	}
}

// =============================================================================
// REQUEST PERSISTENCE
// =============================================================================

func TestRequestRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := sampleRequest("req-1")
	if err := store.Insert(ctx, want); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := store.Get(ctx, "req-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.StartDate.Equal(want.StartDate) || !got.EndDate.Equal(want.EndDate) {
		t.Errorf("dates changed in round trip: %v..%v", got.StartDate, got.EndDate)
	}
	if !got.NumberOfDays.Equal(want.NumberOfDays) {
		t.Errorf("numberOfDays changed: %v", got.NumberOfDays)
	}
	if got.Status != leave.StatusPending {
		t.Errorf("status changed: %v", got.Status)
	}
	if len(got.Attachments) != 1 || got.Attachments[0].Name != "itinerary.pdf" {
		t.Errorf("attachments lost: %+v", got.Attachments)
	}
}

func TestUpdateStatus_CompareAndSwap(t *testing.T) {
	// GIVEN: A pending request
	// WHEN: Transitioning with the wrong expected status
	// THEN: ErrConflict and no change

	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, sampleRequest("req-1")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	action := leave.Action{ActorID: "mgr-1", At: time.Now(), Comment: "ok"}

	if _, err := store.UpdateStatus(ctx, "req-1", leave.StatusApproved, leave.StatusCancelled, action); !errors.Is(err, leave.ErrConflict) {
		t.Errorf("expected ErrConflict for stale precondition, got %v", err)
	}

	updated, err := store.UpdateStatus(ctx, "req-1", leave.StatusPending, leave.StatusApproved, action)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != leave.StatusApproved || updated.ActionedBy != "mgr-1" {
		t.Errorf("transition not recorded: %+v", updated)
	}

	// The same CAS can never apply twice.
	if _, err := store.UpdateStatus(ctx, "req-1", leave.StatusPending, leave.StatusApproved, action); !errors.Is(err, leave.ErrConflict) {
		t.Errorf("expected ErrConflict on replay, got %v", err)
	}
}

func TestUpdateStatus_MissingRequest(t *testing.T) {
	store := newTestStore(t)
	_, err := store.UpdateStatus(context.Background(), "missing", leave.StatusPending, leave.StatusApproved, leave.Action{})
	if !errors.Is(err, leave.ErrRequestNotFound) {
		t.Errorf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestInRange_FiltersAndIntersects(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := sampleRequest("req-1")
	second := sampleRequest("req-2")
	second.StartDate = date(2024, time.April, 1)
	second.EndDate = date(2024, time.April, 3)
	second.Status = leave.StatusApproved

	for _, r := range []leave.Request{first, second} {
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	got, err := store.InRange(ctx, date(2024, time.March, 6), date(2024, time.March, 31), leave.Filter{})
	if err != nil {
		t.Fatalf("in range: %v", err)
	}
	if len(got) != 1 || got[0].ID != "req-1" {
		t.Errorf("expected only req-1 intersecting March window, got %+v", got)
	}

	got, err = store.InRange(ctx, date(2024, time.March, 1), date(2024, time.April, 30), leave.Filter{
		Statuses: []leave.Status{leave.StatusApproved},
	})
	if err != nil {
		t.Fatalf("in range: %v", err)
	}
	if len(got) != 1 || got[0].ID != "req-2" {
		t.Errorf("expected only the approved request, got %+v", got)
	}
}

// =============================================================================
// POLICY + HOLIDAY + EMPLOYEE PERSISTENCE
// =============================================================================

func TestPolicyUpsertBumpsVersion(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cap := decimal.NewFromInt(5)
	p := policy.LeavePolicy{
		LeaveTypeID:     "annual",
		DaysAllowed:     decimal.NewFromInt(20),
		Accrual:         policy.AccrueAnnually,
		CarryForward:    true,
		MaxCarryForward: &cap,
		IsActive:        true,
		Department:      policy.DepartmentAll,
	}

	stored, err := store.Put(ctx, p)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if stored.Version != 1 {
		t.Errorf("expected version 1, got %d", stored.Version)
	}
	if stored.MaxCarryForward == nil || !stored.MaxCarryForward.Equal(cap) {
		t.Errorf("carry-forward cap lost: %v", stored.MaxCarryForward)
	}

	stored.DaysAllowed = decimal.NewFromInt(25)
	updated, err := store.Put(ctx, stored)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Version != 2 {
		t.Errorf("expected version 2, got %d", updated.Version)
	}

	if _, err := store.Policy(ctx, "missing"); !errors.Is(err, policy.ErrNotFound) {
		t.Errorf("expected policy.ErrNotFound, got %v", err)
	}
}

func TestHolidaysInRange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	holidays := []calendar.Holiday{
		{ID: "h1", Date: date(2024, time.January, 1), Name: "New Year"},
		{ID: "h2", Date: date(2024, time.December, 25), Name: "Christmas"},
	}
	for _, h := range holidays {
		if err := store.PutHoliday(ctx, h); err != nil {
			t.Fatalf("put holiday: %v", err)
		}
	}

	got, err := store.HolidaysInRange(ctx, date(2024, time.January, 1), date(2024, time.June, 30))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(got) != 1 || got[0].Name != "New Year" {
		t.Errorf("expected only New Year in H1 window, got %+v", got)
	}
}

func TestEmployeeDirectory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp := leave.Employee{ID: "emp-1", HireDate: date(2022, time.January, 10), Department: "engineering"}
	if err := store.PutEmployee(ctx, emp, "Alex Doe"); err != nil {
		t.Fatalf("put employee: %v", err)
	}

	got, err := store.Employee(ctx, "emp-1")
	if err != nil {
		t.Fatalf("get employee: %v", err)
	}
	if !got.HireDate.Equal(emp.HireDate) || got.Department != "engineering" {
		t.Errorf("employee round trip changed data: %+v", got)
	}

	if _, err := store.Employee(ctx, "ghost"); !errors.Is(err, leave.ErrEmployeeNotFound) {
		t.Errorf("expected ErrEmployeeNotFound, got %v", err)
	}
}
