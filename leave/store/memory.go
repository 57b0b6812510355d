// Package store provides RequestStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	requests map[leave.RequestID]leave.Request
}

func NewMemory() *Memory {
	return &Memory{requests: make(map[leave.RequestID]leave.Request)}
}

func (m *Memory) Insert(_ context.Context, r leave.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.requests[r.ID]; exists {
		return leave.ErrConflict
	}
	m.requests[r.ID] = r
	return nil
}

func (m *Memory) Get(_ context.Context, id leave.RequestID) (leave.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.requests[id]
	if !ok {
		return leave.Request{}, leave.ErrRequestNotFound
	}
	return r, nil
}

// UpdateStatus is a compare-and-swap on the request status. The whole
// transition commits under one lock, so readers never see partial state.
func (m *Memory) UpdateStatus(_ context.Context, id leave.RequestID, from, to leave.Status, action leave.Action) (leave.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.requests[id]
	if !ok {
		return leave.Request{}, leave.ErrRequestNotFound
	}
	if r.Status != from {
		return leave.Request{}, leave.ErrConflict
	}

	r.Status = to
	r.ActionedBy = action.ActorID
	at := action.At
	r.ActionedOn = &at
	r.Comment = action.Comment
	m.requests[id] = r
	return r, nil
}

func (m *Memory) ByEmployee(_ context.Context, employeeID string) ([]leave.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []leave.Request
	for _, r := range m.requests {
		if r.EmployeeID == employeeID {
			result = append(result, r)
		}
	}
	sortByStart(result)
	return result, nil
}

func (m *Memory) InRange(_ context.Context, from, to calendar.Date, f leave.Filter) ([]leave.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []leave.Request
	for _, r := range m.requests {
		if !calendar.RangesOverlap(r.StartDate, r.EndDate, from, to) {
			continue
		}
		if !f.Matches(r) {
			continue
		}
		result = append(result, r)
	}
	sortByStart(result)
	return result, nil
}

func (m *Memory) ByStatus(_ context.Context, s leave.Status) ([]leave.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []leave.Request
	for _, r := range m.requests {
		if r.Status == s {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AppliedOn.Before(result[j].AppliedOn) })
	return result, nil
}

func sortByStart(rs []leave.Request) {
	sort.Slice(rs, func(i, j int) bool {
		if !rs[i].StartDate.Equal(rs[j].StartDate) {
			return rs[i].StartDate.Before(rs[j].StartDate)
		}
		return rs[i].ID < rs[j].ID
	})
}
