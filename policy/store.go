package policy

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// =============================================================================
// STORE - Read-mostly policy configuration surface
// =============================================================================

// ErrNotFound is returned when no policy exists for a leave type.
var ErrNotFound = errors.New("leave policy not found")

// Store is the policy configuration surface. Reads are hot-path (every
// validation and balance calculation consults a policy); writes are rare
// administrative operations and must pass Validate.
type Store interface {
	// Policy returns the policy for a leave type, or ErrNotFound.
	Policy(ctx context.Context, id LeaveTypeID) (LeavePolicy, error)

	// List returns all policies, ordered by leave type id.
	List(ctx context.Context) ([]LeavePolicy, error)

	// Put validates and stores a policy, bumping its version on update.
	Put(ctx context.Context, p LeavePolicy) (LeavePolicy, error)
}

// =============================================================================
// MEMORY STORE
// =============================================================================

// Memory is a thread-safe in-memory Store for tests and development.
type Memory struct {
	mu       sync.RWMutex
	policies map[LeaveTypeID]LeavePolicy
	types    map[LeaveTypeID]LeaveType
}

func NewMemory() *Memory {
	return &Memory{
		policies: make(map[LeaveTypeID]LeavePolicy),
		types:    make(map[LeaveTypeID]LeaveType),
	}
}

func (m *Memory) Policy(_ context.Context, id LeaveTypeID) (LeavePolicy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.policies[id]
	if !ok {
		return LeavePolicy{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) List(_ context.Context) ([]LeavePolicy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]LeavePolicy, 0, len(m.policies))
	for _, p := range m.policies {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LeaveTypeID < result[j].LeaveTypeID })
	return result, nil
}

func (m *Memory) Put(_ context.Context, p LeavePolicy) (LeavePolicy, error) {
	if err := p.Validate(); err != nil {
		return LeavePolicy{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.policies[p.LeaveTypeID]; ok {
		p.Version = existing.Version + 1
	} else if p.Version == 0 {
		p.Version = 1
	}
	m.policies[p.LeaveTypeID] = p
	return p, nil
}

// PutType registers a leave type reference entity.
func (m *Memory) PutType(t LeaveType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types[t.ID] = t
}

// Type returns a registered leave type, or false.
func (m *Memory) Type(id LeaveTypeID) (LeaveType, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.types[id]
	return t, ok
}
