package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/gamezone-floor/internal/model"
)

// MemStore is an in-memory Store guarded by a RWMutex.  It hands out
// copies so callers cannot mutate registry state behind the lock.
type MemStore struct {
	mu     sync.RWMutex
	nextID uint64
	data   map[uint64]*model.Session
}

// NewMemStore constructs an empty registry.
func NewMemStore() *MemStore {
	return &MemStore{nextID: 1, data: make(map[uint64]*model.Session)}
}

func cloneSession(s *model.Session) *model.Session {
	out := *s
	out.Devices = make(model.DeviceClaims, len(s.Devices))
	for kind, units := range s.Devices {
		out.Devices[kind] = append([]int(nil), units...)
	}
	out.Members = append([]model.SessionMember(nil), s.Members...)
	if s.CompletedAt != nil {
		ts := *s.CompletedAt
		out.CompletedAt = &ts
	}
	return &out
}

// Insert stores the session and assigns its id.
func (m *MemStore) Insert(ctx context.Context, s *model.Session) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.nextID
	m.nextID++
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	m.data[s.ID] = cloneSession(s)
	return nil
}

// Get returns a copy of the session or ErrSessionNotFound.
func (m *MemStore) Get(ctx context.Context, id uint64) (*model.Session, error) {
	_ = ctx
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.data[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return cloneSession(s), nil
}

// Update overwrites the stored session.
func (m *MemStore) Update(ctx context.Context, s *model.Session) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[s.ID]; !ok {
		return ErrSessionNotFound
	}
	s.UpdatedAt = time.Now().UTC()
	m.data[s.ID] = cloneSession(s)
	return nil
}

// ApplyMember stores the updated session and its new member record in
// one step.
func (m *MemStore) ApplyMember(ctx context.Context, s *model.Session, mem *model.SessionMember) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[s.ID]; !ok {
		return ErrSessionNotFound
	}
	mem.ID = uint64(len(s.Members) + 1)
	mem.CreatedAt = time.Now().UTC()
	s.Members = append(s.Members, *mem)
	s.UpdatedAt = mem.CreatedAt
	m.data[s.ID] = cloneSession(s)
	return nil
}

// Delete removes the session regardless of status.
func (m *MemStore) Delete(ctx context.Context, id uint64) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.data, id)
	return nil
}

func (m *MemStore) listByStatus(status string) []model.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Session, 0)
	for _, s := range m.data {
		if s.Status == status {
			out = append(out, *cloneSession(s))
		}
	}
	return out
}

// ListActive returns all ACTIVE sessions.
func (m *MemStore) ListActive(ctx context.Context) ([]model.Session, error) {
	_ = ctx
	return m.listByStatus(model.SessionActive), nil
}

// ListCompleted returns all COMPLETED sessions.
func (m *MemStore) ListCompleted(ctx context.Context) ([]model.Session, error) {
	_ = ctx
	return m.listByStatus(model.SessionCompleted), nil
}

// OccupiedUnits aggregates the unit claims of active sessions.
func (m *MemStore) OccupiedUnits(ctx context.Context) (map[string][]int, error) {
	_ = ctx
	m.mu.RLock()
	defer m.mu.RUnlock()
	occupied := make(map[string][]int)
	for _, s := range m.data {
		if s.Status != model.SessionActive {
			continue
		}
		for kind, units := range s.Devices {
			occupied[kind] = append(occupied[kind], units...)
		}
	}
	return occupied, nil
}
