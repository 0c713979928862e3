package leave

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps leave requests in process.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]Request
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]Request)}
}

func (m *MemoryStore) Insert(_ context.Context, req Request) (Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[req.ID] = req
	return req, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	req, ok := m.byID[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	return req, nil
}

func (m *MemoryStore) ListByOwner(_ context.Context, owner string) ([]Request, error) {
	m.mu.RLock()
	var out []Request
	for _, req := range m.byID {
		if req.Owner == owner {
			out = append(out, req)
		}
	}
	m.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].AppliedDate.Equal(out[j].AppliedDate) {
			return out[i].AppliedDate.After(out[j].AppliedDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) EnsureIndexes(context.Context) error { return nil }
