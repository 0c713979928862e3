package payroll

import (
	"context"
	"sort"
	"strconv"
	"sync"
)

// MemoryStore keeps slips in process.
type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[string]Slip
	byPeriod map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]Slip), byPeriod: make(map[string]string)}
}

func periodKey(s Slip) string {
	return s.Owner + "|" + strconv.Itoa(s.Year) + "-" + s.Month
}

func (m *MemoryStore) Insert(_ context.Context, slip Slip) (Slip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := periodKey(slip)
	if _, ok := m.byPeriod[key]; ok {
		return Slip{}, ErrDuplicate
	}
	m.byID[slip.ID] = slip
	m.byPeriod[key] = slip.ID
	return slip, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Slip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	slip, ok := m.byID[id]
	if !ok {
		return Slip{}, ErrNotFound
	}
	return slip, nil
}

func (m *MemoryStore) ListByOwner(_ context.Context, owner string) ([]Slip, error) {
	m.mu.RLock()
	var out []Slip
	for _, slip := range m.byID {
		if slip.Owner == owner {
			out = append(out, slip)
		}
	}
	m.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return periodAfter(out[i], out[j]) })
	return out, nil
}

func (m *MemoryStore) EnsureIndexes(context.Context) error { return nil }
