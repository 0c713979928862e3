package attendance

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps records in process. It enforces (owner, day) uniqueness
// under its mutex, so it is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]Record
	byDay map[string]string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[string]Record),
		byDay: make(map[string]string),
	}
}

func dayKey(owner, day string) string { return owner + "|" + day }

// Insert creates rec unless owner already has a record for its day.
func (m *MemoryStore) Insert(_ context.Context, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := dayKey(rec.Owner, rec.Day)
	if _, ok := m.byDay[key]; ok {
		return Record{}, ErrDuplicate
	}
	m.byID[rec.ID] = rec.clone()
	m.byDay[key] = rec.ID
	return rec.clone(), nil
}

// FindDay returns the owner's record for day.
func (m *MemoryStore) FindDay(_ context.Context, owner, day string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byDay[dayKey(owner, day)]
	if !ok {
		return Record{}, ErrNotFound
	}
	return m.byID[id].clone(), nil
}

// Close sets logout on an open record.
func (m *MemoryStore) Close(_ context.Context, id string, logout time.Time, hours float64) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byID[id]
	if !ok || !rec.Open() {
		return Record{}, ErrNotFound
	}
	rec.LogoutTime = &logout
	rec.TotalHours = hours
	rec.UpdatedAt = logout
	m.byID[id] = rec
	return rec.clone(), nil
}

// ListRecent returns owner's records newest day first.
func (m *MemoryStore) ListRecent(_ context.Context, owner string, limit int) ([]Record, error) {
	m.mu.RLock()
	var out []Record
	for _, rec := range m.byID {
		if rec.Owner == owner {
			out = append(out, rec.clone())
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day > out[j].Day
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountBetween counts owner's records in the inclusive day range.
func (m *MemoryStore) CountBetween(_ context.Context, owner, fromDay, toDay string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, rec := range m.byID {
		if rec.Owner == owner && rec.Day >= fromDay && rec.Day <= toDay {
			n++
		}
	}
	return n, nil
}

// Reset drops everything.
func (m *MemoryStore) Reset(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.byID))
	m.byID = make(map[string]Record)
	m.byDay = make(map[string]string)
	return n, nil
}

// EnsureIndexes is a no-op; uniqueness is structural.
func (m *MemoryStore) EnsureIndexes(context.Context) error { return nil }
