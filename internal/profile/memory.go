package profile

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps profiles in process.
type MemoryStore struct {
	mu   sync.Mutex
	byID map[string]Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]Profile)}
}

func (m *MemoryStore) Get(_ context.Context, owner string) (Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[owner]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return copyProfile(p), nil
}

func (m *MemoryStore) Merge(_ context.Context, owner string, patch Patch, now time.Time) (Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[owner]
	if !ok {
		p = Profile{Owner: owner}
	}
	patch.Apply(&p)
	p.UpdatedAt = now
	m.byID[owner] = p
	return copyProfile(p), nil
}

func (m *MemoryStore) EnsureIndexes(context.Context) error { return nil }

func copyProfile(p Profile) Profile {
	if p.Skills != nil {
		p.Skills = append([]string(nil), p.Skills...)
	}
	if p.Certifications != nil {
		p.Certifications = append([]Certification(nil), p.Certifications...)
	}
	return p
}
