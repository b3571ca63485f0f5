package profile

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/redmonkez12/devconnector/internal/logging"
)

// memStore is an in-memory Store keyed by owner id
type memStore struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]Profile
	owners   map[uuid.UUID]Owner
	err      error
	saves    int
	updates  int
}

func newMemStore() *memStore {
	return &memStore{
		profiles: map[uuid.UUID]Profile{},
		owners:   map[uuid.UUID]Owner{},
	}
}

func (m *memStore) addOwner(name string) uuid.UUID {
	id := uuid.New()
	m.owners[id] = Owner{ID: id, Name: name, Avatar: "//avatar/" + name}
	return id
}

func clone(p Profile) *Profile {
	p.Skills = append([]string{}, p.Skills...)
	p.Experience = append([]Experience{}, p.Experience...)
	p.Education = append([]Education{}, p.Education...)
	return &p
}

func (m *memStore) GetByUserID(_ context.Context, userID uuid.UUID) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	p.User = m.owners[userID]
	return clone(p), nil
}

func (m *memStore) List(_ context.Context) ([]Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	out := make([]Profile, 0, len(m.profiles))
	for id, p := range m.profiles {
		p.User = m.owners[id]
		out = append(out, *clone(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) Save(_ context.Context, p *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.saves++

	if existing, ok := m.profiles[p.User.ID]; ok {
		cp := *clone(*p)
		cp.ID = existing.ID
		cp.CreatedAt = existing.CreatedAt
		cp.Experience = existing.Experience
		cp.Education = existing.Education
		m.profiles[p.User.ID] = cp
		return nil
	}
	m.profiles[p.User.ID] = *clone(*p)
	return nil
}

func (m *memStore) UpdateEntries(_ context.Context, p *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	existing, ok := m.profiles[p.User.ID]
	if !ok {
		return ErrNotFound
	}
	m.updates++
	existing.Experience = append([]Experience{}, p.Experience...)
	existing.Education = append([]Education{}, p.Education...)
	existing.UpdatedAt = p.UpdatedAt
	m.profiles[p.User.ID] = existing
	return nil
}

func (m *memStore) DeleteWithOwner(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	delete(m.profiles, userID)
	delete(m.owners, userID)
	return nil
}

func discardLogger() *logging.Logger {
	return logging.New(io.Discard, true, "error")
}

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	return NewService(store, discardLogger()), store
}
