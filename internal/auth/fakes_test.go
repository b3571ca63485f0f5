package auth

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/devconnector/internal/logging"
	"github.com/redmonkez12/devconnector/internal/user"
)

// memUserRepo is an in-memory UserRepository keyed by id
type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
	err   error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[uuid.UUID]*user.User{}}
}

func (m *memUserRepo) Create(_ context.Context, name, email, passwordHash, avatar string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			return nil, user.ErrDuplicateEmail
		}
	}

	u := &user.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Avatar:       avatar,
		CreatedAt:    time.Now().UTC(),
	}
	m.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// cheapArgon2Params keeps hashing fast in tests
var cheapArgon2Params = argon2Params{time: 1, memory: 1024, threads: 1, keyLen: 32, saltLen: 16}

func discardLogger() *logging.Logger {
	return logging.New(io.Discard, true, "error")
}

func newTestService(t *testing.T) (*Service, *memUserRepo) {
	t.Helper()

	tokens, err := NewPasetoService([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	repo := newMemUserRepo()
	svc := NewService(repo, tokens, discardLogger(), 12*time.Hour)
	svc.hashParams = cheapArgon2Params
	return svc, repo
}

type fakeLimiter struct {
	allow bool
	err   error
	calls []string
}

func (f *fakeLimiter) AllowIPWithPurpose(_ context.Context, ip, purpose string) (bool, error) {
	f.calls = append(f.calls, purpose+"|"+ip)
	return f.allow, f.err
}

// countingLimiter is a fixed-budget limiter keyed like the Redis one
type countingLimiter struct {
	max    int
	counts map[string]int
}

func (c *countingLimiter) AllowIPWithPurpose(_ context.Context, ip, purpose string) (bool, error) {
	key := purpose + "|" + ip
	c.counts[key]++
	return c.counts[key] <= c.max, nil
}
