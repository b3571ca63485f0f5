package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/devconnector/internal/user"
)

func TestRegister_IssuesTokenForNewUser(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	token, err := svc.Register(ctx, " Alice ", "Alice@Example.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := svc.ResolveToken(token)
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", stored.Name)
	assert.Equal(t, "alice@example.com", stored.Email)
	assert.Equal(t, gravatarURL("alice@example.com"), stored.Avatar)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.True(t, verifyPassword(stored.PasswordHash, "secret1"))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other", "ALICE@example.com", "secret2")
	assert.ErrorIs(t, err, user.ErrDuplicateEmail)
}

func TestRegister_InputChecks(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		wantErr  error
	}{
		{"blank name", "  ", "a@a.com", "secret1", ErrNameRequired},
		{"blank email", "A", " ", "secret1", ErrEmailRequired},
		{"short password", "A", "a@a.com", "12345", ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.userName, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegister_StoreFailure(t *testing.T) {
	svc, repo := newTestService(t)
	repo.err = errors.New("connection refused")

	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "secret1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, user.ErrDuplicateEmail)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		token, err := svc.Authenticate(ctx, "ALICE@example.com ", "secret1")
		require.NoError(t, err)

		id, err := svc.ResolveToken(token)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "alice@example.com", "secret2")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "bob@example.com", "secret1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("empty password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "alice@example.com", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthenticate_UnknownEmailStillHashes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	var hashes []string
	svc.verify = func(encodedHash, password string) bool {
		hashes = append(hashes, encodedHash)
		return verifyPassword(encodedHash, password)
	}

	_, err = svc.Authenticate(ctx, "bob@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	require.Len(t, hashes, 1)
	assert.True(t, strings.HasPrefix(hashes[0], "$argon2id$v=19$m=1024,t=1,p=1$"), hashes[0])

	_, err = svc.Authenticate(ctx, "carol@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	require.Len(t, hashes, 2)
	assert.Equal(t, hashes[0], hashes[1])

	_, err = svc.Authenticate(ctx, "alice@example.com", "wrong-one")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Len(t, hashes, 3)
}

func TestResolveToken_Invalid(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ResolveToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveToken_Expired(t *testing.T) {
	svc, _ := newTestService(t)

	token, err := svc.tokenService.CreateToken(uuid.New(), -time.Minute)
	require.NoError(t, err)

	_, err = svc.ResolveToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestGetCurrentUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	token, err := svc.Register(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)
	id, err := svc.ResolveToken(token)
	require.NoError(t, err)

	u, err := svc.GetCurrentUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)

	_, err = svc.GetCurrentUser(ctx, uuid.New())
	assert.ErrorIs(t, err, user.ErrNotFound)
}
