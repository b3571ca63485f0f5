package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/devconnector/internal/database"
)

func newRepoWithMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db := database.NewBunDB(sqlDB)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(db), mock
}

var userColumns = []string{"id", "name", "email", "password_hash", "avatar", "created_at"}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT INTO "users"`).WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := repo.Create(context.Background(), "Alice", "alice@example.com", "hash", "//avatar")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.False(t, got.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT INTO "users"`).WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Create(context.Background(), "Alice", "alice@example.com", "hash", "")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT INTO "users"`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), "Alice", "alice@example.com", "hash", "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateEmail)
	assert.Contains(t, err.Error(), "db down")
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	id := uuid.New()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(`SELECT .* FROM "users" AS "u" WHERE \(email = 'alice@example.com'\)`).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(id.String(), "Alice", "alice@example.com", "hash", "//avatar", created))

	got, err := repo.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Equal(t, "//avatar", got.Avatar)
	assert.True(t, created.Equal(got.CreatedAt))
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT .* FROM "users"`).WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT .* FROM "users"`).WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	id := uuid.New()
	mock.ExpectExec(`DELETE FROM "users".*` + id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), id))
	require.NoError(t, mock.ExpectationsWereMet())
}
