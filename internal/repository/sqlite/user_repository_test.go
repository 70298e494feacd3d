package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demo-auth/internal/domain"
	"demo-auth/internal/repository"
)

func testRepo(t *testing.T) repository.UserRepository {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewUserRepository(db)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func newTestUser(t *testing.T, username string) *domain.User {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return &domain.User{
		ID:           id,
		Username:     username,
		PasswordHash: "$2a$10$fakehashfakehashfakehash",
		Scopes:       "admin",
	}
}

func TestCreateAndGet(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	user := newTestUser(t, "admin")
	require.NoError(t, repo.Create(ctx, user))

	byName, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)
	assert.Equal(t, user.PasswordHash, byName.PasswordHash)
	assert.Equal(t, "admin", byName.Scopes)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", byID.Username)
}

func TestGetMissing(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	_, err := repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	id, err := uuid.NewV7()
	require.NoError(t, err)
	_, err = repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateDuplicateUsername(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestUser(t, "admin")))

	err := repo.Create(ctx, newTestUser(t, "admin"))
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)
}

func TestUsernameIsCaseSensitive(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestUser(t, "admin")))

	_, err := repo.GetByUsername(ctx, "Admin")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
