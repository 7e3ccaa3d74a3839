package auth

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformdb "github.com/taskmaster-app/taskmaster/internal/platform/db"
	"github.com/taskmaster-app/taskmaster/internal/shared"
)

func setupAuthDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := platformdb.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, platformdb.Migrate(conn))
	return conn
}

func TestCreateUser(t *testing.T) {
	repo := NewRepository(setupAuthDB(t))

	user, err := repo.CreateUser(context.Background(), "user@test.local", "hash")
	require.NoError(t, err)
	assert.Positive(t, user.ID)
	assert.Equal(t, "user@test.local", user.Email)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := NewRepository(setupAuthDB(t))

	_, err := repo.CreateUser(context.Background(), "user@test.local", "hash")
	require.NoError(t, err)

	_, err = repo.CreateUser(context.Background(), "user@test.local", "other-hash")
	assert.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestFindByEmail(t *testing.T) {
	repo := NewRepository(setupAuthDB(t))

	created, err := repo.CreateUser(context.Background(), "user@test.local", "hash")
	require.NoError(t, err)

	found, err := repo.FindByEmail(context.Background(), "user@test.local")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "hash", found.PasswordHash)

	_, err = repo.FindByEmail(context.Background(), "missing@test.local")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
