package repository_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/catalog/internal/model"
	"github.com/templui/catalog/internal/repository"
	"github.com/templui/catalog/internal/testutil"
)

func newUser(email string) *model.User {
	now := time.Now()
	return &model.User{
		ID:           uuid.New().String(),
		Name:         "Ada",
		Email:        email,
		PasswordHash: "hash",
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserCreateAndLookup(t *testing.T) {
	repo := repository.NewUserRepository(testutil.DB(t))
	u := newUser("ada@example.com")
	require.NoError(t, repo.Create(u))

	byID, err := repo.ByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", byID.Email)
	assert.True(t, byID.IsAdmin)

	byEmail, err := repo.ByEmail("ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = repo.ByEmail("nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserDuplicateEmail(t *testing.T) {
	repo := repository.NewUserRepository(testutil.DB(t))
	require.NoError(t, repo.Create(newUser("dup@example.com")))

	err := repo.Create(newUser("dup@example.com"))
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestTokenLifecycle(t *testing.T) {
	database := testutil.DB(t)
	users := repository.NewUserRepository(database)
	tokens := repository.NewTokenRepository(database)

	u := newUser("tok@example.com")
	require.NoError(t, users.Create(u))

	tok := &model.Token{UserID: u.ID, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, tokens.Create(tok))
	assert.NotEmpty(t, tok.ID)

	active, err := tokens.Active(tok.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, active.UserID)

	require.NoError(t, tokens.Revoke(tok.ID))
	_, err = tokens.Active(tok.ID)
	assert.ErrorIs(t, err, repository.ErrTokenNotFound)
	assert.ErrorIs(t, tokens.Revoke(tok.ID), repository.ErrTokenNotFound)
}

func TestTokenExpired(t *testing.T) {
	database := testutil.DB(t)
	users := repository.NewUserRepository(database)
	tokens := repository.NewTokenRepository(database)

	u := newUser("old@example.com")
	require.NoError(t, users.Create(u))

	tok := &model.Token{UserID: u.ID, ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, tokens.Create(tok))

	_, err := tokens.Active(tok.ID)
	assert.ErrorIs(t, err, repository.ErrTokenNotFound)

	removed, err := tokens.CleanupExpired(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}
