package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/catalog/internal/model"
	"github.com/templui/catalog/internal/repository"
	"github.com/templui/catalog/internal/service"
	"github.com/templui/catalog/internal/testutil"
)

const testPassword = "correct horse battery"

type authFixture struct {
	auth  *service.AuthService
	users *service.UserService
}

func newAuthFixture(t *testing.T, expiry time.Duration) *authFixture {
	t.Helper()
	database := testutil.DB(t)
	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewTokenRepository(database)

	return &authFixture{
		auth:  service.NewAuthService(userRepo, tokenRepo, "test-secret", expiry),
		users: service.NewUserService(userRepo),
	}
}

func (f *authFixture) user(t *testing.T, email string, admin bool) *model.User {
	t.Helper()
	u, err := f.users.Create("Test User", email, testPassword, admin)
	require.NoError(t, err)
	return u
}

func TestLoginAdmin(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	admin := f.user(t, "admin@example.com", true)

	u, err := f.auth.Login("  ADMIN@example.com ", testPassword)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, u.ID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	f.user(t, "admin@example.com", true)

	_, err := f.auth.Login("admin@example.com", "wrong password here")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = f.auth.Login("nobody@example.com", testPassword)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLoginRejectsNonAdmin(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	f.user(t, "staff@example.com", false)

	_, err := f.auth.Login("staff@example.com", testPassword)
	assert.ErrorIs(t, err, service.ErrNotAdmin)
}

func TestIssueAndAuthenticate(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	admin := f.user(t, "admin@example.com", true)

	signed, token, err := f.auth.IssueToken(admin)
	require.NoError(t, err)
	assert.NotEmpty(t, token.ID)

	claims, err := f.auth.VerifyJWT(signed)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims["sub"])
	assert.Equal(t, token.ID, claims["jti"])

	u, tok, err := f.auth.Authenticate(signed)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, u.ID)
	assert.Equal(t, token.ID, tok.ID)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	admin := f.user(t, "admin@example.com", true)

	signed, token, err := f.auth.IssueToken(admin)
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(token))
	require.NoError(t, f.auth.Logout(token), "second logout is a no-op")

	_, _, err = f.auth.Authenticate(signed)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	admin := f.user(t, "admin@example.com", true)

	signed, _, err := f.auth.IssueToken(admin)
	require.NoError(t, err)

	_, _, err = f.auth.Authenticate(signed + "x")
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	_, _, err = f.auth.Authenticate("not-a-jwt")
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	other := service.NewAuthService(nil, nil, "another-secret", time.Hour)
	forged, err := other.GenerateJWT(admin, &model.Token{ID: "forged", ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now()})
	require.NoError(t, err)
	_, _, err = f.auth.Authenticate(forged)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	f := newAuthFixture(t, -time.Minute)
	admin := f.user(t, "admin@example.com", true)

	signed, _, err := f.auth.IssueToken(admin)
	require.NoError(t, err)

	_, _, err = f.auth.Authenticate(signed)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestAuthenticateRejectsUnknownTokenRow(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	admin := f.user(t, "admin@example.com", true)

	signed, err := f.auth.GenerateJWT(admin, &model.Token{ID: "never-stored", ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now()})
	require.NoError(t, err)

	_, _, err = f.auth.Authenticate(signed)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestPruneTokens(t *testing.T) {
	f := newAuthFixture(t, -time.Minute)
	admin := f.user(t, "admin@example.com", true)

	_, _, err := f.auth.IssueToken(admin)
	require.NoError(t, err)

	removed, err := f.auth.PruneTokens(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	removed, err = f.auth.PruneTokens(0)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
