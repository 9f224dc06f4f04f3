package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/catalog/internal/ctxkeys"
	"github.com/templui/catalog/internal/middleware"
	"github.com/templui/catalog/internal/repository"
	"github.com/templui/catalog/internal/service"
	"github.com/templui/catalog/internal/testutil"
)

type authSetup struct {
	auth    *service.AuthService
	users   *service.UserService
	handler http.Handler
}

func newAuthSetup(t *testing.T) *authSetup {
	t.Helper()
	database := testutil.DB(t)
	userRepo := repository.NewUserRepository(database)
	auth := service.NewAuthService(userRepo, repository.NewTokenRepository(database), "secret", time.Hour)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin", middleware.Admin(func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()).PasswordHash != "" || ctxkeys.Token(r.Context()) == nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	return &authSetup{
		auth:    auth,
		users:   service.NewUserService(userRepo),
		handler: middleware.Chain(mux, middleware.AuthMiddleware(auth)),
	}
}

func (s *authSetup) issue(t *testing.T, email string, admin bool) string {
	t.Helper()
	u, err := s.users.Create("Test", email, "correct horse battery", admin)
	require.NoError(t, err)

	signed, _, err := s.auth.IssueToken(u)
	require.NoError(t, err)
	return signed
}

func (s *authSetup) get(token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestAdminRoutesRequireToken(t *testing.T) {
	s := newAuthSetup(t)

	rec := s.get("")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	assert.JSONEq(t, `{"message":"Unauthenticated."}`, rec.Body.String())

	rec = s.get("garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesAcceptAdminToken(t *testing.T) {
	s := newAuthSetup(t)
	token := s.issue(t, "admin@example.com", true)

	rec := s.get(token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoutesRejectNonAdmin(t *testing.T) {
	s := newAuthSetup(t)
	token := s.issue(t, "staff@example.com", false)

	rec := s.get(token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"message":"This action is unauthorized."}`, rec.Body.String())
}

func TestRevokedTokenIsRejected(t *testing.T) {
	s := newAuthSetup(t)
	token := s.issue(t, "admin@example.com", true)

	_, tok, err := s.auth.Authenticate(token)
	require.NoError(t, err)
	require.NoError(t, s.auth.Logout(tok))

	rec := s.get(token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
