package middleware

import (
	"net/http"
	"strings"

	"github.com/templui/catalog/internal/ctxkeys"
	"github.com/templui/catalog/internal/httpx"
	"github.com/templui/catalog/internal/service"
)

// AuthMiddleware resolves the bearer token and adds user + token to context if valid.
// Requests without a valid token continue anonymously; RequireAuth rejects them.
func AuthMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, token, err := authService.Authenticate(tokenString)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			// Security: Remove password hash from context
			user.PasswordHash = ""

			ctx := ctxkeys.WithUser(r.Context(), user)
			ctx = ctxkeys.WithToken(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>"
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth ensures the request carries a valid access token
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) == nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			httpx.WriteError(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireAdmin ensures the authenticated user is an administrator.
// Apply after RequireAuth.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.User(r.Context())
		if user == nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			httpx.WriteError(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		if !user.IsAdmin {
			httpx.WriteError(w, http.StatusForbidden, "This action is unauthorized.")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// Admin combines RequireAuth and RequireAdmin for the admin route group
func Admin(next http.HandlerFunc) http.HandlerFunc {
	return RequireAuth(RequireAdmin(next))
}
