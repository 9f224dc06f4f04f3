package handler

import (
	"net/http"

	"github.com/templui/catalog/internal/ctxkeys"
	"github.com/templui/catalog/internal/httpx"
	"github.com/templui/catalog/internal/model"
	"github.com/templui/catalog/internal/service"
	"github.com/templui/catalog/internal/validation"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type loginResponse struct {
	User      *model.User `json:"user"`
	Token     string      `json:"token"`
	TokenType string      `json:"token_type"`
}

// Login exchanges email + password for a bearer token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	in, err := parseInput(w, r, 0)
	if err != nil {
		httpx.WriteServiceError(w, err, "Failed to log in.")
		return
	}
	defer in.Close()

	email := in.Values.Get("email")
	password := in.Values.Get("password")

	err = validation.ValidateLogin(email, password)
	if err != nil {
		httpx.WriteServiceError(w, err, "Failed to log in.")
		return
	}

	user, err := h.authService.Login(email, password)
	if err != nil {
		httpx.WriteServiceError(w, err, "Failed to log in.")
		return
	}

	token, _, err := h.authService.IssueToken(user)
	if err != nil {
		httpx.WriteServiceError(w, err, "Failed to log in.")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		User:      user,
		Token:     token,
		TokenType: "Bearer",
	})
}

// User returns the authenticated user
func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, ctxkeys.User(r.Context()))
}

// Logout revokes the token the request was made with
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := ctxkeys.Token(r.Context())

	err := h.authService.Logout(token)
	if err != nil {
		httpx.WriteServiceError(w, err, "Failed to log out.")
		return
	}

	httpx.NoContent(w)
}
