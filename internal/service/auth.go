package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/templui/catalog/internal/model"
	"github.com/templui/catalog/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotAdmin           = errors.New("user is not an administrator")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type AuthService struct {
	userRepository  repository.UserRepository
	tokenRepository repository.TokenRepository
	jwtSecret       string
	jwtExpiry       time.Duration
}

func NewAuthService(
	userRepository repository.UserRepository,
	tokenRepository repository.TokenRepository,
	jwtSecret string,
	jwtExpiry time.Duration,
) *AuthService {
	return &AuthService{
		userRepository:  userRepository,
		tokenRepository: tokenRepository,
		jwtSecret:       jwtSecret,
		jwtExpiry:       jwtExpiry,
	}
}

// Login checks the credentials. Only administrators may sign in.
func (s *AuthService) Login(email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	err = s.ComparePassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
	}

	if !user.IsAdmin {
		return nil, fmt.Errorf("login refused: %w", ErrNotAdmin)
	}

	return user, nil
}

// IssueToken records a new access token for user and returns it signed
func (s *AuthService) IssueToken(user *model.User) (string, *model.Token, error) {
	now := time.Now()
	token := &model.Token{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.jwtExpiry),
		CreatedAt: now,
	}

	err := s.tokenRepository.Create(token)
	if err != nil {
		return "", nil, fmt.Errorf("failed to store token: %w", err)
	}

	signed, err := s.GenerateJWT(user, token)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	slog.Info("access token issued", "user_id", user.ID, "token_id", token.ID)
	return signed, token, nil
}

// Authenticate resolves a bearer token to its user.
// The token must verify and its row must still be active.
func (s *AuthService) Authenticate(tokenString string) (*model.User, *model.Token, error) {
	claims, err := s.VerifyJWT(tokenString)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, _ := claims["sub"].(string)
	tokenID, _ := claims["jti"].(string)
	if userID == "" || tokenID == "" {
		return nil, nil, ErrInvalidToken
	}

	token, err := s.tokenRepository.Active(tokenID)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, fmt.Errorf("failed to get token: %w", err)
	}
	if token.UserID != userID {
		return nil, nil, ErrInvalidToken
	}

	user, err := s.userRepository.ByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, token, nil
}

// Logout revokes the token so it can no longer authenticate
func (s *AuthService) Logout(token *model.Token) error {
	err := s.tokenRepository.Revoke(token.ID)
	if err != nil && !errors.Is(err, repository.ErrTokenNotFound) {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	slog.Info("access token revoked", "user_id", token.UserID, "token_id", token.ID)
	return nil
}

// PruneTokens deletes tokens that expired or were revoked more than retention ago
func (s *AuthService) PruneTokens(retention time.Duration) (int64, error) {
	removed, err := s.tokenRepository.CleanupExpired(retention)
	if err != nil {
		return 0, fmt.Errorf("failed to prune tokens: %w", err)
	}
	if removed > 0 {
		slog.Info("pruned access tokens", "count", removed)
	}
	return removed, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) GenerateJWT(user *model.User, token *model.Token) (string, error) {
	claims := jwt.MapClaims{
		"sub": user.ID,
		"jti": token.ID,
		"exp": token.ExpiresAt.Unix(),
		"iat": token.CreatedAt.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := t.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (s *AuthService) VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
