package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/catalog/internal/model"
	"github.com/templui/catalog/internal/repository"
	"github.com/templui/catalog/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

var ErrEmailAlreadyExists = errors.New("email already exists")

type UserService struct {
	userRepository repository.UserRepository
}

func NewUserService(userRepository repository.UserRepository) *UserService {
	return &UserService{
		userRepository: userRepository,
	}
}

func (s *UserService) ByID(id string) (*model.User, error) {
	return s.userRepository.ByID(id)
}

// Create adds a user account. Emails are stored lower-cased.
func (s *UserService) Create(name, email, password string, isAdmin bool) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	err := validation.ValidateUser(name, email, password)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		IsAdmin:      isAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.userRepository.Create(user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user created", "user_id", user.ID, "email", user.Email, "is_admin", isAdmin)
	return user, nil
}

// SetAdmin grants or revokes administrator access
func (s *UserService) SetAdmin(email string, isAdmin bool) (*model.User, error) {
	user, err := s.userRepository.ByEmail(strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, err
	}

	user.IsAdmin = isAdmin
	user.UpdatedAt = time.Now()

	err = s.userRepository.Update(user)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	slog.Info("user admin flag changed", "user_id", user.ID, "is_admin", isAdmin)
	return user, nil
}
