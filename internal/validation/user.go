package validation

import (
	"strings"
)

type userInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"min=12,max=72"`
}

var commonPasswordPatterns = []string{
	"password", "123456", "qwerty", "admin", "letmein",
	"welcome", "monkey", "dragon", "master", "sunshine",
}

// ValidateUser checks the inputs for a new user account.
// Passwords follow NIST guidance: at least 12 characters, and at most 72 bytes since bcrypt truncates beyond that.
func ValidateUser(name, email, password string) error {
	in := userInput{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: password,
	}

	verr := check(in)
	if verr == nil {
		verr = &ValidationError{}
	}

	if len(password) > 72 {
		delete(verr.Fields, "password")
		verr.Add("password", "The password field must not be greater than 72 bytes.")
	}

	lower := strings.ToLower(password)
	for _, pattern := range commonPasswordPatterns {
		if strings.Contains(lower, pattern) {
			verr.Add("password", "The password is too common, please choose a stronger one.")
			break
		}
	}

	return orNil(verr)
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ValidateLogin checks that both credentials were supplied.
func ValidateLogin(email, password string) error {
	return orNil(check(loginInput{Email: strings.TrimSpace(email), Password: password}))
}
