package httpx

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/templui/catalog/internal/repository"
	"github.com/templui/catalog/internal/service"
	"github.com/templui/catalog/internal/validation"
)

// WriteServiceError maps service and repository errors to a status and error body.
// Anything unrecognised is logged and answered with fallbackMessage as a 500.
func WriteServiceError(w http.ResponseWriter, err error, fallbackMessage string) {
	var verr *validation.ValidationError
	if errors.As(err, &verr) {
		WriteJSON(w, http.StatusUnprocessableEntity, ErrorBody{
			Message: verr.Message(),
			Errors:  verr.Fields,
		})
		return
	}

	var writeErr *service.StorageWriteError
	if errors.As(err, &writeErr) {
		slog.Error("storage write failed", "error", err, "filename", writeErr.Filename)
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to store file %q.", writeErr.Filename))
		return
	}

	switch {
	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		WriteError(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, service.ErrInvalidCredentials):
		WriteJSON(w, http.StatusUnprocessableEntity, ErrorBody{
			Message: "The provided credentials are incorrect.",
			Errors:  map[string]string{"email": "The provided credentials are incorrect."},
		})
	case errors.Is(err, service.ErrInvalidToken):
		WriteError(w, http.StatusUnauthorized, "Unauthenticated.")
	case errors.Is(err, service.ErrNotAdmin):
		WriteError(w, http.StatusForbidden, "This action is unauthorized.")
	case errors.Is(err, service.ErrEmailAlreadyExists):
		WriteJSON(w, http.StatusUnprocessableEntity, ErrorBody{
			Message: "The email has already been taken.",
			Errors:  map[string]string{"email": "The email has already been taken."},
		})
	default:
		slog.Error(fallbackMessage, "error", err)
		WriteError(w, http.StatusInternalServerError, fallbackMessage)
	}
}
