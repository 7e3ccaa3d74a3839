package httpx

import (
	"errors"
	"net/http"

	"github.com/taskmaster-app/taskmaster/internal/shared"
)

// Error kinds exposed to API clients.
const (
	KindValidation = "validation_error"
	KindConflict   = "conflict"
	KindAuth       = "auth_error"
	KindNotFound   = "not_found"
	KindInternal   = "internal_error"
)

// RespondError maps domain errors to HTTP error responses. Unknown errors
// become an opaque internal error so persistence detail never leaks.
func RespondError(w http.ResponseWriter, err error) {
	var ve *shared.ValidationError
	switch {
	case errors.As(err, &ve):
		FieldErrors(w, ve.Fields)
	case errors.Is(err, shared.ErrDuplicate):
		Error(w, http.StatusBadRequest, KindConflict, "user already exists")
	case errors.Is(err, shared.ErrInvalidCredentials):
		Error(w, http.StatusUnauthorized, KindAuth, "invalid credentials")
	case errors.Is(err, shared.ErrUnauthorized):
		Error(w, http.StatusUnauthorized, KindAuth, "unauthorized")
	case errors.Is(err, shared.ErrNotFound):
		Error(w, http.StatusNotFound, KindNotFound, "resource not found")
	default:
		Error(w, http.StatusInternalServerError, KindInternal, "internal server error")
	}
}
