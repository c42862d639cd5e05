package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/taskmaster/taskmaster/internal/api/respond"
	"github.com/taskmaster/taskmaster/internal/domain"
)

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is logged in full and reduced to a generic
// 500 body.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrEmailTaken):
		respond.Error(w, http.StatusConflict, "User already exists")
	case errors.Is(err, domain.ErrUserNotFound):
		respond.Error(w, http.StatusNotFound, "User not found")
	case errors.Is(err, domain.ErrWrongPassword):
		respond.Error(w, http.StatusUnauthorized, "Wrong password")
	case errors.Is(err, domain.ErrInvalidOTP):
		respond.Error(w, http.StatusUnauthorized, "Invalid OTP")
	case errors.Is(err, domain.ErrPasswordNotSet):
		respond.Error(w, http.StatusBadRequest, "Password not found")
	case errors.Is(err, domain.ErrOldPasswordRequired):
		respond.Error(w, http.StatusBadRequest, "Old password is required to set a new password")
	case errors.Is(err, domain.ErrMissingToken):
		respond.Error(w, http.StatusBadRequest, "Missing token")
	case errors.Is(err, domain.ErrTaskNotFound):
		respond.Error(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, domain.ErrDueTimeInPast):
		respond.Error(w, http.StatusBadRequest, "Due time must not be in the past")
	default:
		log.Printf("ERROR [%s] %v", op, err)
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
