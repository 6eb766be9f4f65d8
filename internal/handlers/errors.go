package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ownership-api/internal/services"
)

// statusForError maps lifecycle errors to HTTP status codes. Unknown
// errors are treated as internal.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidToken):
		return http.StatusNotFound
	case errors.Is(err, services.ErrExpired),
		errors.Is(err, services.ErrCancelled),
		errors.Is(err, services.ErrAlreadyAccepted),
		errors.Is(err, services.ErrDuplicateTenant):
		return http.StatusConflict
	case errors.Is(err, services.ErrEmailMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrContactRequired),
		errors.Is(err, services.ErrNotResendable):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error in the shared response shape. Internal
// errors are masked so database details never reach the client.
func respondError(c *gin.Context, err error) {
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	c.JSON(status, gin.H{
		"error": message,
	})
}
