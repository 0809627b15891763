package handlers

import (
	"net/http"

	"villabook/internal/domain"
	"villabook/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error":      message,
		"code":       code,
		"request_id": middleware.GetRequestID(c),
	})
}

// RespondDomainError is the single place domain errors become HTTP. Every
// business failure maps to a stable code plus a readable reason.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "invalid_input", err.Error())
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error())
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error())
	case domain.IsState(err):
		respondError(c, http.StatusConflict, "invalid_state", err.Error())
	case domain.IsForbidden(err):
		respondError(c, http.StatusForbidden, "forbidden", err.Error())
	case domain.IsWindowExpired(err):
		respondError(c, http.StatusGone, "window_expired", err.Error())
	case domain.IsAlreadySubmitted(err):
		respondError(c, http.StatusConflict, "already_submitted", err.Error())
	case domain.IsVersionConflict(err):
		respondError(c, http.StatusConflict, "version_conflict", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}
