package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"crew-ops-backend/internal/apperr"
)

// writeError maps a typed error onto an HTTP status and renders the
// error body consumed by the dashboard.
func writeError(c *gin.Context, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{"kind": apperr.KindUnknown, "message": err.Error()},
		})
		return
	}

	body := gin.H{"kind": ae.Kind, "message": ae.Message}
	if ae.Field != "" {
		body["field"] = ae.Field
	}
	c.AbortWithStatusJSON(statusFor(ae.Kind), gin.H{"error": body})
}

func statusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
