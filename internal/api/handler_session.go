package api

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"crew-ops-backend/internal/apperr"
	"crew-ops-backend/internal/mw"
)

type loginRequest struct {
	User     string `json:"user" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/session and issues a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validation("body", "user and password are required"))
		return
	}

	auth := h.cfg.Auth
	userOK := subtle.ConstantTimeCompare([]byte(req.User), []byte(auth.AdminUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(auth.AdminPassword)) == 1
	if !userOK || !passOK {
		writeError(c, apperr.Unauthorized("invalid credentials"))
		return
	}

	ttl := time.Duration(auth.TokenTTLMinutes) * time.Minute
	token, err := mw.IssueToken(auth.JWTSecret, req.User, ttl)
	if err != nil {
		writeError(c, apperr.DB("failed to issue token", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": int(ttl.Seconds()),
	})
}
