package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"crew-ops-backend/internal/store"
)

// ListAuditLogs handles GET /api/audit.
func (h *Handler) ListAuditLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, err := h.store.ListAuditLogs(c.Request.Context(), store.AuditFilter{
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
		Limit:      limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
