package api

import (
	"github.com/gin-gonic/gin"

	"crew-ops-backend/config"
	"crew-ops-backend/internal/assignment"
	"crew-ops-backend/internal/mw"
	"crew-ops-backend/internal/store"
)

// Dispatcher hands assignment events to the notification worker pool.
type Dispatcher interface {
	Dispatch(assignmentID string)
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store       store.Store
	assignments *assignment.Service
	cache       *mw.ResponseCache
	cfg         *config.Config
	dispatcher  Dispatcher
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, svc *assignment.Service, rc *mw.ResponseCache, cfg *config.Config, d Dispatcher) *Handler {
	return &Handler{
		store:       s,
		assignments: svc,
		cache:       rc,
		cfg:         cfg,
		dispatcher:  d,
	}
}

// invalidate flushes cached responses for the changed entity sets and
// notifies subscribers of the affected assignment.
func (h *Handler) invalidate(res *assignment.Result) {
	if h.cache != nil {
		h.cache.Invalidate(res.Changed...)
	}
	if h.dispatcher != nil && res.Assignment != nil {
		h.dispatcher.Dispatch(res.Assignment.ID)
	}
}

func actor(c *gin.Context) string {
	return c.GetString(mw.ActorKey)
}
