package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"crew-ops-backend/internal/apperr"
	"crew-ops-backend/internal/assignment"
	"crew-ops-backend/internal/model"
	"crew-ops-backend/internal/store"
)

// ListAssignments handles GET /api/assignments.
func (h *Handler) ListAssignments(c *gin.Context) {
	filter := store.AssignmentFilter{
		WorkerID:     c.Query("worker_id"),
		ProjectID:    c.Query("project_id"),
		PositionID:   c.Query("position_id"),
		Type:         model.AssignmentType(c.Query("type")),
		IncludeEnded: c.Query("include_ended") == "true",
	}

	rows, err := h.store.ListAssignments(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetAssignment handles GET /api/assignments/:id.
func (h *Handler) GetAssignment(c *gin.Context) {
	row, err := h.store.GetAssignment(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

type mutationResponse struct {
	Assignment *model.Assignment `json:"assignment"`
	Changed    []string          `json:"changed"`
	Warnings   []string          `json:"warnings,omitempty"`
}

// CreateAssignment handles POST /api/assignments, the incumbent entry
// point. The type is resolved server-side, never taken from the caller.
func (h *Handler) CreateAssignment(c *gin.Context) {
	var in assignment.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, apperr.Validation("body", "invalid request body"))
		return
	}
	in.Actor = actor(c)

	res, err := h.assignments.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}

	h.invalidate(res)
	c.JSON(http.StatusCreated, mutationResponse{
		Assignment: res.Assignment,
		Changed:    res.Changed,
		Warnings:   res.Warnings,
	})
}

// CreateCoverage handles POST /api/assignments/coverage, the explicit
// TEMP_COVERAGE entry point.
func (h *Handler) CreateCoverage(c *gin.Context) {
	var in assignment.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, apperr.Validation("body", "invalid request body"))
		return
	}
	in.Actor = actor(c)

	res, err := h.assignments.CreateCoverage(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}

	h.invalidate(res)
	c.JSON(http.StatusCreated, mutationResponse{
		Assignment: res.Assignment,
		Changed:    res.Changed,
		Warnings:   res.Warnings,
	})
}

type endRequest struct {
	EndStatus  string     `json:"end_status"`
	EndedAtIso *time.Time `json:"ended_at"`
}

// EndAssignment handles POST /api/assignments/:id/end.
func (h *Handler) EndAssignment(c *gin.Context) {
	var req endRequest
	// Body is optional; defaults are completed/now.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, apperr.Validation("body", "invalid request body"))
			return
		}
	}

	res, err := h.assignments.End(c.Request.Context(), assignment.EndInput{
		AssignmentID: c.Param("id"),
		EndStatus:    req.EndStatus,
		EndedAt:      req.EndedAtIso,
		Actor:        actor(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	h.invalidate(res)
	c.JSON(http.StatusOK, mutationResponse{
		Assignment: res.Assignment,
		Changed:    res.Changed,
		Warnings:   res.Warnings,
	})
}

// GetWorkerConflict handles GET /api/workers/:id/conflict, the
// pre-flight resolution the assignment form shows before submitting.
func (h *Handler) GetWorkerConflict(c *gin.Context) {
	res, err := h.assignments.ResolveType(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
