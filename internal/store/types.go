package store

import "crew-ops-backend/internal/model"

// AssignmentFilter narrows ListAssignments. Zero-value fields are not
// applied. IncludeEnded false restricts to ended_at IS NULL.
type AssignmentFilter struct {
	WorkerID     string
	ProjectID    string
	PositionID   string
	Type         model.AssignmentType
	IncludeEnded bool
}

// AuditFilter narrows ListAuditLogs.
type AuditFilter struct {
	EntityType string
	EntityID   string
	Limit      int
}
