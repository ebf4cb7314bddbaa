package model

import "time"

// AssignmentType distinguishes standing attachments from deliberate overlap.
type AssignmentType string

const (
	AssignmentPrimary      AssignmentType = "PRIMARY"
	AssignmentSecondary    AssignmentType = "SECONDARY"
	AssignmentTempCoverage AssignmentType = "TEMP_COVERAGE"
)

// IsIncumbent reports whether the type is a standing attachment to a
// position, as opposed to temporary coverage.
func (t AssignmentType) IsIncumbent() bool {
	return t == AssignmentPrimary || t == AssignmentSecondary
}

// Assignment lifecycle status values. The status column mirrors the
// ended_at null/non-null fact for legacy consumers; ended_at is
// authoritative for "active".
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// DefaultRotation is applied to incumbent assignments created with a
// blank rotation schedule.
const DefaultRotation = "14/14"

// Assignment attaches one worker to one position on one project for an
// interval of time. Rows are never deleted; ending sets ended_at.
type Assignment struct {
	ID                  string         `gorm:"primaryKey;size:36" json:"id"`
	WorkerID            string         `gorm:"size:36;index;not null" json:"worker_id"`
	ProjectID           string         `gorm:"size:36;index;not null" json:"project_id"`
	PositionID          string         `gorm:"size:36;index;not null" json:"position_id"`
	AssignmentType      AssignmentType `gorm:"size:16;not null" json:"assignment_type"`
	AssignmentStartDate string         `gorm:"size:10;not null" json:"assignment_start_date"`
	AssignmentEndDate   *string        `gorm:"size:10" json:"assignment_end_date"`
	EndedAt             *time.Time     `gorm:"index" json:"ended_at"`
	Status              string         `gorm:"size:16;not null" json:"status"`
	OverrideReason      *string        `json:"override_reason"`
	RotationSchedule    *string        `gorm:"size:32" json:"rotation_schedule"`
	OpconSupervisorID   *string        `gorm:"size:36" json:"opcon_supervisor_id"`
	Notes               string         `json:"notes"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// IsActive reports whether the assignment is current. Only ended_at
// matters; the status text is informational.
func (a *Assignment) IsActive() bool {
	return a.EndedAt == nil
}
