package assignment

import (
	"context"
	"strings"
	"time"

	"crew-ops-backend/internal/apperr"
	"crew-ops-backend/internal/audit"
	"crew-ops-backend/internal/model"
)

const dateLayout = "2006-01-02"

// CreateInput carries the caller-supplied fields for a new assignment.
// The assignment type is not an input: incumbent requests are resolved
// by ResolveType, coverage requests go through CreateCoverage.
type CreateInput struct {
	WorkerID          string  `json:"worker_id"`
	ProjectID         string  `json:"project_id"`
	PositionID        string  `json:"position_id"`
	StartDate         string  `json:"assignment_start_date"`
	EndDate           string  `json:"assignment_end_date"`
	OverrideReason    string  `json:"override_reason"`
	RotationSchedule  string  `json:"rotation_schedule"`
	OpconSupervisorID *string `json:"opcon_supervisor_id"`
	Notes             string  `json:"notes"`
	Actor             string  `json:"-"`
}

// EndInput carries the fields for terminating an assignment. EndStatus
// defaults to "completed" and EndedAt to now.
type EndInput struct {
	AssignmentID string     `json:"assignment_id"`
	EndStatus    string     `json:"end_status"`
	EndedAt      *time.Time `json:"ended_at"`
	Actor        string     `json:"-"`
}

// Create resolves and creates an incumbent (PRIMARY or SECONDARY)
// assignment. When the worker already holds an active PRIMARY the
// request is downgraded to SECONDARY and rejected unless a non-blank
// override reason is supplied.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Result, error) {
	if err := validateIDs(in); err != nil {
		return nil, err
	}

	res, err := s.ResolveType(ctx, in.WorkerID)
	if err != nil {
		return nil, err
	}

	row := s.buildRow(in, res.Type)
	switch res.Type {
	case model.AssignmentPrimary:
		// Not required, not meaningful for PRIMARY.
		row.OverrideReason = nil
	case model.AssignmentSecondary:
		if blank(in.OverrideReason) {
			return nil, apperr.Validation("override_reason",
				"worker already has an active PRIMARY assignment; an override reason is required to create a SECONDARY assignment")
		}
	}

	if blank(row.AssignmentStartDate) {
		row.AssignmentStartDate = s.now().Format(dateLayout)
	}
	if row.RotationSchedule == nil {
		rot := model.DefaultRotation
		row.RotationSchedule = &rot
	}

	return s.insert(ctx, row, in.Actor)
}

// CreateCoverage creates a TEMP_COVERAGE assignment. Coverage always
// overlaps an incumbent by design and is never rejected on conflict;
// start date, end date and override reason are all mandatory.
func (s *Service) CreateCoverage(ctx context.Context, in CreateInput) (*Result, error) {
	if err := validateIDs(in); err != nil {
		return nil, err
	}
	if blank(in.StartDate) {
		return nil, apperr.Validation("assignment_start_date",
			"a start date is required for temp coverage")
	}
	if blank(in.EndDate) {
		return nil, apperr.Validation("assignment_end_date",
			"an end date is required for temp coverage")
	}
	if blank(in.OverrideReason) {
		return nil, apperr.Validation("override_reason",
			"an override reason is required for temp coverage")
	}

	// Rotation stays null for coverage when the caller left it blank.
	return s.insert(ctx, s.buildRow(in, model.AssignmentTempCoverage), in.Actor)
}

// End terminates an assignment by setting ended_at and the mirrored
// status text. One-way: there is no reactivation path. Re-ending an
// already-ended assignment is permissive, last write wins.
func (s *Service) End(ctx context.Context, in EndInput) (*Result, error) {
	if blank(in.AssignmentID) {
		return nil, apperr.Validation("assignment_id", "an assignment id is required")
	}

	endStatus := in.EndStatus
	if blank(endStatus) {
		endStatus = model.StatusCompleted
	}
	if endStatus != model.StatusCompleted && endStatus != model.StatusCancelled {
		return nil, apperr.Validation("end_status",
			"end status must be \"completed\" or \"cancelled\"")
	}

	before, err := s.repo.GetAssignment(ctx, in.AssignmentID)
	if err != nil {
		return nil, err
	}

	endedAt := s.now().UTC()
	if in.EndedAt != nil {
		endedAt = *in.EndedAt
	}

	after, err := s.repo.UpdateAssignment(ctx, in.AssignmentID, map[string]any{
		"ended_at": endedAt,
		"status":   endStatus,
	})
	if err != nil {
		return nil, err
	}

	res := &Result{Assignment: after, Changed: []string{"assignments"}}
	s.record(ctx, res, audit.Entry{
		EntityType: "assignment",
		EntityID:   after.ID,
		Action:     "DEACTIVATE",
		Old:        before,
		New:        after,
		Actor:      in.Actor,
	})
	return res, nil
}

func (s *Service) buildRow(in CreateInput, t model.AssignmentType) *model.Assignment {
	row := &model.Assignment{
		WorkerID:            in.WorkerID,
		ProjectID:           in.ProjectID,
		PositionID:          in.PositionID,
		AssignmentType:      t,
		AssignmentStartDate: in.StartDate,
		Status:              model.StatusActive,
		EndedAt:             nil,
		OpconSupervisorID:   in.OpconSupervisorID,
		Notes:               in.Notes,
	}
	if !blank(in.EndDate) {
		d := in.EndDate
		row.AssignmentEndDate = &d
	}
	if !blank(in.OverrideReason) {
		r := in.OverrideReason
		row.OverrideReason = &r
	}
	if !blank(in.RotationSchedule) {
		rot := in.RotationSchedule
		row.RotationSchedule = &rot
	}
	return row
}

func (s *Service) insert(ctx context.Context, row *model.Assignment, actor string) (*Result, error) {
	stored, err := s.repo.InsertAssignment(ctx, row)
	if err != nil {
		return nil, err
	}

	res := &Result{Assignment: stored, Changed: []string{"assignments"}}
	s.record(ctx, res, audit.Entry{
		EntityType: "assignment",
		EntityID:   stored.ID,
		Action:     "ADD",
		New:        stored,
		Actor:      actor,
	})
	return res, nil
}

// validateIDs checks the fields every assignment type requires, in the
// order worker, project, position. The first missing field wins.
func validateIDs(in CreateInput) error {
	if blank(in.WorkerID) {
		return apperr.Validation("worker_id", "a worker is required")
	}
	if blank(in.ProjectID) {
		return apperr.Validation("project_id", "a project is required")
	}
	if blank(in.PositionID) {
		return apperr.Validation("position_id", "a position is required")
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
