package assignment

import (
	"context"

	"crew-ops-backend/internal/model"
)

// Resolution is the outcome of the type-resolution decision procedure.
// Conflict carries the worker's active PRIMARY assignment when one
// exists, for display alongside the override prompt.
type Resolution struct {
	Type             model.AssignmentType `json:"type"`
	RequiresOverride bool                 `json:"requires_override"`
	Conflict         *model.Assignment    `json:"conflict,omitempty"`
}

// ResolveType decides how a requested incumbent assignment may be
// created. No active PRIMARY for the worker: the request stands as
// PRIMARY. An active PRIMARY exists: the request is downgraded to
// SECONDARY and a non-blank override reason becomes mandatory.
//
// TEMP_COVERAGE is never auto-resolved; it has its own entry point
// (CreateCoverage) and overlaps an incumbent by design.
func (s *Service) ResolveType(ctx context.Context, workerID string) (Resolution, error) {
	existing, err := s.repo.FindActivePrimary(ctx, workerID)
	if err != nil {
		return Resolution{}, err
	}
	if existing == nil {
		return Resolution{Type: model.AssignmentPrimary}, nil
	}
	return Resolution{
		Type:             model.AssignmentSecondary,
		RequiresOverride: true,
		Conflict:         existing,
	}, nil
}

// PositionConflict returns the active incumbent on a position, nil when
// the position is unfilled. Informational only; coverage requests are
// never rejected on it.
func (s *Service) PositionConflict(ctx context.Context, positionID string) (*model.Assignment, error) {
	return s.repo.FindActiveIncumbent(ctx, positionID)
}
