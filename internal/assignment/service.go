package assignment

import (
	"context"
	"time"

	"crew-ops-backend/internal/audit"
	"crew-ops-backend/internal/model"
)

// Repository is the slice of the store the assignment core needs. It is
// injected so the rules can be exercised against a fake in tests.
type Repository interface {
	FindActivePrimary(ctx context.Context, workerID string) (*model.Assignment, error)
	FindActiveIncumbent(ctx context.Context, positionID string) (*model.Assignment, error)
	GetAssignment(ctx context.Context, id string) (*model.Assignment, error)
	InsertAssignment(ctx context.Context, row *model.Assignment) (*model.Assignment, error)
	UpdateAssignment(ctx context.Context, id string, patch map[string]any) (*model.Assignment, error)
}

// Service implements the assignment lifecycle rules: conflict checking,
// type resolution and the create/end state transitions.
type Service struct {
	repo     Repository
	recorder audit.Recorder
	now      func() time.Time
}

// NewService creates the assignment service.
func NewService(repo Repository, recorder audit.Recorder) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
		now:      time.Now,
	}
}

// Result is returned by every mutation. Assignment is the authoritative
// stored row read back after the write. Changed names the entity sets
// the mutation touched, so callers can invalidate whatever they cache.
// Warnings carry secondary failures (such as a failed audit append)
// that did not roll back the primary operation.
type Result struct {
	Assignment *model.Assignment
	Changed    []string
	Warnings   []string
}

// record appends an audit entry and converts a failure into a warning
// on the result. Audit and assignment writes are not transactional
// across the two stores; the primary write's success stands.
func (s *Service) record(ctx context.Context, res *Result, e audit.Entry) {
	if err := s.recorder.Record(ctx, e); err != nil {
		res.Warnings = append(res.Warnings, "audit entry was not recorded: "+err.Error())
		return
	}
	res.Changed = append(res.Changed, "audit_logs")
}
