package sweeper

import (
	"context"
	"log"
	"time"

	"crew-ops-backend/config"
	"crew-ops-backend/internal/assignment"
	"crew-ops-backend/internal/model"
	"crew-ops-backend/internal/store"
)

const dateLayout = "2006-01-02"

// Dispatcher hands ended assignments to the notification worker pool.
type Dispatcher interface {
	Dispatch(assignmentID string)
}

// Service periodically completes TEMP_COVERAGE assignments whose end
// date has passed. Incumbent assignments are never auto-ended; they
// stay active until someone ends them.
type Service struct {
	cfg         *config.Config
	store       store.Store
	assignments *assignment.Service
	dispatcher  Dispatcher
	now         func() time.Time
}

// NewService creates and initializes a new sweeper service.
func NewService(cfg *config.Config, s store.Store, svc *assignment.Service, d Dispatcher) *Service {
	return &Service{
		cfg:         cfg,
		store:       s,
		assignments: svc,
		dispatcher:  d,
		now:         time.Now,
	}
}

// Run starts the sweep process in a loop.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Sweeper.Enabled {
		log.Println("Sweeper is disabled. Not starting.")
		return
	}
	log.Println("Starting coverage-expiry sweeper...")

	s.SweepOnce(ctx)

	timer := time.NewTimer(s.cfg.Sweeper.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Sweeper shutting down.")
			return
		case <-timer.C:
			s.SweepOnce(ctx)
			timer.Reset(s.cfg.Sweeper.Interval)
		}
	}
}

// SweepOnce performs a single sweep and returns how many assignments
// were completed. Failures on individual rows are logged and skipped so
// one bad row cannot wedge the sweep.
func (s *Service) SweepOnce(ctx context.Context) int {
	today := s.now().Format(dateLayout)

	rows, err := s.store.ListAssignments(ctx, store.AssignmentFilter{
		Type: model.AssignmentTempCoverage,
	})
	if err != nil {
		log.Printf("Sweep failed to list coverage assignments: %v", err)
		return 0
	}

	ended := 0
	for _, row := range rows {
		if row.AssignmentEndDate == nil || *row.AssignmentEndDate >= today {
			continue
		}

		res, err := s.assignments.End(ctx, assignment.EndInput{
			AssignmentID: row.ID,
			EndStatus:    model.StatusCompleted,
			Actor:        "system:sweeper",
		})
		if err != nil {
			log.Printf("Sweep failed to end assignment %s: %v", row.ID, err)
			continue
		}
		for _, w := range res.Warnings {
			log.Printf("Sweep warning for assignment %s: %s", row.ID, w)
		}
		if s.dispatcher != nil {
			s.dispatcher.Dispatch(row.ID)
		}
		ended++
	}

	if ended > 0 {
		log.Printf("Sweep completed %d expired coverage assignment(s)", ended)
	}
	return ended
}
