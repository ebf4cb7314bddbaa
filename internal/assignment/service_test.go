package assignment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crew-ops-backend/internal/apperr"
	"crew-ops-backend/internal/audit"
	"crew-ops-backend/internal/model"
)

// fakeRepo is an in-memory Repository for exercising the rules without
// a database.
type fakeRepo struct {
	rows      map[string]*model.Assignment
	seq       int
	insertErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[string]*model.Assignment)}
}

func (r *fakeRepo) FindActivePrimary(_ context.Context, workerID string) (*model.Assignment, error) {
	var latest *model.Assignment
	for _, row := range r.rows {
		if row.WorkerID == workerID && row.AssignmentType == model.AssignmentPrimary && row.EndedAt == nil {
			if latest == nil || row.CreatedAt.After(latest.CreatedAt) {
				latest = row
			}
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r *fakeRepo) FindActiveIncumbent(_ context.Context, positionID string) (*model.Assignment, error) {
	for _, row := range r.rows {
		if row.PositionID == positionID && row.AssignmentType.IsIncumbent() && row.EndedAt == nil {
			cp := *row
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) GetAssignment(_ context.Context, id string) (*model.Assignment, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, apperr.NotFound("assignment not found", nil)
	}
	cp := *row
	return &cp, nil
}

func (r *fakeRepo) InsertAssignment(_ context.Context, row *model.Assignment) (*model.Assignment, error) {
	if r.insertErr != nil {
		return nil, r.insertErr
	}
	r.seq++
	stored := *row
	stored.ID = fmt.Sprintf("asg-%d", r.seq)
	stored.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	r.rows[stored.ID] = &stored
	cp := stored
	return &cp, nil
}

func (r *fakeRepo) UpdateAssignment(_ context.Context, id string, patch map[string]any) (*model.Assignment, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, apperr.NotFound("assignment not found", nil)
	}
	if v, ok := patch["ended_at"]; ok {
		t := v.(time.Time)
		row.EndedAt = &t
	}
	if v, ok := patch["status"]; ok {
		row.Status = v.(string)
	}
	cp := *row
	return &cp, nil
}

// fakeRecorder captures audit entries and can be told to fail.
type fakeRecorder struct {
	entries []audit.Entry
	err     error
}

func (f *fakeRecorder) Record(_ context.Context, e audit.Entry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, e)
	return nil
}

func newTestService() (*Service, *fakeRepo, *fakeRecorder) {
	repo := newFakeRepo()
	rec := &fakeRecorder{}
	svc := NewService(repo, rec)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	}
	return svc, repo, rec
}

func validInput() CreateInput {
	return CreateInput{
		WorkerID:   "w1",
		ProjectID:  "pr1",
		PositionID: "p1",
		Actor:      "tester",
	}
}

func TestResolveType(t *testing.T) {
	ctx := context.Background()

	t.Run("no active primary resolves to PRIMARY", func(t *testing.T) {
		svc, _, _ := newTestService()

		res, err := svc.ResolveType(ctx, "w1")
		require.NoError(t, err)
		assert.Equal(t, model.AssignmentPrimary, res.Type)
		assert.False(t, res.RequiresOverride)
		assert.Nil(t, res.Conflict)
	})

	t.Run("active primary resolves to SECONDARY with override", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.Create(ctx, validInput())
		require.NoError(t, err)

		res, err := svc.ResolveType(ctx, "w1")
		require.NoError(t, err)
		assert.Equal(t, model.AssignmentSecondary, res.Type)
		assert.True(t, res.RequiresOverride)
		require.NotNil(t, res.Conflict)
		assert.Equal(t, "w1", res.Conflict.WorkerID)
	})

	t.Run("ended primary does not conflict", func(t *testing.T) {
		svc, _, _ := newTestService()
		created, err := svc.Create(ctx, validInput())
		require.NoError(t, err)
		_, err = svc.End(ctx, EndInput{AssignmentID: created.Assignment.ID})
		require.NoError(t, err)

		res, err := svc.ResolveType(ctx, "w1")
		require.NoError(t, err)
		assert.Equal(t, model.AssignmentPrimary, res.Type)
	})
}

func TestCreate_ValidationOrder(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name   string
		mutate func(*CreateInput)
		field  string
	}{
		{"missing worker", func(in *CreateInput) { in.WorkerID = "" }, "worker_id"},
		{"blank worker", func(in *CreateInput) { in.WorkerID = "   " }, "worker_id"},
		{"missing project", func(in *CreateInput) { in.ProjectID = "" }, "project_id"},
		{"missing position", func(in *CreateInput) { in.PositionID = "" }, "position_id"},
		{"worker checked before project", func(in *CreateInput) {
			in.WorkerID = ""
			in.ProjectID = ""
		}, "worker_id"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _ := newTestService()
			in := validInput()
			tc.mutate(&in)

			_, err := svc.Create(ctx, in)
			require.Error(t, err)
			var ae *apperr.Error
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, apperr.KindValidation, ae.Kind)
			assert.Equal(t, tc.field, ae.Field)
		})
	}
}

func TestCreate_PrimaryDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _, rec := newTestService()

	in := validInput()
	in.OverrideReason = "should be discarded for primary"
	res, err := svc.Create(ctx, in)
	require.NoError(t, err)

	row := res.Assignment
	assert.Equal(t, model.AssignmentPrimary, row.AssignmentType)
	assert.Equal(t, model.StatusActive, row.Status)
	assert.Nil(t, row.EndedAt)
	assert.Nil(t, row.OverrideReason, "override reason is not meaningful for PRIMARY")
	require.NotNil(t, row.RotationSchedule)
	assert.Equal(t, model.DefaultRotation, *row.RotationSchedule)
	assert.Equal(t, "2026-03-14", row.AssignmentStartDate, "start date defaults to today")

	assert.ElementsMatch(t, []string{"assignments", "audit_logs"}, res.Changed)
	require.Len(t, rec.entries, 1)
	assert.Equal(t, "assignment", rec.entries[0].EntityType)
	assert.Equal(t, "ADD", rec.entries[0].Action)
	assert.Nil(t, rec.entries[0].Old)
}

func TestCreate_SecondaryRequiresOverride(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	// Worker w1 holds an active PRIMARY on p1/pr1.
	_, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	// A second incumbent request for w1 on another position.
	second := CreateInput{WorkerID: "w1", ProjectID: "pr2", PositionID: "p2"}
	_, err = svc.Create(ctx, second)
	require.Error(t, err)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	assert.Equal(t, "override_reason", ae.Field)

	second.OverrideReason = "covering shortage"
	res, err := svc.Create(ctx, second)
	require.NoError(t, err)
	row := res.Assignment
	assert.Equal(t, "w1", row.WorkerID)
	assert.Equal(t, model.AssignmentSecondary, row.AssignmentType)
	require.NotNil(t, row.OverrideReason)
	assert.Equal(t, "covering shortage", *row.OverrideReason)
	assert.Nil(t, row.EndedAt)
}

func TestCreate_CustomRotationKept(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	in := validInput()
	in.RotationSchedule = "28/28"
	res, err := svc.Create(ctx, in)
	require.NoError(t, err)
	require.NotNil(t, res.Assignment.RotationSchedule)
	assert.Equal(t, "28/28", *res.Assignment.RotationSchedule)
}

func TestCreateCoverage(t *testing.T) {
	ctx := context.Background()

	base := func() CreateInput {
		in := validInput()
		in.StartDate = "2026-03-01"
		in.EndDate = "2026-03-15"
		in.OverrideReason = "incumbent on leave"
		return in
	}

	t.Run("missing start date", func(t *testing.T) {
		svc, _, _ := newTestService()
		in := base()
		in.StartDate = ""
		_, err := svc.CreateCoverage(ctx, in)
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, apperr.KindValidation, ae.Kind)
		assert.Equal(t, "assignment_start_date", ae.Field)
	})

	t.Run("missing end date", func(t *testing.T) {
		svc, _, _ := newTestService()
		in := base()
		in.EndDate = ""
		_, err := svc.CreateCoverage(ctx, in)
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, "assignment_end_date", ae.Field)
	})

	t.Run("missing override reason", func(t *testing.T) {
		svc, _, _ := newTestService()
		in := base()
		in.OverrideReason = ""
		_, err := svc.CreateCoverage(ctx, in)
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, "override_reason", ae.Field)
	})

	t.Run("coverage overlaps an incumbent without rejection", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.Create(ctx, validInput())
		require.NoError(t, err)

		res, err := svc.CreateCoverage(ctx, base())
		require.NoError(t, err)
		row := res.Assignment
		assert.Equal(t, model.AssignmentTempCoverage, row.AssignmentType)
		require.NotNil(t, row.AssignmentEndDate)
		assert.Equal(t, "2026-03-15", *row.AssignmentEndDate)
		assert.Nil(t, row.RotationSchedule, "rotation stays null for coverage when blank")
	})
}

func TestEnd(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to completed now", func(t *testing.T) {
		svc, _, rec := newTestService()
		created, err := svc.Create(ctx, validInput())
		require.NoError(t, err)

		res, err := svc.End(ctx, EndInput{AssignmentID: created.Assignment.ID})
		require.NoError(t, err)
		row := res.Assignment
		require.NotNil(t, row.EndedAt)
		assert.Equal(t, model.StatusCompleted, row.Status)
		assert.Equal(t, svc.now().UTC(), *row.EndedAt)

		require.Len(t, rec.entries, 2)
		last := rec.entries[1]
		assert.Equal(t, "DEACTIVATE", last.Action)
		assert.NotNil(t, last.Old)
		assert.NotNil(t, last.New)
	})

	t.Run("cancelled", func(t *testing.T) {
		svc, _, _ := newTestService()
		created, err := svc.Create(ctx, validInput())
		require.NoError(t, err)

		res, err := svc.End(ctx, EndInput{AssignmentID: created.Assignment.ID, EndStatus: model.StatusCancelled})
		require.NoError(t, err)
		assert.Equal(t, model.StatusCancelled, res.Assignment.Status)
		require.NotNil(t, res.Assignment.EndedAt)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		svc, _, _ := newTestService()
		created, err := svc.Create(ctx, validInput())
		require.NoError(t, err)

		_, err = svc.End(ctx, EndInput{AssignmentID: created.Assignment.ID, EndStatus: "paused"})
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, apperr.KindValidation, ae.Kind)
		assert.Equal(t, "end_status", ae.Field)
	})

	t.Run("re-ending keeps the assignment ended", func(t *testing.T) {
		svc, _, _ := newTestService()
		created, err := svc.Create(ctx, validInput())
		require.NoError(t, err)

		first, err := svc.End(ctx, EndInput{AssignmentID: created.Assignment.ID})
		require.NoError(t, err)
		require.NotNil(t, first.Assignment.EndedAt)

		second, err := svc.End(ctx, EndInput{AssignmentID: created.Assignment.ID, EndStatus: model.StatusCancelled})
		require.NoError(t, err, "re-ending is permissive, last write wins")
		require.NotNil(t, second.Assignment.EndedAt)
		assert.Equal(t, model.StatusCancelled, second.Assignment.Status)
	})

	t.Run("unknown assignment", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.End(ctx, EndInput{AssignmentID: "missing"})
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestAuditFailureIsAWarning(t *testing.T) {
	ctx := context.Background()
	svc, _, rec := newTestService()
	rec.err = errors.New("audit sink down")

	res, err := svc.Create(ctx, validInput())
	require.NoError(t, err, "audit failure must not roll back the create")
	require.NotNil(t, res.Assignment)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "audit entry was not recorded")
	assert.NotContains(t, res.Changed, "audit_logs")
}

func TestCreate_StoreConflictPropagates(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService()
	repo.insertErr = apperr.Conflict("worker or position already has an active assignment", nil)

	_, err := svc.Create(ctx, validInput())
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}
