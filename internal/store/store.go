package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crew-ops-backend/internal/apperr"
	"crew-ops-backend/internal/model"
)

// Store defines the interface for all assignment-related database
// operations. Reference-data CRUD goes through DB() directly.
type Store interface {
	DB() *gorm.DB

	ListAssignments(ctx context.Context, f AssignmentFilter) ([]model.Assignment, error)
	GetAssignment(ctx context.Context, id string) (*model.Assignment, error)
	InsertAssignment(ctx context.Context, row *model.Assignment) (*model.Assignment, error)
	UpdateAssignment(ctx context.Context, id string, patch map[string]any) (*model.Assignment, error)
	FindActivePrimary(ctx context.Context, workerID string) (*model.Assignment, error)
	FindActiveIncumbent(ctx context.Context, positionID string) (*model.Assignment, error)

	RecordAudit(ctx context.Context, entry *model.AuditLog) error
	ListAuditLogs(ctx context.Context, f AuditFilter) ([]model.AuditLog, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// ListAssignments returns assignments matching the filter, newest first.
func (s *gormStore) ListAssignments(ctx context.Context, f AssignmentFilter) ([]model.Assignment, error) {
	q := s.db.WithContext(ctx).Model(&model.Assignment{})
	if f.WorkerID != "" {
		q = q.Where("worker_id = ?", f.WorkerID)
	}
	if f.ProjectID != "" {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	if f.PositionID != "" {
		q = q.Where("position_id = ?", f.PositionID)
	}
	if f.Type != "" {
		q = q.Where("assignment_type = ?", f.Type)
	}
	if !f.IncludeEnded {
		q = q.Where("ended_at IS NULL")
	}

	var rows []model.Assignment
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, translate("list assignments", err)
	}
	return rows, nil
}

func (s *gormStore) GetAssignment(ctx context.Context, id string) (*model.Assignment, error) {
	var row model.Assignment
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("assignment not found", err)
		}
		return nil, translate("get assignment", err)
	}
	return &row, nil
}

// InsertAssignment persists a new row and returns the authoritative
// stored record. A uniqueness violation surfaces as CONFLICT.
func (s *gormStore) InsertAssignment(ctx context.Context, row *model.Assignment) (*model.Assignment, error) {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("worker or position already has an active assignment", err)
		}
		return nil, translate("insert assignment", err)
	}
	return s.GetAssignment(ctx, row.ID)
}

// UpdateAssignment applies a column patch and returns the stored row
// after the write (read-after-write confirmation).
func (s *gormStore) UpdateAssignment(ctx context.Context, id string, patch map[string]any) (*model.Assignment, error) {
	res := s.db.WithContext(ctx).Model(&model.Assignment{}).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return nil, translate("update assignment", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("assignment not found", gorm.ErrRecordNotFound)
	}
	return s.GetAssignment(ctx, id)
}

// FindActivePrimary returns the worker's active PRIMARY assignment, or
// nil when none exists. Zero rows is not an error.
func (s *gormStore) FindActivePrimary(ctx context.Context, workerID string) (*model.Assignment, error) {
	return s.findActive(ctx, "worker_id = ? AND assignment_type = ?",
		workerID, model.AssignmentPrimary)
}

// FindActiveIncumbent returns the position's active PRIMARY or SECONDARY
// assignment, or nil when the position is unfilled.
func (s *gormStore) FindActiveIncumbent(ctx context.Context, positionID string) (*model.Assignment, error) {
	return s.findActive(ctx, "position_id = ? AND assignment_type IN ?",
		positionID, []model.AssignmentType{model.AssignmentPrimary, model.AssignmentSecondary})
}

func (s *gormStore) findActive(ctx context.Context, cond string, args ...any) (*model.Assignment, error) {
	var row model.Assignment
	err := s.db.WithContext(ctx).
		Where(cond, args...).
		Where("ended_at IS NULL").
		Order("created_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate("find active assignment", err)
	}
	return &row, nil
}

// RecordAudit appends an audit entry. Never updates or deletes.
func (s *gormStore) RecordAudit(ctx context.Context, entry *model.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return translate("record audit", err)
	}
	return nil
}

func (s *gormStore) ListAuditLogs(ctx context.Context, f AuditFilter) ([]model.AuditLog, error) {
	q := s.db.WithContext(ctx).Model(&model.AuditLog{})
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != "" {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	var rows []model.AuditLog
	if err := q.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, translate("list audit logs", err)
	}
	return rows, nil
}

// translate wraps an opaque gorm failure into the DB_ERROR kind.
func translate(op string, err error) error {
	return apperr.DB(op+" failed", err)
}
