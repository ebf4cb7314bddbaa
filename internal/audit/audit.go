package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"crew-ops-backend/internal/model"
	"crew-ops-backend/internal/store"
)

// Entry is one append-only audit record. Old and New are snapshots of
// the affected row before and after the mutation; either may be nil.
type Entry struct {
	EntityType string
	EntityID   string
	Action     string
	Old        any
	New        any
	Actor      string
}

// Recorder is the append-only log sink mutations report to.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// storeRecorder persists audit entries through the Store.
type storeRecorder struct {
	store store.Store
}

// NewRecorder creates a store-backed audit recorder.
func NewRecorder(s store.Store) Recorder {
	return &storeRecorder{store: s}
}

func (r *storeRecorder) Record(ctx context.Context, e Entry) error {
	oldVal, err := marshalSnapshot(e.Old)
	if err != nil {
		return fmt.Errorf("marshal old value: %w", err)
	}
	newVal, err := marshalSnapshot(e.New)
	if err != nil {
		return fmt.Errorf("marshal new value: %w", err)
	}

	return r.store.RecordAudit(ctx, &model.AuditLog{
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Action:     e.Action,
		OldValue:   oldVal,
		NewValue:   newVal,
		Actor:      e.Actor,
	})
}

func marshalSnapshot(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}
