package model

import "time"

// AuditLog is an append-only record of a mutation. Old/new values are
// JSON snapshots of the row before and after.
type AuditLog struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	EntityType string    `gorm:"size:64;index;not null" json:"entity_type"`
	EntityID   string    `gorm:"size:36;index;not null" json:"entity_id"`
	Action     string    `gorm:"size:32;not null" json:"action"`
	OldValue   *string   `json:"old_value"`
	NewValue   *string   `json:"new_value"`
	Actor      string    `gorm:"size:256" json:"actor"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
}
