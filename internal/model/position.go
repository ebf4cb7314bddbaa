package model

import "time"

// Position is a staffable slot on a project.
type Position struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	ProjectID       string    `gorm:"size:36;index;not null" json:"project_id"`
	Title           string    `gorm:"size:256;not null" json:"title"`
	RotationDefault string    `gorm:"size:32" json:"rotation_default"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Associations
	Project Project `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
