package model

import "time"

// Vendor is a staffing agency supplying workers.
type Vendor struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"uniqueIndex;size:256;not null" json:"name"`
	ContactName  string    `gorm:"size:256" json:"contact_name"`
	ContactEmail string    `gorm:"size:256" json:"contact_email"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
