package model

import "time"

// Worker is a person who can be assigned to positions.
type Worker struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	FullName  string    `gorm:"size:256;not null" json:"full_name"`
	VendorID  *string   `gorm:"size:36;index" json:"vendor_id"`
	Email     string    `gorm:"size:256" json:"email"`
	Phone     string    `gorm:"size:64" json:"phone"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
