package model

import "time"

// Customer is the client organization a project is run for.
type Customer struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	Name             string    `gorm:"uniqueIndex;size:256;not null" json:"name"`
	AccountManagerID *string   `gorm:"size:36" json:"account_manager_id"`
	ContactEmail     string    `gorm:"size:256" json:"contact_email"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
