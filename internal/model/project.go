package model

import "time"

// Project represents a customer engagement that positions hang off.
type Project struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Name       string    `gorm:"size:256;not null" json:"name"`
	CustomerID *string   `gorm:"size:36;index" json:"customer_id"`
	VendorID   *string   `gorm:"size:36;index" json:"vendor_id"`
	Status     string    `gorm:"size:64" json:"status"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Associations
	Positions []Position `gorm:"foreignKey:ProjectID" json:"positions,omitempty"`
}
