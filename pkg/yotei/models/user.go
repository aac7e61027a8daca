package models

import "time"

// User represents a local account backed by an external identity provider.
// Rows are created or refreshed only by identity.Reconcile; nothing in this
// system ever deletes one.
type User struct {
	ExternalID  string    `gorm:"primaryKey" json:"external_id"`
	DisplayName string    `gorm:"not null" json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
