package models

import "time"

// Schedule represents one scheduling poll: a title plus a list of candidate
// slots. The owner is fixed at creation and never reassigned. UpdatedAt is
// bumped whenever anything under the schedule changes, so dashboards can
// order by latest activity.
type Schedule struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title          string    `gorm:"not null" json:"title"`
	CandidatesText string    `json:"candidates_text"`
	CreatedBy      string    `gorm:"not null;index" json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relationships
	Owner User `gorm:"foreignKey:CreatedBy;references:ExternalID" json:"owner,omitempty"`
}
