package models

import (
	"fmt"
	"time"
)

// AvailabilityStatus represents a participant's mark for one candidate slot
type AvailabilityStatus string

const (
	StatusYes       AvailabilityStatus = "yes"
	StatusNo        AvailabilityStatus = "no"
	StatusUndecided AvailabilityStatus = "undecided"
)

// ParseStatus validates a raw status value
func ParseStatus(s string) (AvailabilityStatus, error) {
	switch AvailabilityStatus(s) {
	case StatusYes, StatusNo, StatusUndecided:
		return AvailabilityStatus(s), nil
	}
	return "", fmt.Errorf("%w: unknown availability status %q", ErrInvalidInput, s)
}

// Availability represents one participant's mark for one candidate.
// At most one row exists per (user, candidate); writing again overwrites.
// A missing row reads as undecided.
type Availability struct {
	UserID      string             `gorm:"primaryKey" json:"user_id"`
	CandidateID uint               `gorm:"primaryKey;autoIncrement:false" json:"candidate_id"`
	Status      AvailabilityStatus `gorm:"type:varchar(10);not null" json:"status"`
	UpdatedAt   time.Time          `json:"updated_at"`

	// Relationships
	User      User      `gorm:"foreignKey:UserID;references:ExternalID" json:"user,omitempty"`
	Candidate Candidate `gorm:"foreignKey:CandidateID" json:"candidate,omitempty"`
}
