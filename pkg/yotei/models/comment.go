package models

import "time"

// Comment represents a participant's free-text note on a schedule.
// At most one row exists per (user, schedule); writing again overwrites.
type Comment struct {
	UserID     string    `gorm:"primaryKey" json:"user_id"`
	ScheduleID string    `gorm:"primaryKey" json:"schedule_id"`
	Text       string    `json:"text"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relationships
	User     User     `gorm:"foreignKey:UserID;references:ExternalID" json:"user,omitempty"`
	Schedule Schedule `gorm:"foreignKey:ScheduleID" json:"schedule,omitempty"`
}
