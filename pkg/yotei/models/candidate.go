package models

// Candidate represents one proposed time-slot belonging to a schedule.
// Candidates are immutable once created; DisplayOrder is unique within a
// schedule and defines the presentation order.
type Candidate struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	ScheduleID   string `gorm:"not null;uniqueIndex:idx_schedule_order" json:"schedule_id"`
	Label        string `gorm:"not null" json:"label"`
	DisplayOrder int    `gorm:"not null;uniqueIndex:idx_schedule_order" json:"display_order"`

	// Relationships
	Schedule Schedule `gorm:"foreignKey:ScheduleID" json:"schedule,omitempty"`
}
