package comments

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/yotei/pkg/yotei/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store keeps at most one free-text comment per (user, schedule).
// Writing again overwrites; an empty text is a valid "clear".
type Store struct {
	db *gorm.DB
}

// NewStore creates a new comment store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Set upserts the user's comment on a schedule and touches the schedule
func (s *Store) Set(userID, scheduleID, text string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var schedule models.Schedule
		if err := tx.First(&schedule, "id = ?", scheduleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: schedule %s", models.ErrNotFound, scheduleID)
			}
			return err
		}

		comment := models.Comment{
			UserID:     userID,
			ScheduleID: scheduleID,
			Text:       text,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "schedule_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"text", "updated_at"}),
		}).Create(&comment).Error; err != nil {
			return err
		}

		return tx.Model(&models.Schedule{}).
			Where("id = ?", scheduleID).
			Update("updated_at", time.Now()).Error
	})
}

// ListBySchedule returns the schedule's comments as a userID -> text map
func (s *Store) ListBySchedule(scheduleID string) (map[string]string, error) {
	var rows []models.Comment
	if err := s.db.Where("schedule_id = ?", scheduleID).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.UserID] = row.Text
	}
	return out, nil
}
