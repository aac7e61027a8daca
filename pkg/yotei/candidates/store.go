package candidates

import (
	"fmt"
	"strings"

	"github.com/example/yotei/pkg/yotei/models"
	"gorm.io/gorm"
)

// Store owns the candidate set of a schedule. Candidates are append-only:
// once created they are never updated, reordered, or deleted while the
// schedule lives, so availability rows can never be orphaned by an edit.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new candidate store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// SplitLabels turns free-form candidate text (one slot per line) into a
// cleaned label list. Blank lines are dropped.
func SplitLabels(text string) []string {
	var labels []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			labels = append(labels, line)
		}
	}
	return labels
}

// CreateMany appends candidates to a schedule, assigning display order
// after the schedule's current maximum (0..n-1 for a fresh schedule).
// An empty label list is rejected with ErrInvalidInput and creates no rows.
// Runs on the handle it is given so callers can include it in a wider
// transaction.
func CreateMany(db *gorm.DB, scheduleID string, labels []string) ([]models.Candidate, error) {
	cleaned := make([]string, 0, len(labels))
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label != "" {
			cleaned = append(cleaned, label)
		}
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("%w: candidate label list is empty", models.ErrInvalidInput)
	}

	var next int
	row := db.Model(&models.Candidate{}).
		Where("schedule_id = ?", scheduleID).
		Select("COALESCE(MAX(display_order) + 1, 0)").
		Row()
	if err := row.Scan(&next); err != nil {
		return nil, err
	}

	created := make([]models.Candidate, len(cleaned))
	for i, label := range cleaned {
		created[i] = models.Candidate{
			ScheduleID:   scheduleID,
			Label:        label,
			DisplayOrder: next + i,
		}
	}
	if err := db.Create(&created).Error; err != nil {
		return nil, err
	}

	return created, nil
}

// CreateMany appends candidates using the store's own connection
func (s *Store) CreateMany(scheduleID string, labels []string) ([]models.Candidate, error) {
	return CreateMany(s.db, scheduleID, labels)
}

// ListBySchedule returns a schedule's candidates in display order
func (s *Store) ListBySchedule(scheduleID string) ([]models.Candidate, error) {
	var list []models.Candidate
	err := s.db.Where("schedule_id = ?", scheduleID).
		Order("display_order ASC").
		Find(&list).Error
	return list, err
}
