package schedules

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/yotei/pkg/yotei/candidates"
	"github.com/example/yotei/pkg/yotei/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store owns Schedule rows and their ownership relation. Cascading deletes
// are explicit multi-step transactions here, not framework behavior.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new schedule store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create inserts a schedule with a fresh uuid and its initial candidate
// list in one transaction. The candidate labels come from the free-form
// candidates text, one slot per line; an empty resulting list is rejected
// with ErrInvalidInput and nothing is created.
func (s *Store) Create(title, candidatesText, ownerID string) (models.Schedule, []models.Candidate, error) {
	schedule := models.Schedule{
		ID:             uuid.NewString(),
		Title:          title,
		CandidatesText: candidatesText,
		CreatedBy:      ownerID,
	}

	var created []models.Candidate
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&schedule).Error; err != nil {
			return err
		}
		var err error
		created, err = candidates.CreateMany(tx, schedule.ID, candidates.SplitLabels(candidatesText))
		return err
	})
	if err != nil {
		return models.Schedule{}, nil, err
	}

	return schedule, created, nil
}

// Get returns one schedule
func (s *Store) Get(id string) (models.Schedule, error) {
	var schedule models.Schedule
	if err := s.db.First(&schedule, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Schedule{}, fmt.Errorf("%w: schedule %s", models.ErrNotFound, id)
		}
		return models.Schedule{}, err
	}
	return schedule, nil
}

// ListByOwner returns a user's schedules for their dashboard, most recently
// updated first. Ties break by id descending so the order is deterministic.
func (s *Store) ListByOwner(ownerID string) ([]models.Schedule, error) {
	var list []models.Schedule
	err := s.db.Where("created_by = ?", ownerID).
		Order("updated_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

// Touch bumps the schedule's updated_at so dashboard ordering reflects the
// latest activity under it
func (s *Store) Touch(id string) error {
	return s.db.Model(&models.Schedule{}).
		Where("id = ?", id).
		Update("updated_at", time.Now()).Error
}

// Delete removes a schedule and everything under it: its candidates, their
// availabilities, and the schedule's comments. Only the owner may delete.
// The cascade runs in one transaction; on any failure no rows are removed.
// Users are never deleted.
func (s *Store) Delete(id, requesterID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var schedule models.Schedule
		if err := tx.First(&schedule, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: schedule %s", models.ErrNotFound, id)
			}
			return err
		}
		if schedule.CreatedBy != requesterID {
			return fmt.Errorf("%w: only the owner may delete a schedule", models.ErrForbidden)
		}

		var candidateIDs []uint
		if err := tx.Model(&models.Candidate{}).
			Where("schedule_id = ?", id).
			Pluck("id", &candidateIDs).Error; err != nil {
			return err
		}
		if len(candidateIDs) > 0 {
			if err := tx.Where("candidate_id IN ?", candidateIDs).
				Delete(&models.Availability{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("schedule_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("schedule_id = ?", id).Delete(&models.Candidate{}).Error; err != nil {
			return err
		}
		return tx.Delete(&schedule).Error
	})
}
