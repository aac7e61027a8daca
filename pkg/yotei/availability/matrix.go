package availability

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/yotei/pkg/yotei/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Matrix is the sparse (user, candidate) -> status mapping. Each write
// targets one uniquely-identified cell and overwrites atomically; a missing
// cell reads as undecided.
type Matrix struct {
	db *gorm.DB
}

// NewMatrix creates a new availability matrix over the given database
func NewMatrix(db *gorm.DB) *Matrix {
	return &Matrix{db: db}
}

// Cell is one entry of a participant's submission
type Cell struct {
	CandidateID uint
	Status      models.AvailabilityStatus
}

// Set upserts one cell. Fails with ErrNotFound if the candidate does not
// exist. The owning schedule is touched in the same transaction so dashboard
// ordering reflects the activity.
func (m *Matrix) Set(userID string, candidateID uint, status models.AvailabilityStatus) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		var candidate models.Candidate
		if err := tx.First(&candidate, candidateID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: candidate %d", models.ErrNotFound, candidateID)
			}
			return err
		}

		if err := upsertCell(tx, userID, candidateID, status); err != nil {
			return err
		}

		return touchSchedule(tx, candidate.ScheduleID)
	})
}

// SetMany applies one participant's whole submission for a schedule as a
// single unit. If any candidate id is unknown or belongs to another
// schedule, nothing is written and ErrConflict is returned.
func (m *Matrix) SetMany(userID, scheduleID string, cells []Cell) error {
	if len(cells) == 0 {
		return nil
	}

	return m.db.Transaction(func(tx *gorm.DB) error {
		var schedule models.Schedule
		if err := tx.First(&schedule, "id = ?", scheduleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: schedule %s", models.ErrNotFound, scheduleID)
			}
			return err
		}

		var candidateIDs []uint
		if err := tx.Model(&models.Candidate{}).
			Where("schedule_id = ?", scheduleID).
			Pluck("id", &candidateIDs).Error; err != nil {
			return err
		}
		known := make(map[uint]bool, len(candidateIDs))
		for _, id := range candidateIDs {
			known[id] = true
		}

		// Validate the whole submission before writing anything
		for _, cell := range cells {
			if !known[cell.CandidateID] {
				return fmt.Errorf("%w: candidate %d is not part of schedule %s",
					models.ErrConflict, cell.CandidateID, scheduleID)
			}
		}

		for _, cell := range cells {
			if err := upsertCell(tx, userID, cell.CandidateID, cell.Status); err != nil {
				return err
			}
		}

		return touchSchedule(tx, scheduleID)
	})
}

// Get returns the stored status of one cell, defaulting to undecided when
// no row exists.
func (m *Matrix) Get(userID string, candidateID uint) (models.AvailabilityStatus, error) {
	var a models.Availability
	err := m.db.Where("user_id = ? AND candidate_id = ?", userID, candidateID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.StatusUndecided, nil
	}
	if err != nil {
		return "", err
	}
	return a.Status, nil
}

// ListBySchedule returns every stored cell for the schedule's candidates
func (m *Matrix) ListBySchedule(scheduleID string) ([]models.Availability, error) {
	var rows []models.Availability
	err := m.db.
		Joins("JOIN candidates ON candidates.id = availabilities.candidate_id").
		Where("candidates.schedule_id = ?", scheduleID).
		Find(&rows).Error
	return rows, err
}

func upsertCell(tx *gorm.DB, userID string, candidateID uint, status models.AvailabilityStatus) error {
	cell := models.Availability{
		UserID:      userID,
		CandidateID: candidateID,
		Status:      status,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "candidate_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(&cell).Error
}

func touchSchedule(tx *gorm.DB, scheduleID string) error {
	return tx.Model(&models.Schedule{}).
		Where("id = ?", scheduleID).
		Update("updated_at", time.Now()).Error
}
