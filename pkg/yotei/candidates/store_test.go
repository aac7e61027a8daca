package candidates

import (
	"errors"
	"reflect"
	"testing"

	"github.com/example/yotei/pkg/yotei/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	models.AutoMigrate(db)
	return db
}

func createTestSchedule(t *testing.T, db *gorm.DB) models.Schedule {
	user := models.User{ExternalID: "gh-1", DisplayName: "owner"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	schedule := models.Schedule{ID: "sched-1", Title: "Team sync", CreatedBy: user.ExternalID}
	if err := db.Create(&schedule).Error; err != nil {
		t.Fatalf("Failed to create test schedule: %v", err)
	}
	return schedule
}

func TestSplitLabels(t *testing.T) {
	labels := SplitLabels("Mon 10:00\n\n  Tue 14:00  \r\nWed 09:00\n")
	want := []string{"Mon 10:00", "Tue 14:00", "Wed 09:00"}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("SplitLabels = %v, want %v", labels, want)
	}

	if got := SplitLabels("  \n \n"); got != nil {
		t.Errorf("SplitLabels on blank text = %v, want nil", got)
	}
}

func TestCreateManyAssignsOrder(t *testing.T) {
	db := setupTestDB(t)
	schedule := createTestSchedule(t, db)
	store := NewStore(db)

	created, err := store.CreateMany(schedule.ID, []string{"Mon 10:00", "Tue 14:00"})
	if err != nil {
		t.Fatalf("CreateMany failed: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(created))
	}
	for i, c := range created {
		if c.DisplayOrder != i {
			t.Errorf("Candidate %d has display order %d", i, c.DisplayOrder)
		}
	}
}

func TestCreateManyRejectsEmptyList(t *testing.T) {
	db := setupTestDB(t)
	schedule := createTestSchedule(t, db)
	store := NewStore(db)

	for _, labels := range [][]string{nil, {}, {"", "   "}} {
		if _, err := store.CreateMany(schedule.ID, labels); !errors.Is(err, models.ErrInvalidInput) {
			t.Errorf("CreateMany(%v) expected ErrInvalidInput, got %v", labels, err)
		}
	}

	var count int64
	db.Model(&models.Candidate{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no candidate rows after rejected creates, got %d", count)
	}
}

func TestCreateManyAppendsAfterExisting(t *testing.T) {
	db := setupTestDB(t)
	schedule := createTestSchedule(t, db)
	store := NewStore(db)

	store.CreateMany(schedule.ID, []string{"Mon", "Tue"})
	appended, err := store.CreateMany(schedule.ID, []string{"Wed"})
	if err != nil {
		t.Fatalf("CreateMany append failed: %v", err)
	}
	if appended[0].DisplayOrder != 2 {
		t.Errorf("Appended candidate should get display order 2, got %d", appended[0].DisplayOrder)
	}
}

func TestListByScheduleOrder(t *testing.T) {
	db := setupTestDB(t)
	schedule := createTestSchedule(t, db)
	store := NewStore(db)

	store.CreateMany(schedule.ID, []string{"Mon", "Tue", "Wed"})

	list, err := store.ListBySchedule(schedule.ID)
	if err != nil {
		t.Fatalf("ListBySchedule failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("Expected 3 candidates, got %d", len(list))
	}
	for i, c := range list {
		if c.DisplayOrder != i {
			t.Errorf("Position %d has display order %d", i, c.DisplayOrder)
		}
	}

	// Other schedules stay invisible
	other := models.Schedule{ID: "sched-2", Title: "Other", CreatedBy: "gh-1"}
	db.Create(&other)
	store.CreateMany(other.ID, []string{"Thu"})
	list, _ = store.ListBySchedule(schedule.ID)
	if len(list) != 3 {
		t.Errorf("Expected 3 candidates for the original schedule, got %d", len(list))
	}
}
