package identity

import (
	"fmt"

	"github.com/example/yotei/pkg/yotei/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Profile is the only thing the core consumes from the identity provider:
// a stable external id and a display name. Provider tokens are never stored.
type Profile struct {
	ExternalID  string
	DisplayName string
}

// Reconcile ensures a User row exists for the profile, carrying the latest
// display name. The operation is an upsert: calling it again for the same
// external id is not an error, and concurrent calls for the same id are safe
// (last write wins on the display name, the external id never changes).
func Reconcile(db *gorm.DB, p Profile) (models.User, error) {
	if p.ExternalID == "" {
		return models.User{}, fmt.Errorf("%w: profile has no external id", models.ErrInvalidInput)
	}
	if p.DisplayName == "" {
		p.DisplayName = p.ExternalID
	}

	user := models.User{
		ExternalID:  p.ExternalID,
		DisplayName: p.DisplayName,
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "updated_at"}),
	}).Create(&user).Error
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}
