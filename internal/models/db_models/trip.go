package db_models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"tripdaddy/internal/models/request_models"
	"tripdaddy/internal/models/response_models"
)

// Trip is the stored record behind a share link. Plan holds only the days the
// visitor may currently see until the trip is unlocked.
type Trip struct {
	ID          string `gorm:"primaryKey;size:16"`
	Destination string `gorm:"index"`
	StartDate   string
	EndDate     string
	TotalDays   int
	Interests   pq.StringArray `gorm:"type:text[]"`
	Email       *string
	IsUnlocked  bool `gorm:"default:false"`
	UnlockedAt  *int64

	// PreviewDaysGenerated counts the leading days generated before payment.
	PreviewDaysGenerated int

	Preferences datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	Plan        datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	// Images maps the day number (as a string key) to a data URL.
	Images datatypes.JSON `gorm:"type:jsonb;default:'{}'"`

	CreatedAt int64 `gorm:"autoCreateTime"`
	UpdatedAt int64 `gorm:"autoUpdateTime"`
}

func (t *Trip) BeforeCreate(tx *gorm.DB) error {
	now := time.Now().Unix()
	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

func (t *Trip) DecodePlan() (*response_models.Itinerary, error) {
	var plan response_models.Itinerary
	if len(t.Plan) == 0 {
		return &plan, nil
	}
	if err := json.Unmarshal(t.Plan, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (t *Trip) EncodePlan(plan *response_models.Itinerary) error {
	raw, err := json.Marshal(plan)
	if err != nil {
		return err
	}
	t.Plan = datatypes.JSON(raw)
	return nil
}

func (t *Trip) DecodePreferences() (*request_models.UserPreferences, error) {
	var prefs request_models.UserPreferences
	if len(t.Preferences) == 0 {
		return &prefs, nil
	}
	if err := json.Unmarshal(t.Preferences, &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (t *Trip) EncodePreferences(prefs *request_models.UserPreferences) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	t.Preferences = datatypes.JSON(raw)
	return nil
}

func (t *Trip) DecodeImages() map[string]string {
	images := map[string]string{}
	if len(t.Images) > 0 {
		_ = json.Unmarshal(t.Images, &images)
	}
	return images
}
