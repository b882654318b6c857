package repositories

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"tripdaddy/internal/models/db_models"
)

type ITripRepository interface {
	Create(ctx context.Context, trip *db_models.Trip) error
	GetByID(ctx context.Context, id string) (*db_models.Trip, error)
	SetEmail(ctx context.Context, id, email string) error
	UpdatePlan(ctx context.Context, id string, plan datatypes.JSON) error
	// SetDayImage writes one entry of the images map without touching the
	// others, so concurrent writers for different days do not clobber each
	// other.
	SetDayImage(ctx context.Context, id string, dayNumber int, dataURL string) error
	// MarkUnlocked stores the merged plan and flips the unlocked flag. It
	// reports false when the trip was already unlocked by another request.
	MarkUnlocked(ctx context.Context, id string, plan datatypes.JSON, unlockedAt int64) (bool, error)
}

type TripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) ITripRepository {
	return &TripRepository{db: db}
}

func (r *TripRepository) Create(ctx context.Context, trip *db_models.Trip) error {
	return r.db.WithContext(ctx).Create(trip).Error
}

func (r *TripRepository) GetByID(ctx context.Context, id string) (*db_models.Trip, error) {
	var trip db_models.Trip
	err := r.db.WithContext(ctx).First(&trip, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trip, nil
}

func (r *TripRepository) SetEmail(ctx context.Context, id, email string) error {
	return r.db.WithContext(ctx).
		Model(&db_models.Trip{}).
		Where("id = ?", id).
		Update("email", email).Error
}

func (r *TripRepository) UpdatePlan(ctx context.Context, id string, plan datatypes.JSON) error {
	return r.db.WithContext(ctx).
		Model(&db_models.Trip{}).
		Where("id = ?", id).
		Update("plan", plan).Error
}

func (r *TripRepository) SetDayImage(ctx context.Context, id string, dayNumber int, dataURL string) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE trips
		 SET images = jsonb_set(COALESCE(images, '{}'::jsonb), ARRAY[?]::text[], to_jsonb(?::text), true),
		     updated_at = ?
		 WHERE id = ?`,
		strconv.Itoa(dayNumber), dataURL, time.Now().Unix(), id,
	).Error
}

func (r *TripRepository) MarkUnlocked(ctx context.Context, id string, plan datatypes.JSON, unlockedAt int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db_models.Trip{}).
		Where("id = ? AND is_unlocked = ?", id, false).
		Updates(map[string]interface{}{
			"plan":        plan,
			"is_unlocked": true,
			"unlocked_at": unlockedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
