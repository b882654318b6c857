package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/datatypes"

	"tripdaddy/internal/models/db_models"
	"tripdaddy/internal/models/request_models"
	"tripdaddy/internal/models/response_models"
)

// tripDocument is the Mongo shape of a trip. The plan and preferences are
// stored as nested documents instead of JSON blobs so they stay queryable.
type tripDocument struct {
	ID                   string                          `bson:"_id"`
	Destination          string                          `bson:"destination"`
	StartDate            string                          `bson:"startDate"`
	EndDate              string                          `bson:"endDate"`
	TotalDays            int                             `bson:"totalDays"`
	PreviewDaysGenerated int                             `bson:"previewDaysGenerated"`
	Interests            []string                        `bson:"interests"`
	Email                *string                         `bson:"email,omitempty"`
	IsUnlocked           bool                            `bson:"isUnlocked"`
	UnlockedAt           *int64                          `bson:"unlockedAt,omitempty"`
	Preferences          *request_models.UserPreferences `bson:"preferences"`
	Plan                 *response_models.Itinerary      `bson:"plan"`
	Images               map[string]string               `bson:"images"`
	CreatedAt            int64                           `bson:"createdAt"`
	UpdatedAt            int64                           `bson:"updatedAt"`
}

func toTripDocument(trip *db_models.Trip) (*tripDocument, error) {
	plan, err := trip.DecodePlan()
	if err != nil {
		return nil, err
	}
	prefs, err := trip.DecodePreferences()
	if err != nil {
		return nil, err
	}
	return &tripDocument{
		ID:                   trip.ID,
		Destination:          trip.Destination,
		StartDate:            trip.StartDate,
		EndDate:              trip.EndDate,
		TotalDays:            trip.TotalDays,
		PreviewDaysGenerated: trip.PreviewDaysGenerated,
		Interests:            trip.Interests,
		Email:                trip.Email,
		IsUnlocked:           trip.IsUnlocked,
		UnlockedAt:           trip.UnlockedAt,
		Preferences:          prefs,
		Plan:                 plan,
		Images:               trip.DecodeImages(),
		CreatedAt:            trip.CreatedAt,
		UpdatedAt:            trip.UpdatedAt,
	}, nil
}

func (d *tripDocument) toTrip() (*db_models.Trip, error) {
	trip := &db_models.Trip{
		ID:                   d.ID,
		Destination:          d.Destination,
		StartDate:            d.StartDate,
		EndDate:              d.EndDate,
		TotalDays:            d.TotalDays,
		PreviewDaysGenerated: d.PreviewDaysGenerated,
		Interests:            d.Interests,
		Email:                d.Email,
		IsUnlocked:           d.IsUnlocked,
		UnlockedAt:           d.UnlockedAt,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
	if d.Plan != nil {
		if err := trip.EncodePlan(d.Plan); err != nil {
			return nil, err
		}
	}
	if d.Preferences != nil {
		if err := trip.EncodePreferences(d.Preferences); err != nil {
			return nil, err
		}
	}
	images := d.Images
	if images == nil {
		images = map[string]string{}
	}
	raw, err := json.Marshal(images)
	if err != nil {
		return nil, err
	}
	trip.Images = datatypes.JSON(raw)
	return trip, nil
}

type TripMongoRepository struct {
	trips *mongo.Collection
}

func NewTripMongoRepository(db *mongo.Database) ITripRepository {
	return &TripMongoRepository{trips: db.Collection("trips")}
}

func (r *TripMongoRepository) Create(ctx context.Context, trip *db_models.Trip) error {
	now := time.Now().Unix()
	trip.CreatedAt = now
	trip.UpdatedAt = now
	doc, err := toTripDocument(trip)
	if err != nil {
		return err
	}
	_, err = r.trips.InsertOne(ctx, doc)
	return err
}

func (r *TripMongoRepository) GetByID(ctx context.Context, id string) (*db_models.Trip, error) {
	var doc tripDocument
	err := r.trips.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.toTrip()
}

func (r *TripMongoRepository) SetEmail(ctx context.Context, id, email string) error {
	_, err := r.trips.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"email": email, "updatedAt": time.Now().Unix()},
	})
	return err
}

func (r *TripMongoRepository) UpdatePlan(ctx context.Context, id string, plan datatypes.JSON) error {
	var it response_models.Itinerary
	if err := json.Unmarshal(plan, &it); err != nil {
		return err
	}
	_, err := r.trips.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"plan": it, "updatedAt": time.Now().Unix()},
	})
	return err
}

func (r *TripMongoRepository) SetDayImage(ctx context.Context, id string, dayNumber int, dataURL string) error {
	_, err := r.trips.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"images." + strconv.Itoa(dayNumber): dataURL,
			"updatedAt":                         time.Now().Unix(),
		},
	})
	return err
}

func (r *TripMongoRepository) MarkUnlocked(ctx context.Context, id string, plan datatypes.JSON, unlockedAt int64) (bool, error) {
	var it response_models.Itinerary
	if err := json.Unmarshal(plan, &it); err != nil {
		return false, err
	}
	res, err := r.trips.UpdateOne(ctx, bson.M{"_id": id, "isUnlocked": false}, bson.M{
		"$set": bson.M{
			"plan":       it,
			"isUnlocked": true,
			"unlockedAt": unlockedAt,
			"updatedAt":  time.Now().Unix(),
		},
	})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
