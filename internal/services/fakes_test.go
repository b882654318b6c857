package services

import (
	"context"
	"errors"
	"sync"

	"gorm.io/datatypes"

	"tripdaddy/internal/models/db_models"
)

// fakeTripRepo is an in-memory ITripRepository.
type fakeTripRepo struct {
	mu     sync.Mutex
	trips  map[string]*db_models.Trip
	images map[string]map[int]string
	err    error
}

func newFakeTripRepo() *fakeTripRepo {
	return &fakeTripRepo{
		trips:  map[string]*db_models.Trip{},
		images: map[string]map[int]string{},
	}
}

func (r *fakeTripRepo) Create(_ context.Context, trip *db_models.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	cp := *trip
	r.trips[trip.ID] = &cp
	return nil
}

func (r *fakeTripRepo) GetByID(_ context.Context, id string) (*db_models.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	trip, ok := r.trips[id]
	if !ok {
		return nil, nil
	}
	cp := *trip
	return &cp, nil
}

func (r *fakeTripRepo) SetEmail(_ context.Context, id, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if trip, ok := r.trips[id]; ok {
		trip.Email = &email
	}
	return nil
}

func (r *fakeTripRepo) UpdatePlan(_ context.Context, id string, plan datatypes.JSON) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	trip, ok := r.trips[id]
	if !ok {
		return errors.New("missing trip")
	}
	trip.Plan = plan
	return nil
}

func (r *fakeTripRepo) SetDayImage(_ context.Context, id string, dayNumber int, dataURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.images[id] == nil {
		r.images[id] = map[int]string{}
	}
	r.images[id][dayNumber] = dataURL
	return nil
}

func (r *fakeTripRepo) MarkUnlocked(_ context.Context, id string, plan datatypes.JSON, unlockedAt int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	trip, ok := r.trips[id]
	if !ok || trip.IsUnlocked {
		return false, nil
	}
	trip.Plan = plan
	trip.IsUnlocked = true
	trip.UnlockedAt = &unlockedAt
	return true, nil
}

func (r *fakeTripRepo) imageCount(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.images[id])
}

func (r *fakeTripRepo) imageFor(id string, day int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.images[id][day]
}
