package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"tripdaddy/internal/models/db_models"
	"tripdaddy/internal/models/request_models"
	"tripdaddy/internal/models/response_models"
	"tripdaddy/internal/repositories"
	"tripdaddy/pkg/config"
	"tripdaddy/pkg/utils"
)

const mailTimeout = 20 * time.Second

type ItineraryServiceInterface interface {
	GeneratePreview(ctx context.Context, prefs *request_models.UserPreferences) (*response_models.PreviewResponse, error)
	SaveEmail(ctx context.Context, id, email string) (*response_models.TripResponse, error)
	GetTrip(ctx context.Context, id string) (*response_models.TripResponse, error)
	// Unlock generates the days that were held back by the paywall and merges
	// them into the stored plan. Calling it on an unlocked trip is a no-op.
	Unlock(ctx context.Context, id string) (*response_models.UnlockResponse, error)
	RegenerateActivity(ctx context.Context, req *request_models.RegenerateRequest) (*response_models.Activity, error)
	RemoveActivity(ctx context.Context, id string, slot request_models.ActivitySlot) (*response_models.TripResponse, error)
	ExportPDF(ctx context.Context, id string, w io.Writer) error
}

type ItineraryService struct {
	tripRepo   repositories.ITripRepository
	generation GenerationServiceInterface
	images     ImageServiceInterface
	mail       IMailService
	export     ExportServiceInterface
	clientURL  string
	log        *zap.Logger
}

func NewItineraryService(
	tripRepo repositories.ITripRepository,
	generation GenerationServiceInterface,
	images ImageServiceInterface,
	mail IMailService,
	export ExportServiceInterface,
	cfg *config.Config,
	log *zap.Logger,
) ItineraryServiceInterface {
	return &ItineraryService{
		tripRepo:   tripRepo,
		generation: generation,
		images:     images,
		mail:       mail,
		export:     export,
		clientURL:  cfg.ClientURL,
		log:        log.Named("itinerary"),
	}
}

func (s *ItineraryService) tripURL(id string) string {
	return s.clientURL + "/itinerary/" + id
}

func (s *ItineraryService) GeneratePreview(ctx context.Context, prefs *request_models.UserPreferences) (*response_models.PreviewResponse, error) {
	if err := prefs.Validate(); err != nil {
		return nil, err
	}

	totalDays := prefs.DurationDays()
	previewCount := utils.PreviewDayCount(totalDays)
	if previewCount > totalDays {
		previewCount = totalDays
	}
	s.log.Info("generating preview",
		zap.String("destination", prefs.Destination),
		zap.Int("preview_days", previewCount),
		zap.Int("total_days", totalDays))

	plan := s.generation.GenerateDays(ctx, prefs, 1, previewCount)
	if !plan.HasDays() {
		return nil, utils.ErrGenerationFailed
	}

	trip := &db_models.Trip{
		ID:                   utils.NewTripID(),
		Destination:          prefs.Destination,
		StartDate:            prefs.StartDate,
		EndDate:              prefs.EndDate,
		TotalDays:            totalDays,
		PreviewDaysGenerated: previewCount,
		Interests:            prefs.Interests,
		Images:               datatypes.JSON(`{}`),
	}
	if err := trip.EncodePlan(plan); err != nil {
		return nil, err
	}
	if err := trip.EncodePreferences(prefs); err != nil {
		return nil, err
	}
	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	s.images.GenerateInBackground(trip.ID, trip.Destination, plan.Days)

	return &response_models.PreviewResponse{
		ID:          trip.ID,
		TotalDays:   totalDays,
		PreviewDays: previewCount,
	}, nil
}

func (s *ItineraryService) loadTrip(ctx context.Context, id string) (*db_models.Trip, error) {
	if strings.TrimSpace(id) == "" {
		return nil, utils.ErrTripNotFound
	}
	trip, err := s.tripRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if trip == nil {
		return nil, utils.ErrTripNotFound
	}
	return trip, nil
}

func (s *ItineraryService) tripResponse(trip *db_models.Trip, plan *response_models.Itinerary) *response_models.TripResponse {
	return &response_models.TripResponse{
		Plan:        *plan,
		Images:      trip.DecodeImages(),
		Unlocked:    trip.IsUnlocked,
		TotalDays:   trip.TotalDays,
		Destination: trip.Destination,
		StartDate:   trip.StartDate,
		EndDate:     trip.EndDate,
	}
}

func (s *ItineraryService) SaveEmail(ctx context.Context, id, email string) (*response_models.TripResponse, error) {
	trip, err := s.loadTrip(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.tripRepo.SetEmail(ctx, id, email); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	trip.Email = &email

	plan, err := trip.DecodePlan()
	if err != nil {
		return nil, fmt.Errorf("%w: stored plan unreadable: %v", utils.ErrDatabaseError, err)
	}

	s.sendMail(ctx, func(ctx context.Context) error {
		return s.mail.SendPreviewReady(ctx, email, TripMail{
			Destination: trip.Destination,
			TripURL:     s.tripURL(id),
			TotalDays:   trip.TotalDays,
			Days:        plan.Days,
		})
	})

	return s.tripResponse(trip, plan), nil
}

func (s *ItineraryService) GetTrip(ctx context.Context, id string) (*response_models.TripResponse, error) {
	trip, err := s.loadTrip(ctx, id)
	if err != nil {
		return nil, err
	}
	plan, err := trip.DecodePlan()
	if err != nil {
		return nil, fmt.Errorf("%w: stored plan unreadable: %v", utils.ErrDatabaseError, err)
	}
	return s.tripResponse(trip, plan), nil
}

func (s *ItineraryService) Unlock(ctx context.Context, id string) (*response_models.UnlockResponse, error) {
	trip, err := s.loadTrip(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip.IsUnlocked {
		return &response_models.UnlockResponse{Success: true, Message: "Already unlocked"}, nil
	}

	prefs, err := trip.DecodePreferences()
	if err != nil {
		return nil, fmt.Errorf("%w: stored preferences unreadable: %v", utils.ErrDatabaseError, err)
	}

	var newDays []response_models.DayPlan
	startDay, endDay := trip.PreviewDaysGenerated+1, trip.TotalDays
	if startDay <= endDay {
		s.log.Info("unlocking trip", zap.String("trip_id", id), zap.Int("day_start", startDay), zap.Int("day_end", endDay))
		remaining := s.generation.GenerateDays(ctx, prefs, startDay, endDay)
		if !remaining.HasDays() {
			return nil, utils.ErrGenerationFailed
		}
		newDays = remaining.Days

		// Edits to the preview days may have landed while the model was busy.
		if trip, err = s.loadTrip(ctx, id); err != nil {
			return nil, err
		}
	}

	plan, err := trip.DecodePlan()
	if err != nil {
		return nil, fmt.Errorf("%w: stored plan unreadable: %v", utils.ErrDatabaseError, err)
	}
	plan.MergeDays(newDays)

	raw, err := jsonPlan(plan)
	if err != nil {
		return nil, err
	}
	changed, err := s.tripRepo.MarkUnlocked(ctx, id, raw, utils.NowUnixSeconds())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if !changed {
		// Another request finished the unlock first; serve what it stored.
		current, err := s.GetTrip(ctx, id)
		if err != nil {
			return nil, err
		}
		return &response_models.UnlockResponse{Success: true, Message: "Already unlocked", Plan: &current.Plan, Images: current.Images}, nil
	}

	s.images.GenerateInBackground(id, trip.Destination, newDays)

	if trip.Email != nil && *trip.Email != "" {
		email := *trip.Email
		s.sendMail(ctx, func(ctx context.Context) error {
			return s.mail.SendFullTripReady(ctx, email, TripMail{
				Destination: trip.Destination,
				TripURL:     s.tripURL(id),
				TotalDays:   trip.TotalDays,
				Days:        plan.Days,
			})
		})
	}

	return &response_models.UnlockResponse{
		Success: true,
		Plan:    plan,
		Images:  trip.DecodeImages(),
	}, nil
}

func (s *ItineraryService) RegenerateActivity(ctx context.Context, req *request_models.RegenerateRequest) (*response_models.Activity, error) {
	prefs := req.Prefs
	var (
		trip *db_models.Trip
		plan *response_models.Itinerary
		err  error
	)

	if req.TripID != "" {
		trip, err = s.tripRepo.GetByID(ctx, req.TripID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		if trip == nil && prefs == nil {
			return nil, utils.ErrTripNotFound
		}
		if trip != nil {
			if prefs, err = trip.DecodePreferences(); err != nil {
				return nil, fmt.Errorf("%w: stored preferences unreadable: %v", utils.ErrDatabaseError, err)
			}
			if plan, err = trip.DecodePlan(); err != nil {
				return nil, fmt.Errorf("%w: stored plan unreadable: %v", utils.ErrDatabaseError, err)
			}
		}
	}
	if prefs == nil {
		return nil, fmt.Errorf("%w: prefs or a known tripId is required", utils.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Activity.Name) == "" {
		return nil, fmt.Errorf("%w: activity name is required", utils.ErrInvalidInput)
	}

	existing := uniqueNames(req.ExistingActivityNames, plan.ActivityNames())

	alt := s.generation.GetAlternativeActivity(ctx, prefs, req.Activity, req.Context, existing, req.CustomRequest)
	if alt == nil {
		return nil, nil
	}

	if trip != nil && req.Slot != nil {
		list, err := periodAt(plan, *req.Slot)
		if err != nil {
			return nil, err
		}
		(*list)[req.Slot.Index] = *alt
		raw, err := jsonPlan(plan)
		if err != nil {
			return nil, err
		}
		if err := s.tripRepo.UpdatePlan(ctx, trip.ID, raw); err != nil {
			return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
	}
	return alt, nil
}

func (s *ItineraryService) RemoveActivity(ctx context.Context, id string, slot request_models.ActivitySlot) (*response_models.TripResponse, error) {
	trip, err := s.loadTrip(ctx, id)
	if err != nil {
		return nil, err
	}
	plan, err := trip.DecodePlan()
	if err != nil {
		return nil, fmt.Errorf("%w: stored plan unreadable: %v", utils.ErrDatabaseError, err)
	}

	list, err := periodAt(plan, slot)
	if err != nil {
		return nil, err
	}
	*list = append((*list)[:slot.Index], (*list)[slot.Index+1:]...)

	raw, err := jsonPlan(plan)
	if err != nil {
		return nil, err
	}
	if err := s.tripRepo.UpdatePlan(ctx, id, raw); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	trip.Plan = raw
	return s.tripResponse(trip, plan), nil
}

func (s *ItineraryService) ExportPDF(ctx context.Context, id string, w io.Writer) error {
	trip, err := s.loadTrip(ctx, id)
	if err != nil {
		return err
	}
	if !trip.IsUnlocked {
		return utils.ErrTripLocked
	}
	plan, err := trip.DecodePlan()
	if err != nil {
		return fmt.Errorf("%w: stored plan unreadable: %v", utils.ErrDatabaseError, err)
	}
	return s.export.RenderItineraryPDF(w, ItineraryDocument{
		Destination: trip.Destination,
		StartDate:   trip.StartDate,
		EndDate:     trip.EndDate,
		TripURL:     s.tripURL(id),
		Plan:        plan,
	})
}

// sendMail delivers best effort: failures are logged and never returned.
func (s *ItineraryService) sendMail(ctx context.Context, send func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mailTimeout)
	defer cancel()
	if err := send(ctx); err != nil {
		s.log.Warn("email delivery failed", zap.Error(err))
	}
}

// periodAt returns the activity list holding slot, checking the index is in
// range.
func periodAt(plan *response_models.Itinerary, slot request_models.ActivitySlot) (*[]response_models.Activity, error) {
	day := plan.Day(slot.DayNumber)
	if day == nil {
		return nil, utils.ErrActivityNotFound
	}
	list, ok := day.Period(slot.Period)
	if !ok || slot.Index < 0 || slot.Index >= len(*list) {
		return nil, utils.ErrActivityNotFound
	}
	return list, nil
}

func jsonPlan(plan *response_models.Itinerary) (datatypes.JSON, error) {
	var t db_models.Trip
	if err := t.EncodePlan(plan); err != nil {
		return nil, err
	}
	return t.Plan, nil
}

func uniqueNames(lists ...[]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, list := range lists {
		for _, name := range list {
			key := strings.ToLower(strings.TrimSpace(name))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, name)
		}
	}
	return out
}
