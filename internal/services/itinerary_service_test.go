package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"

	"tripdaddy/internal/models/request_models"
	"tripdaddy/internal/models/response_models"
	"tripdaddy/pkg/config"
	"tripdaddy/pkg/utils"
)

type daysCall struct{ start, end int }

type fakeGeneration struct {
	mu          sync.Mutex
	calls       []daysCall
	failDays    bool
	alternative *response_models.Activity
	existing    []string
	// whileGenerating runs inside GenerateDays, outside the lock.
	whileGenerating func()
}

func (f *fakeGeneration) ValidateDestination(_ context.Context, destination string) response_models.DestinationValidation {
	return response_models.DestinationValidation{IsValid: true, FormattedName: &destination}
}

func (f *fakeGeneration) GetQuestions(context.Context, *request_models.UserPreferences) []response_models.SmartQuestion {
	return []response_models.SmartQuestion{}
}

func (f *fakeGeneration) GenerateDays(_ context.Context, prefs *request_models.UserPreferences, dayStart, dayEnd int) *response_models.Itinerary {
	f.mu.Lock()
	f.calls = append(f.calls, daysCall{dayStart, dayEnd})
	hook, fail := f.whileGenerating, f.failDays
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if fail {
		return nil
	}
	it := &response_models.Itinerary{Destination: prefs.Destination}
	for d := dayStart; d <= dayEnd; d++ {
		it.Days = append(it.Days, response_models.DayPlan{
			DayNumber: d,
			Title:     fmt.Sprintf("Day %d", d),
			Morning:   []response_models.Activity{{Name: fmt.Sprintf("Breakfast %d", d)}},
			Afternoon: []response_models.Activity{{Name: fmt.Sprintf("Museum %d", d)}, {Name: fmt.Sprintf("Park %d", d)}},
		})
	}
	return it
}

func (f *fakeGeneration) GetAlternativeActivity(_ context.Context, _ *request_models.UserPreferences, _ response_models.Activity, _ request_models.ActivityContext, existing []string, _ string) *response_models.Activity {
	f.existing = existing
	return f.alternative
}

type fakeImages struct {
	mu   sync.Mutex
	days map[string][]int
}

func (f *fakeImages) GenerateDayImage(context.Context, response_models.DayPlan, string) string {
	return ""
}

func (f *fakeImages) GenerateInBackground(tripID, _ string, days []response_models.DayPlan) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.days == nil {
		f.days = map[string][]int{}
	}
	for _, d := range days {
		f.days[tripID] = append(f.days[tripID], d.DayNumber)
	}
}

func (f *fakeImages) Wait() {}

type fakeMailer struct {
	previews []string
	fulls    []string
	err      error
}

func (f *fakeMailer) SendPreviewReady(_ context.Context, to string, _ TripMail) error {
	f.previews = append(f.previews, to)
	return f.err
}

func (f *fakeMailer) SendFullTripReady(_ context.Context, to string, _ TripMail) error {
	f.fulls = append(f.fulls, to)
	return f.err
}

type itineraryFixture struct {
	svc    ItineraryServiceInterface
	repo   *fakeTripRepo
	gen    *fakeGeneration
	images *fakeImages
	mail   *fakeMailer
}

func newItineraryFixture() *itineraryFixture {
	f := &itineraryFixture{
		repo:   newFakeTripRepo(),
		gen:    &fakeGeneration{},
		images: &fakeImages{},
		mail:   &fakeMailer{},
	}
	cfg := &config.Config{ClientURL: "https://tripdaddy.app"}
	f.svc = NewItineraryService(f.repo, f.gen, f.images, f.mail, NewExportService(), cfg, zap.NewNop())
	return f
}

func (f *itineraryFixture) preview(t *testing.T) *response_models.PreviewResponse {
	t.Helper()
	res, err := f.svc.GeneratePreview(context.Background(), samplePrefs())
	if err != nil {
		t.Fatalf("GeneratePreview failed: %v", err)
	}
	return res
}

func TestGeneratePreview(t *testing.T) {
	f := newItineraryFixture()
	res := f.preview(t)

	if len(res.ID) != 10 {
		t.Errorf("Expected a 10 character id, got %q", res.ID)
	}
	if res.TotalDays != 7 || res.PreviewDays != 2 {
		t.Errorf("Expected 7 total and 2 preview days, got %+v", res)
	}
	if len(f.gen.calls) != 1 || f.gen.calls[0] != (daysCall{1, 2}) {
		t.Errorf("Expected days 1..2 to be generated, got %+v", f.gen.calls)
	}

	trip, _ := f.repo.GetByID(context.Background(), res.ID)
	if trip == nil || trip.IsUnlocked || trip.PreviewDaysGenerated != 2 {
		t.Fatalf("Unexpected stored trip: %+v", trip)
	}
	plan, _ := trip.DecodePlan()
	if plan.Days[0].DayNumber != 1 || plan.Days[1].DayNumber != 2 {
		t.Errorf("Expected stored days 1 and 2, got %+v", plan.Days)
	}
	if len(f.images.days[res.ID]) != 2 {
		t.Errorf("Expected background images for 2 days, got %v", f.images.days[res.ID])
	}
}

func TestGeneratePreviewShortTrip(t *testing.T) {
	f := newItineraryFixture()
	prefs := samplePrefs()
	prefs.EndDate = prefs.StartDate

	res, err := f.svc.GeneratePreview(context.Background(), prefs)
	if err != nil {
		t.Fatalf("GeneratePreview failed: %v", err)
	}
	if res.TotalDays != 1 || res.PreviewDays != 1 {
		t.Errorf("Expected a single day preview, got %+v", res)
	}
}

func TestGeneratePreviewErrors(t *testing.T) {
	f := newItineraryFixture()
	f.gen.failDays = true
	if _, err := f.svc.GeneratePreview(context.Background(), samplePrefs()); !errors.Is(err, utils.ErrGenerationFailed) {
		t.Errorf("Expected ErrGenerationFailed, got %v", err)
	}

	bad := samplePrefs()
	bad.Destination = ""
	if _, err := f.svc.GeneratePreview(context.Background(), bad); !errors.Is(err, utils.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}

	f = newItineraryFixture()
	f.repo.err = errors.New("connection refused")
	if _, err := f.svc.GeneratePreview(context.Background(), samplePrefs()); !errors.Is(err, utils.ErrDatabaseError) {
		t.Errorf("Expected ErrDatabaseError, got %v", err)
	}
}

func TestSaveEmail(t *testing.T) {
	f := newItineraryFixture()
	res := f.preview(t)

	trip, err := f.svc.SaveEmail(context.Background(), res.ID, "ana@example.com")
	if err != nil {
		t.Fatalf("SaveEmail failed: %v", err)
	}
	if trip.Unlocked || trip.TotalDays != 7 || len(trip.Plan.Days) != 2 {
		t.Errorf("Unexpected trip response: %+v", trip)
	}
	if len(f.mail.previews) != 1 || f.mail.previews[0] != "ana@example.com" {
		t.Errorf("Expected a preview email, got %v", f.mail.previews)
	}

	f.mail.err = errors.New("smtp down")
	if _, err := f.svc.SaveEmail(context.Background(), res.ID, "ana@example.com"); err != nil {
		t.Errorf("Mail failures must not fail the request, got %v", err)
	}

	if _, err := f.svc.SaveEmail(context.Background(), "missing", "a@b.c"); !errors.Is(err, utils.ErrTripNotFound) {
		t.Errorf("Expected ErrTripNotFound, got %v", err)
	}
}

func TestUnlock(t *testing.T) {
	f := newItineraryFixture()
	res := f.preview(t)
	if _, err := f.svc.SaveEmail(context.Background(), res.ID, "ana@example.com"); err != nil {
		t.Fatalf("SaveEmail failed: %v", err)
	}

	out, err := f.svc.Unlock(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	if !out.Success || out.Plan == nil || len(out.Plan.Days) != 7 {
		t.Fatalf("Expected 7 merged days, got %+v", out)
	}
	for i, d := range out.Plan.Days {
		if d.DayNumber != i+1 {
			t.Errorf("Expected day %d at index %d, got %d", i+1, i, d.DayNumber)
		}
	}
	if f.gen.calls[1] != (daysCall{3, 7}) {
		t.Errorf("Expected days 3..7 to be generated, got %+v", f.gen.calls[1])
	}
	if len(f.mail.fulls) != 1 {
		t.Errorf("Expected a full trip email, got %v", f.mail.fulls)
	}

	again, err := f.svc.Unlock(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("Second unlock failed: %v", err)
	}
	if again.Message != "Already unlocked" {
		t.Errorf("Expected 'Already unlocked', got %q", again.Message)
	}
	if len(f.gen.calls) != 2 {
		t.Errorf("Expected no generation on repeat unlock, got %d calls", len(f.gen.calls))
	}

	trip, err := f.svc.GetTrip(context.Background(), res.ID)
	if err != nil || !trip.Unlocked || len(trip.Plan.Days) != 7 {
		t.Errorf("Expected stored unlocked plan with 7 days, got %+v (%v)", trip, err)
	}
}

func TestUnlockKeepsEditsMadeDuringGeneration(t *testing.T) {
	f := newItineraryFixture()
	res := f.preview(t)

	f.gen.whileGenerating = func() {
		f.gen.whileGenerating = nil
		slot := request_models.ActivitySlot{DayNumber: 1, Period: response_models.PeriodAfternoon, Index: 0}
		if _, err := f.svc.RemoveActivity(context.Background(), res.ID, slot); err != nil {
			t.Errorf("RemoveActivity failed: %v", err)
		}
	}

	out, err := f.svc.Unlock(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	if len(out.Plan.Days) != 7 {
		t.Fatalf("Expected 7 days, got %d", len(out.Plan.Days))
	}
	day1 := out.Plan.Days[0].Afternoon
	if len(day1) != 1 || day1[0].Name != "Park 1" {
		t.Errorf("Expected the removal on day 1 to survive the unlock, got %+v", day1)
	}
}

func TestUnlockGenerationFailureKeepsTripLocked(t *testing.T) {
	f := newItineraryFixture()
	res := f.preview(t)
	f.gen.failDays = true

	if _, err := f.svc.Unlock(context.Background(), res.ID); !errors.Is(err, utils.ErrGenerationFailed) {
		t.Fatalf("Expected ErrGenerationFailed, got %v", err)
	}
	trip, _ := f.svc.GetTrip(context.Background(), res.ID)
	if trip.Unlocked {
		t.Error("Trip must stay locked so the unlock can be retried")
	}
}

func TestRegenerateActivityPersistsSwap(t *testing.T) {
	f := newItineraryFixture()
	res := f.preview(t)
	f.gen.alternative = &response_models.Activity{Name: "Lumphini Park", Type: "attraction"}

	alt, err := f.svc.RegenerateActivity(context.Background(), &request_models.RegenerateRequest{
		TripID:                res.ID,
		Activity:              response_models.Activity{Name: "Museum 2"},
		ExistingActivityNames: []string{"Chinatown", "museum 1"},
		Slot:                  &request_models.ActivitySlot{DayNumber: 2, Period: "afternoon", Index: 0},
	})
	if err != nil {
		t.Fatalf("RegenerateActivity failed: %v", err)
	}
	if alt.Name != "Lumphini Park" {
		t.Errorf("Unexpected alternative: %+v", alt)
	}
	if len(f.gen.existing) != 7 {
		t.Errorf("Expected client and stored names merged without duplicates, got %v", f.gen.existing)
	}

	trip, _ := f.svc.GetTrip(context.Background(), res.ID)
	if trip.Plan.Days[1].Afternoon[0].Name != "Lumphini Park" {
		t.Errorf("Expected the swap to be stored, got %+v", trip.Plan.Days[1].Afternoon)
	}
}

func TestRegenerateActivityWithoutTrip(t *testing.T) {
	f := newItineraryFixture()
	f.gen.alternative = nil

	alt, err := f.svc.RegenerateActivity(context.Background(), &request_models.RegenerateRequest{
		Prefs:    samplePrefs(),
		Activity: response_models.Activity{Name: "MBK Center"},
	})
	if err != nil || alt != nil {
		t.Errorf("Expected (nil, nil) when no alternative is found, got (%v, %v)", alt, err)
	}

	_, err = f.svc.RegenerateActivity(context.Background(), &request_models.RegenerateRequest{
		Activity: response_models.Activity{Name: "MBK Center"},
	})
	if !errors.Is(err, utils.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput without prefs, got %v", err)
	}

	_, err = f.svc.RegenerateActivity(context.Background(), &request_models.RegenerateRequest{
		TripID:   "nope",
		Activity: response_models.Activity{Name: "MBK Center"},
	})
	if !errors.Is(err, utils.ErrTripNotFound) {
		t.Errorf("Expected ErrTripNotFound, got %v", err)
	}
}

func TestRemoveActivity(t *testing.T) {
	f := newItineraryFixture()
	res := f.preview(t)

	trip, err := f.svc.RemoveActivity(context.Background(), res.ID, request_models.ActivitySlot{DayNumber: 1, Period: "afternoon", Index: 0})
	if err != nil {
		t.Fatalf("RemoveActivity failed: %v", err)
	}
	if len(trip.Plan.Days[0].Afternoon) != 1 || trip.Plan.Days[0].Afternoon[0].Name != "Park 1" {
		t.Errorf("Unexpected afternoon after removal: %+v", trip.Plan.Days[0].Afternoon)
	}

	for _, slot := range []request_models.ActivitySlot{
		{DayNumber: 9, Period: "morning"},
		{DayNumber: 1, Period: "night"},
		{DayNumber: 1, Period: "morning", Index: 5},
	} {
		if _, err := f.svc.RemoveActivity(context.Background(), res.ID, slot); !errors.Is(err, utils.ErrActivityNotFound) {
			t.Errorf("Expected ErrActivityNotFound for %+v, got %v", slot, err)
		}
	}
}

func TestExportPDF(t *testing.T) {
	f := newItineraryFixture()
	res := f.preview(t)

	var buf bytes.Buffer
	if err := f.svc.ExportPDF(context.Background(), res.ID, &buf); !errors.Is(err, utils.ErrTripLocked) {
		t.Fatalf("Expected ErrTripLocked before unlock, got %v", err)
	}

	if _, err := f.svc.Unlock(context.Background(), res.ID); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	if err := f.svc.ExportPDF(context.Background(), res.ID, &buf); err != nil {
		t.Fatalf("ExportPDF failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("Expected PDF output")
	}
}
