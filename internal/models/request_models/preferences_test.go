package request_models

import (
	"errors"
	"strings"
	"testing"

	"tripdaddy/pkg/utils"
)

func validPrefs() UserPreferences {
	return UserPreferences{
		Destination:  "Tokyo, Japan",
		StartDate:    "2025-04-01",
		EndDate:      "2025-04-05",
		TripType:     TripCouple,
		Budget:       BudgetMedium,
		Vibe:         "Both",
		Pace:         PaceBalanced,
		Interests:    []string{"Dining", "Local Experiences"},
		Demographics: Demographics{Age: "31"},
	}
}

func TestValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		p := validPrefs()
		if err := p.Validate(); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	})

	cases := []struct {
		name    string
		mutate  func(p *UserPreferences)
		message string
	}{
		{"MissingDestination", func(p *UserPreferences) { p.Destination = "  " }, "destination is required"},
		{"EndBeforeStart", func(p *UserPreferences) { p.EndDate = "2025-03-30" }, "endDate must not be before startDate"},
		{"BadDate", func(p *UserPreferences) { p.StartDate = "01/04/2025" }, "startDate must be YYYY-MM-DD"},
		{"SoloNeedsGender", func(p *UserPreferences) { p.TripType = TripSolo }, "gender and enter your age"},
		{"CoupleNeedsAge", func(p *UserPreferences) { p.Demographics.Age = "" }, "average age"},
		{"FamilyNeedsKids", func(p *UserPreferences) { p.TripType = TripFamily }, "age range of the children"},
		{"UnknownBudget", func(p *UserPreferences) { p.Budget = "Unlimited" }, "budget must be one of"},
		{"UnknownInterest", func(p *UserPreferences) { p.Interests = append(p.Interests, "Skydiving") }, "interests[2] must be one of"},
		{"UnknownVibe", func(p *UserPreferences) { p.Vibe = "Chill" }, "vibe must be one of Extreme/Fun, Laid back/Chill, Both"},
		{"UnknownGender", func(p *UserPreferences) { p.Demographics.Gender = "Robot" }, "demographics.gender must be one of"},
		{"FixedPlanBadDate", func(p *UserPreferences) {
			p.FixedPlans = []FixedPlan{{Date: "02/04/2025", Description: "Dinner"}}
		}, "fixedPlans[0].date must be YYYY-MM-DD"},
		{"FixedPlanWithoutDescription", func(p *UserPreferences) {
			p.FixedPlans = []FixedPlan{{Date: "2025-04-02"}}
		}, "fixedPlans[0].description is required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validPrefs()
			tc.mutate(&p)
			err := p.Validate()
			if err == nil {
				t.Fatal("Expected an error, got nil")
			}
			if !errors.Is(err, utils.ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.message) {
				t.Errorf("Expected error to mention %q, got %q", tc.message, err.Error())
			}
		})
	}
}

func TestDurationDays(t *testing.T) {
	p := validPrefs()
	if got := p.DurationDays(); got != 5 {
		t.Errorf("Expected 5 days, got %d", got)
	}
}
