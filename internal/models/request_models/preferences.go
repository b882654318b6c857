package request_models

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gin-gonic/gin/binding"

	"tripdaddy/pkg/utils"
)

const (
	TripSolo    = "Solo"
	TripCouple  = "Couple"
	TripFriends = "Friends"
	TripFamily  = "Family"

	BudgetLow    = "Low"
	BudgetMedium = "Medium"
	BudgetHigh   = "High"

	PaceSlow     = "Slow"
	PaceBalanced = "Balanced"
	PaceFast     = "Fast"

	InterestNightlife = "Nightlife"
	InterestShopping  = "Shopping"
	InterestActive    = "Active"
	InterestCulture   = "Culture"
)

type FixedPlan struct {
	ID          string `json:"id"`
	Date        string `json:"date" binding:"required,datetime=2006-01-02"`
	Description string `json:"description" binding:"required"`
}

type Demographics struct {
	Gender       string `json:"gender,omitempty" binding:"omitempty,oneof=Male Female Non-binary/Other"`
	Age          string `json:"age,omitempty"`
	KidsAgeRange string `json:"kidsAgeRange,omitempty" binding:"omitempty,oneof=0-5 5-10 10-15 15-20"`
}

// UserPreferences is everything the wizard collects before generation. A
// snapshot is stored with the trip so the locked days can be generated later.
type UserPreferences struct {
	Destination     string          `json:"destination" binding:"required"`
	StartDate       string          `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate         string          `json:"endDate" binding:"required,datetime=2006-01-02"`
	HotelLocation   string          `json:"hotelLocation"`
	TripType        string          `json:"tripType" binding:"omitempty,oneof=Solo Couple Friends Family"`
	Budget          string          `json:"budget" binding:"omitempty,oneof=Low Medium High"`
	Vibe            string          `json:"vibe" binding:"omitempty,oneof='Extreme/Fun' 'Laid back/Chill' Both"`
	Pace            string          `json:"pace" binding:"omitempty,oneof=Slow Balanced Fast"`
	Interests       []string        `json:"interests" binding:"omitempty,dive,oneof=Dining Nightlife Culture Active Viewpoints Nature Shopping 'Local Experiences' 'Shows & Concerts'"`
	Demographics    Demographics    `json:"demographics"`
	FixedPlans      []FixedPlan     `json:"fixedPlans" binding:"omitempty,dive"`
	MustVisit       string          `json:"mustVisit"`
	FollowUpAnswers map[string]bool `json:"followUpAnswers"`
}

// ValidateStart covers the first wizard step: destination and dates.
func (p *UserPreferences) ValidateStart() error {
	if strings.TrimSpace(p.Destination) == "" {
		return fmt.Errorf("%w: destination is required", utils.ErrInvalidInput)
	}
	start, err := utils.ParseISODate(p.StartDate)
	if err != nil {
		return fmt.Errorf("%w: startDate must be YYYY-MM-DD", utils.ErrInvalidInput)
	}
	end, err := utils.ParseISODate(p.EndDate)
	if err != nil {
		return fmt.Errorf("%w: endDate must be YYYY-MM-DD", utils.ErrInvalidInput)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: endDate must not be before startDate", utils.ErrInvalidInput)
	}
	return nil
}

// Validate runs the binding rules, for callers that did not come through
// gin, and then the rules that span fields.
func (p *UserPreferences) Validate() error {
	if err := binding.Validator.ValidateStruct(p); err != nil {
		return utils.BindingError(err)
	}
	if err := p.ValidateStart(); err != nil {
		return err
	}

	var errs []error
	switch p.TripType {
	case TripSolo:
		if p.Demographics.Gender == "" || strings.TrimSpace(p.Demographics.Age) == "" {
			errs = append(errs, errors.New("please select your gender and enter your age"))
		}
	case TripCouple, TripFriends:
		if strings.TrimSpace(p.Demographics.Age) == "" {
			errs = append(errs, errors.New("please enter the average age of your group"))
		}
	case TripFamily:
		if p.Demographics.KidsAgeRange == "" {
			errs = append(errs, errors.New("please select the age range of the children"))
		}
	}

	for i, fp := range p.FixedPlans {
		if strings.TrimSpace(fp.Description) == "" {
			errs = append(errs, fmt.Errorf("fixedPlans[%d].description is required", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", utils.ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

func (p *UserPreferences) DurationDays() int {
	return utils.TripDurationDays(p.StartDate, p.EndDate)
}

func (p *UserPreferences) HasInterest(interest string) bool {
	return slices.Contains(p.Interests, interest)
}
