package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"tripdaddy/internal/models/request_models"
	"tripdaddy/internal/models/response_models"
	mem "tripdaddy/pkg/memcache"
	"tripdaddy/pkg/utils"
)

// GenerationServiceInterface wraps every call to the text model. Model
// failures never surface as errors: callers get a permissive fallback, an
// empty slice or nil.
type GenerationServiceInterface interface {
	ValidateDestination(ctx context.Context, destination string) response_models.DestinationValidation
	GetQuestions(ctx context.Context, prefs *request_models.UserPreferences) []response_models.SmartQuestion
	GenerateDays(ctx context.Context, prefs *request_models.UserPreferences, dayStart, dayEnd int) *response_models.Itinerary
	GetAlternativeActivity(ctx context.Context, prefs *request_models.UserPreferences, activity response_models.Activity, actx request_models.ActivityContext, existingNames []string, customRequest string) *response_models.Activity
}

type GenerationService struct {
	ai       utils.TextGenerator
	prompts  PromptServiceInterface
	cache    mem.ResponseCache
	cacheTTL time.Duration
	log      *zap.Logger
}

func NewGenerationService(
	ai utils.TextGenerator,
	prompts PromptServiceInterface,
	cache mem.ResponseCache,
	cacheTTL time.Duration,
	log *zap.Logger,
) GenerationServiceInterface {
	return &GenerationService{
		ai:       ai,
		prompts:  prompts,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log.Named("generation"),
	}
}

func (s *GenerationService) ValidateDestination(ctx context.Context, destination string) response_models.DestinationValidation {
	fallback := response_models.DestinationValidation{IsValid: true, FormattedName: &destination}

	key := "validate:" + strings.ToLower(strings.TrimSpace(destination))
	if cached, ok := s.cache.Get(ctx, key); ok {
		var result response_models.DestinationValidation
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			return result
		}
	}

	text, err := s.ai.GenerateContent(ctx, s.prompts.BuildValidationPrompt(destination), utils.GenerateOptions{JSONMode: true})
	if err != nil {
		s.log.Warn("destination validation call failed", zap.String("destination", destination), zap.Error(err))
		return fallback
	}

	var reply struct {
		IsValid       *bool   `json:"isValid"`
		FormattedName *string `json:"formattedName"`
	}
	if err := utils.ExtractJSONInto(text, &reply); err != nil || reply.IsValid == nil {
		s.log.Warn("destination validation unparseable", zap.String("destination", destination), zap.Error(err))
		return fallback
	}
	result := response_models.DestinationValidation{IsValid: *reply.IsValid, FormattedName: reply.FormattedName}

	if raw, err := json.Marshal(result); err == nil {
		s.cache.Set(ctx, key, string(raw), s.cacheTTL)
	}
	return result
}

func (s *GenerationService) GetQuestions(ctx context.Context, prefs *request_models.UserPreferences) []response_models.SmartQuestion {
	prompt, target := s.prompts.BuildQuestionsPrompt(prefs)

	questions, err := s.askQuestions(ctx, prompt, utils.GenerateOptions{})
	if err != nil {
		s.log.Warn("questions call failed, retrying with generic fallback", zap.Error(err))
		questions, err = s.askQuestions(ctx, prompt+fallbackQuestionsSuffix, utils.GenerateOptions{JSONMode: true})
		if err != nil {
			s.log.Warn("fallback questions call failed", zap.Error(err))
			return []response_models.SmartQuestion{}
		}
	}

	if len(questions) > target {
		questions = questions[:target]
	}
	return questions
}

func (s *GenerationService) askQuestions(ctx context.Context, prompt string, opts utils.GenerateOptions) ([]response_models.SmartQuestion, error) {
	text, err := s.ai.GenerateContent(ctx, prompt, opts)
	if err != nil {
		return nil, err
	}
	var questions []response_models.SmartQuestion
	if err := utils.ExtractJSONInto(text, &questions); err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []response_models.SmartQuestion{}
	}
	return questions, nil
}

// GenerateDays runs the draft pass and then the optimization pass for days
// dayStart..dayEnd. The optimized plan is used only when it still has days.
func (s *GenerationService) GenerateDays(ctx context.Context, prefs *request_models.UserPreferences, dayStart, dayEnd int) *response_models.Itinerary {
	log := s.log.With(zap.String("destination", prefs.Destination), zap.Int("day_start", dayStart), zap.Int("day_end", dayEnd))

	prompt := s.prompts.BuildItineraryPrompt(prefs, dayStart, dayEnd)
	text, err := s.ai.GenerateContent(ctx, prompt, utils.GenerateOptions{})
	if err != nil {
		log.Warn("draft generation failed", zap.Error(err))
		return nil
	}

	var draft response_models.Itinerary
	if err := utils.ExtractJSONInto(text, &draft); err != nil || !draft.HasDays() {
		log.Warn("draft has no days", zap.Error(err))
		return nil
	}
	log.Info("draft created, optimizing", zap.Int("days", len(draft.Days)))

	result := s.optimize(ctx, &draft, prefs, log)
	if result.Destination == "" {
		result.Destination = prefs.Destination
	}
	normalizeDays(result, prefs.StartDate, dayStart, dayEnd)
	if !result.HasDays() {
		log.Warn("no days left in requested range")
		return nil
	}
	return result
}

func (s *GenerationService) optimize(ctx context.Context, draft *response_models.Itinerary, prefs *request_models.UserPreferences, log *zap.Logger) *response_models.Itinerary {
	prompt, err := s.prompts.BuildOptimizationPrompt(draft, prefs)
	if err != nil {
		log.Warn("optimization prompt failed, using draft", zap.Error(err))
		return draft
	}

	text, err := s.ai.GenerateContent(ctx, prompt, utils.GenerateOptions{JSONMode: true})
	if err != nil {
		log.Warn("optimization pass failed, using draft", zap.Error(err))
		return draft
	}

	var optimized response_models.Itinerary
	if err := utils.ExtractJSONInto(text, &optimized); err != nil || !optimized.HasDays() {
		log.Warn("optimization pass returned no days, using draft", zap.Error(err))
		return draft
	}
	return &optimized
}

func (s *GenerationService) GetAlternativeActivity(
	ctx context.Context,
	prefs *request_models.UserPreferences,
	activity response_models.Activity,
	actx request_models.ActivityContext,
	existingNames []string,
	customRequest string,
) *response_models.Activity {
	prompt := s.prompts.BuildAlternativePrompt(prefs, activity, actx, existingNames, customRequest)
	text, err := s.ai.GenerateContent(ctx, prompt, utils.GenerateOptions{})
	if err != nil {
		s.log.Warn("alternative activity call failed", zap.String("activity", activity.Name), zap.Error(err))
		return nil
	}

	var alt response_models.Activity
	if err := utils.ExtractJSONInto(text, &alt); err != nil || alt.Name == "" {
		s.log.Warn("alternative activity unparseable", zap.String("activity", activity.Name), zap.Error(err))
		return nil
	}
	return &alt
}

// normalizeDays keeps the plan inside the requested day range. A model that
// numbered the right count of days from 1 instead of dayStart is renumbered;
// otherwise days outside the range are dropped. Renumbered days get the date
// of their new number, missing dates are filled in and user-plan activities
// lose any invented metadata.
func normalizeDays(it *response_models.Itinerary, startDate string, dayStart, dayEnd int) {
	outOfRange := false
	for _, d := range it.Days {
		if d.DayNumber < dayStart || d.DayNumber > dayEnd {
			outOfRange = true
			break
		}
	}

	if outOfRange {
		if len(it.Days) == dayEnd-dayStart+1 {
			for i := range it.Days {
				it.Days[i].DayNumber = dayStart + i
				it.Days[i].Date = ""
			}
		} else {
			kept := it.Days[:0]
			for _, d := range it.Days {
				if d.DayNumber >= dayStart && d.DayNumber <= dayEnd {
					kept = append(kept, d)
				}
			}
			it.Days = kept
		}
	}

	for i := range it.Days {
		day := &it.Days[i]
		if day.Date == "" {
			day.Date = utils.FormatDateForPrompt(utils.DateForDay(startDate, day.DayNumber))
		}
		for _, period := range []string{response_models.PeriodMorning, response_models.PeriodAfternoon, response_models.PeriodEvening} {
			slot, _ := day.Period(period)
			for j := range *slot {
				a := &(*slot)[j]
				if a.Type == response_models.ActivityTypeUserPlan {
					a.IsFixedPlan = true
					a.Rating = nil
					a.PriceLevel = nil
					a.AdmissionFee = nil
					a.OpeningHours = nil
				}
			}
		}
	}

	it.MergeDays(nil)
}
