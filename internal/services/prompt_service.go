package services

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"tripdaddy/internal/models/request_models"
	"tripdaddy/internal/models/response_models"
	"tripdaddy/pkg/utils"
)

const (
	defaultTravelerAge = 25
	seniorAge          = 50

	shortTripQuestions = 5
	longTripQuestions  = 10

	fallbackQuestionsSuffix = "\nFallback: Generate generic questions."
	safeImageTitle          = "Peaceful travel abstract"
)

type PromptServiceInterface interface {
	BuildValidationPrompt(destination string) string
	BuildQuestionsPrompt(prefs *request_models.UserPreferences) (string, int)
	BuildItineraryPrompt(prefs *request_models.UserPreferences, dayStart, dayEnd int) string
	BuildOptimizationPrompt(draft *response_models.Itinerary, prefs *request_models.UserPreferences) (string, error)
	BuildAlternativePrompt(prefs *request_models.UserPreferences, activity response_models.Activity, ctx request_models.ActivityContext, existingNames []string, customRequest string) string
	BuildDayImagePrompt(dayTitle, area, destination, vibe string) string
}

type PromptService struct{}

func NewPromptService() PromptServiceInterface {
	return &PromptService{}
}

// QuestionTarget is 5 for trips up to five days and 10 beyond.
func QuestionTarget(durationDays int) int {
	if durationDays <= 5 {
		return shortTripQuestions
	}
	return longTripQuestions
}

// TravelerAge reads the leading number of the age field. Missing or
// non-numeric ages count as 25.
func TravelerAge(age string) int {
	age = strings.TrimSpace(age)
	end := 0
	for end < len(age) && age[end] >= '0' && age[end] <= '9' {
		end++
	}
	if end == 0 {
		return defaultTravelerAge
	}
	n, err := strconv.Atoi(age[:end])
	if err != nil {
		return defaultTravelerAge
	}
	return n
}

func (p *PromptService) BuildValidationPrompt(destination string) string {
	return fmt.Sprintf(`Analyze destination: "%s". Return JSON: { "isValid": boolean, "formattedName": string | null }. If valid, provide "City, Country".`, destination)
}

func (p *PromptService) BuildQuestionsPrompt(prefs *request_models.UserPreferences) (string, int) {
	startDate := utils.FormatDateForPrompt(prefs.StartDate)
	endDate := utils.FormatDateForPrompt(prefs.EndDate)
	duration := prefs.DurationDays()
	target := QuestionTarget(duration)

	var prompt strings.Builder
	prompt.WriteString(fmt.Sprintf("Context: Trip to %s, %s-%s (%d days).\n", prefs.Destination, startDate, endDate, duration))
	prompt.WriteString(fmt.Sprintf("Who: %s (%s).\n", prefs.TripType, demographicsJSON(prefs.Demographics)))
	prompt.WriteString(fmt.Sprintf("Interests: %s.\n", strings.Join(prefs.Interests, ", ")))
	prompt.WriteString(fmt.Sprintf("Budget: %s.\n\n", prefs.Budget))

	prompt.WriteString(fmt.Sprintf("TASK: Generate exactly %d \"Tinder-style\" Yes/No questions to refine the itinerary.\n\n", target))

	prompt.WriteString("STRATEGY:\n")
	prompt.WriteString(fmt.Sprintf("1. **Events**: Check for specific events during %s-%s.\n", startDate, endDate))
	prompt.WriteString("2. **Unique Activities**: Ask about specific, non-generic experiences (e.g., \"Visit the Museum of Ice Cream?\" instead of \"Do you like museums?\").\n")
	prompt.WriteString(fmt.Sprintf("3. **Must Include**: Everything the user says \"Yes\" to WILL be added to the itinerary, so ensure these fit within a %d-day schedule.\n\n", duration))

	prompt.WriteString("RULES:\n")
	prompt.WriteString("- **Short & Punchy**: Max 15 words per description.\n")
	prompt.WriteString("- **Specific**: Name actual places or events.\n")
	prompt.WriteString("- **Operational**: Exclude places that are closed.\n")
	if strings.TrimSpace(prefs.MustVisit) != "" {
		prompt.WriteString(fmt.Sprintf("- **Ignore**: Do NOT ask about \"%s\".\n", prefs.MustVisit))
	}

	prompt.WriteString("\nReturn JSON array: [{ \"id\": \"snake_case_id\", \"emoji\": \"SingleChar\", \"title\": \"Title\", \"description\": \"Short question?\" }]\n")
	return prompt.String(), target
}

func (p *PromptService) BuildItineraryPrompt(prefs *request_models.UserPreferences, dayStart, dayEnd int) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("Create a JSON itinerary for %s.\n", prefs.Destination))
	prompt.WriteString(fmt.Sprintf("Full Trip Dates: %s to %s.\n",
		utils.FormatDateForPrompt(prefs.StartDate), utils.FormatDateForPrompt(prefs.EndDate)))
	prompt.WriteString(fmt.Sprintf("Who: %s %s.\n", prefs.TripType, demographicsJSON(prefs.Demographics)))
	prompt.WriteString(fmt.Sprintf("Budget: %s. Vibe: %s.\n\n", prefs.Budget, prefs.Vibe))

	prompt.WriteString("** IMPORTANT TASK SCOPE **\n")
	prompt.WriteString(fmt.Sprintf("ONLY GENERATE DAYS %d TO %d (inclusive).\n", dayStart, dayEnd))
	prompt.WriteString("Do not generate other days.\n\n")

	for _, section := range []string{
		paceDirective(prefs),
		budgetDirective(prefs.Budget),
		fixedPlanDirective(prefs.FixedPlans),
		mustVisitDirective(prefs.MustVisit),
		hotelDirective(prefs.HotelLocation),
	} {
		if section != "" {
			prompt.WriteString(section)
			prompt.WriteString("\n")
		}
	}

	liked, rejected := splitFollowUpAnswers(prefs.FollowUpAnswers)

	prompt.WriteString("** STRICT NEGATIVE CONSTRAINTS (NON-NEGOTIABLE) **\n")
	prompt.WriteString("1. **CLOSED PLACES**: NEVER suggest a place that is \"Permanently Closed\" or \"Temporarily Closed\".\n")
	prompt.WriteString(fmt.Sprintf("2. **USER BANNED ITEMS**: The user explicitly swiped NO to: [ %s ].\n", strings.Join(rejected, ", ")))
	prompt.WriteString("   - YOU MUST NOT INCLUDE THESE OR ANYTHING SIMILAR. This is a hard constraint.\n")
	prompt.WriteString("3. **CATEGORY BANS**:\n")
	for _, ban := range interestBans(prefs) {
		prompt.WriteString(fmt.Sprintf("   - %s\n", ban))
	}
	prompt.WriteString("4. **EVENT LIMITS**: Maximum 2 \"Major Events\" (Concerts, Festivals, Big Theme Parks) per day.\n\n")

	prompt.WriteString("** CONFIRMED INTERESTS **\n")
	prompt.WriteString(fmt.Sprintf("- You MUST include these agreed activities: [ %s ].\n\n", strings.Join(liked, ", ")))

	prompt.WriteString(`** FOOD REQUIREMENTS **
- MUST INCLUDE 2-3 FOOD SPOTS PER DAY, except on fixed plan days:
   - Morning: a specific Cafe or Breakfast spot (optional when a hotel is given).
   - Afternoon: a specific Lunch spot.
   - Evening: a specific Dinner spot.
- If Budget is Low: Suggest Street Food or Cheap Eats.

** GEOGRAPHIC LOGIC (CLUSTERING) **
- Each day focuses on one area/neighborhood (approx 5-10km radius). Do not zigzag across the city.
- Restaurants MUST be within WALKING DISTANCE (1-2km) of the preceding or following activity.

** BADGE RULES (EXTREMELY RARE) **
- MUTUAL EXCLUSIVITY: An activity CANNOT be both 'isPopular' and 'isLocalRecommendation'.
- isPopular: TRUE only for globally recognized landmarks (e.g. Eiffel Tower, Colosseum). MAX 1 per day. If unsure, set FALSE.
- isLocalRecommendation: TRUE only for specific, named, high-quality hidden gems. MAX 1 per day.
- isMichelin: TRUE only if verifiable Michelin Star.
- SCARCITY: 90% of activities should have NO badges.

** DATA REQUIREMENTS (CRITICAL) **
- name: MUST be the SPECIFIC BUSINESS NAME (e.g. "Joe's Coffee", "The Louvre", "Central Park").
- emoji: MUST be a SINGLE emoji character (e.g. "🍕", "🎨"). NO text.
- mapsQuery: EXACT Google Maps Name. FORBIDDEN: "Local Noodle Shop", "Street Food Vendor", "Coffee Shop".
- latitude/longitude: estimate them for every place.

`)

	prompt.WriteString("** JSON STRUCTURE **\n")
	prompt.WriteString(fmt.Sprintf(`{
  "destination": %q,
  "days": [
    {
      "dayNumber": %d,
      "date": "DD/MM/YYYY",
      "areaFocus": "Neighborhood",
      "title": "Day Theme",
      "vibe": "...",
      "vibeIcons": ["emoji"],
      "highlightEvent": { "name": "...", "description": "...", "mapsQuery": "..." },
      "morning": [{
        "name": "Specific Business Name",
        "description": "...",
        "emoji": "x",
        "category": "...",
        "type": "restaurant/attraction/user-plan",
        "isFixedPlan": false,
        "isLocalRecommendation": false,
        "isMichelin": false,
        "isPopular": false,
        "mapsQuery": "Specific Maps Query",
        "website": "https://...",
        "priceLevel": "$$$",
        "openingHours": "09:00 - 22:00",
        "admissionFee": "$20",
        "rating": 4.5,
        "latitude": 0.0,
        "longitude": 0.0
      }],
      "afternoon": [],
      "evening": []
    }
  ]
}
`, prefs.Destination, dayStart))

	return prompt.String()
}

func (p *PromptService) BuildOptimizationPrompt(draft *response_models.Itinerary, prefs *request_models.UserPreferences) (string, error) {
	raw, err := json.Marshal(draft)
	if err != nil {
		return "", err
	}

	var prompt strings.Builder
	prompt.WriteString(fmt.Sprintf("Act as a **Travel Logistics Expert**. Review and optimize this itinerary for %s.\n\n", prefs.Destination))
	prompt.WriteString("CURRENT ITINERARY JSON:\n")
	prompt.Write(raw)
	prompt.WriteString(`

YOUR MISSION:
1. **ELIMINATE GENERIC LOCATIONS**:
   - Scan "mapsQuery" for every activity.
   - IF it says "Best Ramen", "Local Street Food", "Coffee Shop", or anything generic, REPLACE it with a specific, real-world, high-rated establishment nearby.
   - Example: Change "Local Noodle Stall" -> "Ah Hock Fried Hokkien Mee".

2. **GEOGRAPHIC CONSISTENCY**:
   - Check lat/long. Group activities by neighborhood.
   - IF an activity is >3km away from the day's cluster, REPLACE it with a similar activity nearby.

3. **LOGICAL ROUTING**:
   - Re-order activities (Morning -> Afternoon -> Evening) for logical flow.

4. **DATA COMPLETENESS**:
   - Ensure EVERY activity (except 'user-plan') has valid "priceLevel", "openingHours", and "rating".
   - Ensure "mapsQuery" is specific (Name + Address).

5. **BADGE CLEANUP**:
   - Ensure fewer than 15% of all activities have a badge.
   - If there are too many 'isPopular' or 'isLocalRecommendation', set them to false.

Keep every "dayNumber" and every 'user-plan' activity unchanged.
Return the **OPTIMIZED** JSON object only.
`)
	return prompt.String(), nil
}

func (p *PromptService) BuildAlternativePrompt(
	prefs *request_models.UserPreferences,
	activity response_models.Activity,
	ctx request_models.ActivityContext,
	existingNames []string,
	customRequest string,
) string {
	categoryInstruction := "Maintain the same vibe."
	if activity.Category != "" {
		categoryInstruction = fmt.Sprintf("Original Category: %q. Try to suggest another %q unless instruction says otherwise.", activity.Category, activity.Category)
	}
	if strings.TrimSpace(customRequest) == "" {
		customRequest = "Something different but nearby"
	}

	var prompt strings.Builder
	prompt.WriteString(fmt.Sprintf("Suggest an ALTERNATIVE activity for: %q in %s.\n", activity.Name, prefs.Destination))
	prompt.WriteString(fmt.Sprintf("Category: %q. Type: %q.\n", activity.Category, activity.Type))
	prompt.WriteString(fmt.Sprintf("Context: %s, %s, %s.\n", ctx.DayTitle, ctx.Area, ctx.TimeOfDay))
	prompt.WriteString(fmt.Sprintf("User Vibe: %s. Budget: %s.\n", prefs.Vibe, prefs.Budget))
	prompt.WriteString(fmt.Sprintf("User Instruction: %q.\n\n", customRequest))

	prompt.WriteString("Rules:\n")
	prompt.WriteString(fmt.Sprintf("1. %s\n", categoryInstruction))
	prompt.WriteString("2. Must be real and currently operational.\n")
	prompt.WriteString("3. MUST include priceLevel, openingHours, rating, mapsQuery.\n")
	prompt.WriteString("4. mapsQuery MUST be a specific place name, NO generic search terms.\n")
	if len(existingNames) > 0 {
		prompt.WriteString(fmt.Sprintf("5. Do NOT suggest anything already in the itinerary: [ %s ].\n", strings.Join(existingNames, ", ")))
	}
	prompt.WriteString("\nReturn strictly one JSON object matching the Activity structure.\n")
	return prompt.String()
}

func (p *PromptService) BuildDayImagePrompt(dayTitle, area, destination, vibe string) string {
	title := dayTitle
	if strings.Contains(dayTitle, "Meeting") || strings.Contains(dayTitle, "Plan") {
		title = safeImageTitle
	}
	return fmt.Sprintf("Travel illustration for %s, %s. Mood: %s, %s. Style: Flat vector art, pastel colors, cheerful, soft lighting. Aspect Ratio: 16:9. No text.",
		destination, area, vibe, title)
}

func paceDirective(prefs *request_models.UserPreferences) string {
	age := TravelerAge(prefs.Demographics.Age)
	switch {
	case prefs.Pace == request_models.PaceSlow || age >= seniorAge:
		return fmt.Sprintf(`** PACE: RELAXED / SENIOR FRIENDLY **
- User is %d years old (or requested SLOW pace).
- **MAXIMUM 3 activities per day** (excluding meals).
- Avoid high-intensity physical activities.
`, age)
	case prefs.Pace == request_models.PaceFast:
		return `** PACE: FAST / PACKED **
- User requested FAST pace.
- Pack the day with 5+ activities.
`
	default:
		return `** PACE: BALANCED **
- User requested BALANCED pace.
- Include 3-4 main activities per day.
`
	}
}

func budgetDirective(budget string) string {
	switch budget {
	case request_models.BudgetLow:
		return `** STRICT LOW BUDGET **
- NO LUXURY SHOPPING. NO HIGH-END MALLS.
- FOOD: Prioritize street food, night markets, and affordable local diners ($-$$).
- ACTIVITIES: Focus on free entry parks, walking districts, and cheap museums.
`
	case request_models.BudgetHigh:
		return `** HIGH BUDGET **
- Include fine dining options ($$$$).
- Luxury shopping districts are allowed.
`
	default:
		return ""
	}
}

func fixedPlanDirective(plans []request_models.FixedPlan) string {
	if len(plans) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("** STRICT FIXED PLAN LOCK **\n")
	b.WriteString("The user has manually added plans:\n")
	for _, plan := range plans {
		b.WriteString(fmt.Sprintf("DATE: %s -> USER LOCKED PLAN: %q\n", utils.FormatDateForPrompt(plan.Date), plan.Description))
	}
	b.WriteString(`INSTRUCTIONS FOR THESE DATES:
- Day Title = the locked plan description.
- Morning: Create ONE activity object for the user's plan.
  - Set "name" to the locked plan description.
  - Set "type" to "user-plan".
  - Set "isFixedPlan" to true.
  - Set "rating", "priceLevel", "admissionFee", "openingHours" to null.
- Afternoon & Evening: Leave EMPTY arrays [].
- No Meals: Do NOT generate breakfast/lunch/dinner for these days.
`)
	return b.String()
}

func mustVisitDirective(mustVisit string) string {
	if strings.TrimSpace(mustVisit) == "" {
		return ""
	}
	return fmt.Sprintf(`** MANDATORY "MUST VISIT" REQUESTS (HIGHEST PRIORITY) **
The user explicitly requested: %q.
**CRITICAL INSTRUCTION**: You MUST include these specific activities or places in the itinerary.
- If specific places are named, find them and schedule them.
- If general wishes are made (e.g. "eat ramen"), find the BEST spot for it.
- INTEGRATE them logically into the day clusters.
- These items CANNOT be removed.
`, mustVisit)
}

func hotelDirective(hotel string) string {
	if strings.TrimSpace(hotel) == "" {
		return ""
	}
	return fmt.Sprintf("** HOTEL ANCHOR **: User is staying at %q. Start Day 1 here.\n", hotel)
}

// splitFollowUpAnswers turns the swipe answers into readable liked and
// rejected lists, sorted so the prompt is stable.
func splitFollowUpAnswers(answers map[string]bool) (liked, rejected []string) {
	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		label := strings.ReplaceAll(id, "_", " ")
		if answers[id] {
			liked = append(liked, label)
		} else {
			rejected = append(rejected, label)
		}
	}
	return liked, rejected
}

func interestBans(prefs *request_models.UserPreferences) []string {
	var bans []string
	if !prefs.HasInterest(request_models.InterestNightlife) {
		bans = append(bans, "NO NIGHTCLUBS, NO BARS.")
	}
	if !prefs.HasInterest(request_models.InterestShopping) {
		bans = append(bans, "NO SHOPPING MALLS.")
	}
	if !prefs.HasInterest(request_models.InterestActive) {
		bans = append(bans, "NO HIKING, NO GYMS.")
	}
	if !prefs.HasInterest(request_models.InterestCulture) {
		bans = append(bans, "MINIMIZE MUSEUMS unless famous.")
	}
	if len(bans) == 0 {
		bans = append(bans, "None.")
	}
	return bans
}

func demographicsJSON(d request_models.Demographics) string {
	raw, err := json.Marshal(d)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
