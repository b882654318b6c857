package response_models

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

const (
	PeriodMorning   = "morning"
	PeriodAfternoon = "afternoon"
	PeriodEvening   = "evening"

	ActivityTypeUserPlan = "user-plan"
)

// FlexFloat accepts JSON numbers, numeric strings and null. Models are not
// consistent about quoting ratings and coordinates.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// Non-numeric text such as "N/A" is treated as unknown.
			*f = 0
			return nil
		}
		*f = FlexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

type Activity struct {
	Name                  string     `json:"name"`
	Description           string     `json:"description"`
	Duration              string     `json:"duration,omitempty"`
	Emoji                 string     `json:"emoji,omitempty"`
	Rating                *FlexFloat `json:"rating,omitempty"`
	PriceLevel            *string    `json:"priceLevel,omitempty"`
	OpeningHours          *string    `json:"openingHours,omitempty"`
	AdmissionFee          *string    `json:"admissionFee,omitempty"`
	Website               string     `json:"website,omitempty"`
	MapsQuery             string     `json:"mapsQuery"`
	Category              string     `json:"category,omitempty"`
	Type                  string     `json:"type"`
	IsLocalRecommendation bool       `json:"isLocalRecommendation,omitempty"`
	IsMichelin            bool       `json:"isMichelin,omitempty"`
	IsPopular             bool       `json:"isPopular,omitempty"`
	IsFixedPlan           bool       `json:"isFixedPlan,omitempty"`
	Latitude              *FlexFloat `json:"latitude,omitempty"`
	Longitude             *FlexFloat `json:"longitude,omitempty"`
	PlaceID               string     `json:"placeId,omitempty"`
}

type HighlightEvent struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MapsQuery   string `json:"mapsQuery"`
}

type DayPlan struct {
	DayNumber      int             `json:"dayNumber"`
	Date           string          `json:"date"`
	AreaFocus      string          `json:"areaFocus"`
	Title          string          `json:"title"`
	Vibe           string          `json:"vibe"`
	VibeIcons      []string        `json:"vibeIcons,omitempty"`
	Colors         []string        `json:"colors,omitempty"`
	Morning        []Activity      `json:"morning"`
	Afternoon      []Activity      `json:"afternoon"`
	Evening        []Activity      `json:"evening"`
	HighlightEvent *HighlightEvent `json:"highlightEvent,omitempty"`
}

// Period returns a pointer to the activity list for morning, afternoon or
// evening.
func (d *DayPlan) Period(name string) (*[]Activity, bool) {
	switch strings.ToLower(name) {
	case PeriodMorning:
		return &d.Morning, true
	case PeriodAfternoon:
		return &d.Afternoon, true
	case PeriodEvening:
		return &d.Evening, true
	default:
		return nil, false
	}
}

func (d *DayPlan) Activities() []Activity {
	all := make([]Activity, 0, len(d.Morning)+len(d.Afternoon)+len(d.Evening))
	all = append(all, d.Morning...)
	all = append(all, d.Afternoon...)
	return append(all, d.Evening...)
}

type Itinerary struct {
	Destination string    `json:"destination"`
	Days        []DayPlan `json:"days"`
}

func (it *Itinerary) HasDays() bool {
	return it != nil && len(it.Days) > 0
}

func (it *Itinerary) Day(number int) *DayPlan {
	if it == nil {
		return nil
	}
	for i := range it.Days {
		if it.Days[i].DayNumber == number {
			return &it.Days[i]
		}
	}
	return nil
}

// ActivityNames lists every activity name across all days.
func (it *Itinerary) ActivityNames() []string {
	if it == nil {
		return nil
	}
	var names []string
	for i := range it.Days {
		for _, a := range it.Days[i].Activities() {
			if a.Name != "" {
				names = append(names, a.Name)
			}
		}
	}
	return names
}

// MergeDays appends days to the itinerary, keeps the first occurrence of each
// day number and sorts by day number.
func (it *Itinerary) MergeDays(days []DayPlan) {
	seen := make(map[int]bool, len(it.Days)+len(days))
	merged := make([]DayPlan, 0, len(it.Days)+len(days))
	for _, d := range append(append([]DayPlan{}, it.Days...), days...) {
		if seen[d.DayNumber] {
			continue
		}
		seen[d.DayNumber] = true
		merged = append(merged, d)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].DayNumber < merged[j].DayNumber
	})
	it.Days = merged
}
