package utils

import (
	"math"
	"strings"
	"time"
)

const isoDateLayout = "2006-01-02"

func ParseISODate(s string) (time.Time, error) {
	return time.Parse(isoDateLayout, strings.TrimSpace(s))
}

// FormatDateForPrompt turns YYYY-MM-DD into DD/MM/YYYY. Inputs that are not
// three dash-separated parts are returned unchanged.
func FormatDateForPrompt(isoDate string) string {
	if isoDate == "" {
		return ""
	}
	parts := strings.Split(isoDate, "-")
	if len(parts) != 3 {
		return isoDate
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

// TripDurationDays counts both endpoints of the trip and never returns less
// than one. Unparseable dates count as a single day.
func TripDurationDays(startDate, endDate string) int {
	start, err := ParseISODate(startDate)
	if err != nil {
		return 1
	}
	end, err := ParseISODate(endDate)
	if err != nil {
		return 1
	}
	days := int(math.Ceil(end.Sub(start).Hours()/24)) + 1
	if days < 1 {
		return 1
	}
	return days
}

// PreviewDayCount is the number of days generated before payment: one day
// for trips up to four days, two from five days on.
func PreviewDayCount(totalDays int) int {
	if totalDays >= 5 {
		return 2
	}
	return 1
}

// DateForDay returns the ISO date of the given 1-based trip day.
func DateForDay(startDate string, dayNumber int) string {
	start, err := ParseISODate(startDate)
	if err != nil || dayNumber < 1 {
		return ""
	}
	return start.AddDate(0, 0, dayNumber-1).Format(isoDateLayout)
}

func NowUnixSeconds() int64 { return time.Now().Unix() }
