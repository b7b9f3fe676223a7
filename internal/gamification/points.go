package gamification

import "strings"

// Scoring constants. The per-day cap is applied per finish call, matching
// the shipped product behavior; there is no tracked daily running total.
const (
	RouteCompletedBonus = 10
	DailyGoalBonus      = 50
	MaxPointsPerDay     = 800
	MinDurationMinutes  = 5
)

var pointsPerKm = map[string]int{
	"RUNNING_SLOW":     12,
	"RUNNING_MODERATE": 15,
	"RUNNING_INTENSE":  18,
	"CYCLING_SLOW":     4,
	"CYCLING_MODERATE": 6,
	"CYCLING_INTENSE":  8,
	"WALKING_SLOW":     3,
	"WALKING_MODERATE": 5,
	"WALKING_INTENSE":  7,
}

const defaultPointsPerKm = 5

// CalculatePoints scores a finished execution. Too-short sessions and
// implausible distance/duration combinations score zero; the speed band
// check guards against GPS or distance spoofing.
func CalculatePoints(distanceKm float64, durationSec int64, activityType string, dailyGoalCompleted bool) int64 {
	durationMinutes := float64(durationSec) / 60

	if durationMinutes < MinDurationMinutes {
		return 0
	}
	if !plausiblePace(distanceKm, durationMinutes, activityType) {
		return 0
	}

	perKm, ok := pointsPerKm[strings.ToUpper(activityType)]
	if !ok {
		perKm = defaultPointsPerKm
	}

	total := distanceKm*float64(perKm) + RouteCompletedBonus
	if dailyGoalCompleted {
		total += DailyGoalBonus
	}
	if total > MaxPointsPerDay {
		total = MaxPointsPerDay
	}
	return int64(total)
}

// plausiblePace checks the implied speed against the activity family band.
func plausiblePace(distanceKm, durationMinutes float64, activityType string) bool {
	speedKmH := distanceKm / durationMinutes * 60

	switch family(activityType) {
	case "RUNNING":
		return speedKmH >= 4 && speedKmH <= 25
	case "CYCLING":
		return speedKmH >= 8 && speedKmH <= 50
	case "WALKING":
		return speedKmH >= 2 && speedKmH <= 10
	default:
		return speedKmH >= 1 && speedKmH <= 30
	}
}

func family(activityType string) string {
	upper := strings.ToUpper(activityType)
	if i := strings.IndexByte(upper, '_'); i > 0 {
		return upper[:i]
	}
	return upper
}
