package calories

import (
	"context"
	"log"
	"time"

	"github.com/UB-ES-2025-B3/fitapp-api/internal/db"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/profile"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/shared/apperr"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/shared/localday"
)

// met multipliers per activity type (Compendium of Physical Activities).
var metByActivity = map[string]float64{
	"RUNNING_SLOW":     8.3,
	"RUNNING_MODERATE": 9.8,
	"RUNNING_INTENSE":  11.8,
	"CYCLING_SLOW":     4.3,
	"CYCLING_MODERATE": 7.0,
	"CYCLING_INTENSE":  9.0,
	"WALKING_SLOW":     2.0,
	"WALKING_MODERATE": 3.5,
	"WALKING_INTENSE":  5.0,
}

// Engine derives energy expenditure from a profile and an activity sample,
// and answers whether the user's daily kcal goal is already met.
type Engine struct {
	db        db.Querier
	storageTZ *time.Location
	now       func() time.Time
}

func NewEngine(querier db.Querier, storageTZ *time.Location) *Engine {
	if storageTZ == nil {
		storageTZ = time.UTC
	}
	return &Engine{db: querier, storageTZ: storageTZ, now: time.Now}
}

// Calculate returns kcal burned: (BMR/24/60) · MET · minutes.
func (e *Engine) Calculate(p profile.Profile, activityType string, durationSec int64) (float64, error) {
	if !p.Complete() {
		return 0, apperr.New(apperr.ProfileIncomplete, "user profile is not completed")
	}

	bmr, err := basalMetabolicRate(*p.Gender, *p.WeightKg, *p.HeightCm, wholeYears(*p.BirthDate, e.now()))
	if err != nil {
		return 0, err
	}
	met, ok := metByActivity[activityType]
	if !ok {
		return 0, apperr.New(apperr.InvalidArgument, "unknown activity type: "+activityType)
	}

	bmrPerMinute := bmr / 24 / 60
	durationMinutes := float64(durationSec) / 60
	return bmrPerMinute * met * durationMinutes, nil
}

// HasReachedDailyGoal sums calories of today's finished executions, where
// "today" is the profile's local calendar day. Stored end times live in
// the storage zone, so the local day window is converted to instants for
// the query and each row is converted back before the date comparison.
// Any failure degrades to false; this never blocks a finish.
func (e *Engine) HasReachedDailyGoal(ctx context.Context, p profile.Profile) bool {
	if p.UserID == "" || p.GoalKcalDaily == nil {
		return false
	}

	userZone := p.Location(e.storageTZ)
	dayStart, dayEnd := localday.DayWindow(e.now(), userZone)

	rows, err := e.db.Query(ctx, `
		SELECT end_time, calories
		FROM route_executions
		WHERE user_id=$1 AND status='FINISHED' AND end_time >= $2 AND end_time < $3
	`, p.UserID, dayStart.In(e.storageTZ), dayEnd.In(e.storageTZ))
	if err != nil {
		log.Printf("daily goal lookup failed for user %s: %v", p.UserID, err)
		return false
	}
	defer rows.Close()

	var total float64
	for rows.Next() {
		var endTime time.Time
		var kcal *float64
		if err := rows.Scan(&endTime, &kcal); err != nil {
			log.Printf("daily goal scan failed for user %s: %v", p.UserID, err)
			return false
		}
		if kcal == nil {
			continue
		}
		if localday.SameLocalDay(endTime, dayStart, userZone) {
			total += *kcal
		}
	}
	if err := rows.Err(); err != nil {
		log.Printf("daily goal rows failed for user %s: %v", p.UserID, err)
		return false
	}

	return total >= *p.GoalKcalDaily
}

// basalMetabolicRate implements Mifflin-St Jeor. The formula is only
// defined for MALE and FEMALE; other values are rejected.
func basalMetabolicRate(gender string, weightKg, heightCm float64, age int) (float64, error) {
	switch gender {
	case profile.GenderMale:
		return 10*weightKg + 6.25*heightCm - 5*float64(age) + 5, nil
	case profile.GenderFemale:
		return 10*weightKg + 6.25*heightCm - 5*float64(age) - 161, nil
	default:
		return 0, apperr.New(apperr.InvalidArgument, "invalid gender: "+gender)
	}
}

func wholeYears(birth, today time.Time) int {
	years := today.Year() - birth.Year()
	// birthday not reached yet this year
	if today.Month() < birth.Month() ||
		(today.Month() == birth.Month() && today.Day() < birth.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
