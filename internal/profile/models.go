package profile

import "time"

const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
)

type Profile struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Gender        *string    `json:"gender"`
	BirthDate     *time.Time `json:"birth_date"`
	HeightCm      *float64   `json:"height_cm"`
	WeightKg      *float64   `json:"weight_kg"`
	TimeZone      string     `json:"time_zone"`
	GoalKcalDaily *float64   `json:"goal_kcal_daily"`
	Points        int64      `json:"points"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Complete reports whether the biometric fields needed for calorie
// computation are all present.
func (p Profile) Complete() bool {
	return p.Gender != nil && p.BirthDate != nil && p.HeightCm != nil && p.WeightKg != nil
}

// Location resolves the profile timezone, falling back when unset or
// unknown.
func (p Profile) Location(fallback *time.Location) *time.Location {
	if p.TimeZone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(p.TimeZone)
	if err != nil {
		return fallback
	}
	return loc
}
