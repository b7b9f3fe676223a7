package route

import "time"

type Route struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Name        string       `json:"name"`
	StartPoint  string       `json:"start_point"` // "lat,lng"
	EndPoint    string       `json:"end_point"`   // "lat,lng"
	DistanceKm  float64      `json:"distance_km"`
	Checkpoints []Checkpoint `json:"checkpoints,omitempty"`
	Deleted     bool         `json:"-"`
	CreatedAt   time.Time    `json:"created_at"`
}

type Checkpoint struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Point    string `json:"point"` // "lat,lng"
}
