package execution

import "time"

// Status is the closed set of execution states. Transitions go through
// canTransition so illegal moves cannot be reintroduced per-operation.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusPaused     Status = "PAUSED"
	StatusFinished   Status = "FINISHED"
)

var transitions = map[Status]map[Status]bool{
	StatusInProgress: {StatusPaused: true, StatusFinished: true},
	StatusPaused:     {StatusInProgress: true, StatusFinished: true},
	StatusFinished:   {}, // terminal
}

func canTransition(from, to Status) bool {
	return transitions[from][to]
}

var activityTypes = map[string]bool{
	"WALKING_SLOW":     true,
	"WALKING_MODERATE": true,
	"WALKING_INTENSE":  true,
	"RUNNING_SLOW":     true,
	"RUNNING_MODERATE": true,
	"RUNNING_INTENSE":  true,
	"CYCLING_SLOW":     true,
	"CYCLING_MODERATE": true,
	"CYCLING_INTENSE":  true,
}

func ValidActivityType(s string) bool {
	return activityTypes[s]
}

// Execution is one session of a user performing an activity along a route.
// PauseTime is non-nil exactly while the session is PAUSED.
type Execution struct {
	ID             string     `json:"id"`
	RouteID        string     `json:"route_id"`
	UserID         string     `json:"user_id"`
	Status         Status     `json:"status"`
	ActivityType   string     `json:"activity_type"`
	StartTime      time.Time  `json:"start_time"`
	PauseTime      *time.Time `json:"pause_time,omitempty"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	TotalPausedSec int64      `json:"total_paused_sec"`
	DurationSec    int64      `json:"duration_sec"`
	Calories       float64    `json:"calories"`
	Points         int64      `json:"points"`
	Notes          string     `json:"notes"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
