package stats

import (
	"context"
	"sort"
	"time"

	"github.com/UB-ES-2025-B3/fitapp-api/internal/db"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/profile"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/route"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/shared/apperr"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/shared/localday"
)

// Service aggregates finished executions into dashboard numbers. Pure
// reads; it never touches the lifecycle.
type Service struct {
	db        db.Querier
	profiles  *profile.Service
	routes    *route.Service
	storageTZ *time.Location
	now       func() time.Time
}

type TodayKpis struct {
	RoutesCompleted      int     `json:"routes_completed"`
	TotalDurationSec     int64   `json:"total_duration_sec"`
	TotalDistanceKm      float64 `json:"total_distance_km"`
	TotalCalories        float64 `json:"total_calories"`
	ActiveStreakDays     int     `json:"active_streak_days"`
	HasCreatedRouteToday bool    `json:"has_created_route_today"`
}

type DailyKcal struct {
	Date string  `json:"date"` // YYYY-MM-DD
	Kcal float64 `json:"kcal"`
}

func NewService(querier db.Querier, profiles *profile.Service, routes *route.Service, storageTZ *time.Location) *Service {
	if storageTZ == nil {
		storageTZ = time.UTC
	}
	return &Service{db: querier, profiles: profiles, routes: routes, storageTZ: storageTZ, now: time.Now}
}

type finishedExecution struct {
	endTime     time.Time
	durationSec int64
	calories    float64
	distanceKm  float64
}

func (s *Service) KpisToday(ctx context.Context, userID string) (TodayKpis, error) {
	prof, err := s.requireCompleteProfile(ctx, userID)
	if err != nil {
		return TodayKpis{}, err
	}

	zone := prof.Location(s.storageTZ)
	now := s.now()

	finished, err := s.finishedExecutions(ctx, userID)
	if err != nil {
		return TodayKpis{}, err
	}

	var kpis TodayKpis
	endTimes := make([]time.Time, 0, len(finished))
	for _, e := range finished {
		endTimes = append(endTimes, e.endTime)
		if !localday.SameLocalDay(e.endTime, now, zone) {
			continue
		}
		kpis.RoutesCompleted++
		kpis.TotalDurationSec += e.durationSec
		kpis.TotalDistanceKm += e.distanceKm
		kpis.TotalCalories += e.calories
	}

	kpis.ActiveStreakDays = ActiveStreak(endTimes, zone, now)

	dayStart, dayEnd := localday.DayWindow(now, zone)
	created, err := s.routes.HasCreatedRouteInWindow(ctx, userID, dayStart.In(s.storageTZ), dayEnd.In(s.storageTZ))
	if err != nil {
		return TodayKpis{}, err
	}
	kpis.HasCreatedRouteToday = created

	return kpis, nil
}

// ActiveStreak counts consecutive local calendar days with at least one
// finished execution, ending today. No execution today means zero, no
// matter how long yesterday's run was.
func ActiveStreak(endTimes []time.Time, zone *time.Location, now time.Time) int {
	seen := map[time.Time]bool{}
	var dates []time.Time
	for _, t := range endTimes {
		d := localday.LocalDate(t, zone)
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })

	today := localday.LocalDate(now, zone)
	streak := 0
	for _, d := range dates {
		expected := today.AddDate(0, 0, -streak)
		if d.Equal(expected) {
			streak++
		} else {
			break
		}
	}
	return streak
}

// Evolution returns exactly `days` per-day kcal sums, oldest first, zeros
// for idle days.
func (s *Service) Evolution(ctx context.Context, userID string, days int) ([]DailyKcal, error) {
	if days <= 0 {
		return nil, apperr.New(apperr.InvalidArgument, "days must be positive")
	}

	prof, err := s.requireCompleteProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	zone := prof.Location(s.storageTZ)
	today := localday.LocalDate(s.now(), zone)
	windowStart := today.AddDate(0, 0, -(days - 1))

	finished, err := s.finishedExecutions(ctx, userID)
	if err != nil {
		return nil, err
	}

	kcalByDay := map[time.Time]float64{}
	for _, e := range finished {
		d := localday.LocalDate(e.endTime, zone)
		if d.Before(windowStart) || d.After(today) {
			continue
		}
		kcalByDay[d] += e.calories
	}

	points := make([]DailyKcal, 0, days)
	for i := 0; i < days; i++ {
		d := windowStart.AddDate(0, 0, i)
		points = append(points, DailyKcal{
			Date: d.Format("2006-01-02"),
			Kcal: kcalByDay[d],
		})
	}
	return points, nil
}

func (s *Service) requireCompleteProfile(ctx context.Context, userID string) (profile.Profile, error) {
	prof, err := s.profiles.GetByUser(ctx, userID)
	if err != nil {
		return profile.Profile{}, err
	}
	if !prof.Complete() {
		return profile.Profile{}, apperr.New(apperr.ProfileIncomplete, "user profile is not complete")
	}
	return prof, nil
}

func (s *Service) finishedExecutions(ctx context.Context, userID string) ([]finishedExecution, error) {
	rows, err := s.db.Query(ctx, `
		SELECT e.end_time, COALESCE(e.duration_sec,0), COALESCE(e.calories,0), COALESCE(r.distance_km,0)
		FROM route_executions e
		LEFT JOIN routes r ON r.id = e.route_id
		WHERE e.user_id=$1 AND e.status='FINISHED' AND e.end_time IS NOT NULL
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var finished []finishedExecution
	for rows.Next() {
		var e finishedExecution
		if err := rows.Scan(&e.endTime, &e.durationSec, &e.calories, &e.distanceKm); err != nil {
			return nil, err
		}
		finished = append(finished, e)
	}
	return finished, rows.Err()
}
