package execution

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/UB-ES-2025-B3/fitapp-api/internal/calories"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/db"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/gamification"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/profile"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/route"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/shared/apperr"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/stream"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const executionColumns = `id, route_id, user_id, status, activity_type, start_time, pause_time, end_time, total_paused_sec, COALESCE(duration_sec,0), COALESCE(calories,0), COALESCE(points,0), COALESCE(notes,''), created_at, updated_at`

// Service owns the lifecycle of activity sessions. All lookups are scoped
// by (execution id, user id), so a foreign execution is indistinguishable
// from a missing one.
type Service struct {
	db       db.Querier
	profiles *profile.Service
	routes   *route.Service
	calories *calories.Engine
	board    *gamification.Leaderboard
	hub      *stream.Hub
	now      func() time.Time
}

func NewService(querier db.Querier, profiles *profile.Service, routes *route.Service, engine *calories.Engine, board *gamification.Leaderboard, hub *stream.Hub) *Service {
	return &Service{
		db:       querier,
		profiles: profiles,
		routes:   routes,
		calories: engine,
		board:    board,
		hub:      hub,
		now:      time.Now,
	}
}

func (s *Service) Start(ctx context.Context, userID, routeID, activityType, notes string) (Execution, error) {
	if !ValidActivityType(activityType) {
		return Execution{}, apperr.New(apperr.InvalidArgument, "unknown activity type: "+activityType)
	}
	if _, err := s.routes.Get(ctx, routeID); err != nil {
		return Execution{}, err
	}

	var userExists bool
	if err := s.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)
	`, userID).Scan(&userExists); err != nil {
		return Execution{}, err
	}
	if !userExists {
		return Execution{}, apperr.New(apperr.NotFound, "user not found: "+userID)
	}

	exec := Execution{
		ID:           uuid.NewString(),
		RouteID:      routeID,
		UserID:       userID,
		Status:       StatusInProgress,
		ActivityType: activityType,
		StartTime:    s.now(),
		Notes:        notes,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO route_executions (id, route_id, user_id, status, activity_type, start_time, total_paused_sec, duration_sec, notes)
		VALUES ($1,$2,$3,$4,$5,$6,0,0,$7)
		RETURNING created_at, updated_at
	`, exec.ID, exec.RouteID, exec.UserID, exec.Status, exec.ActivityType, exec.StartTime, exec.Notes)
	if err := row.Scan(&exec.CreatedAt, &exec.UpdatedAt); err != nil {
		return Execution{}, err
	}

	s.publish(exec)
	return exec, nil
}

func (s *Service) Pause(ctx context.Context, executionID, userID string) (Execution, error) {
	exec, err := s.get(ctx, executionID, userID)
	if err != nil {
		return Execution{}, err
	}

	// A second pause raises instead of answering idempotently; callers
	// depend on the strict precondition.
	if !canTransition(exec.Status, StatusPaused) {
		return Execution{}, apperr.New(apperr.InvalidState, "execution is not in progress and cannot be paused")
	}

	pausedAt := s.now()
	exec.PauseTime = &pausedAt
	exec.Status = StatusPaused

	row := s.db.QueryRow(ctx, `
		UPDATE route_executions SET status=$3, pause_time=$4, updated_at=now()
		WHERE id=$1 AND user_id=$2
		RETURNING updated_at
	`, exec.ID, exec.UserID, exec.Status, exec.PauseTime)
	if err := row.Scan(&exec.UpdatedAt); err != nil {
		return Execution{}, err
	}

	s.publish(exec)
	return exec, nil
}

func (s *Service) Resume(ctx context.Context, executionID, userID string) (Execution, error) {
	exec, err := s.get(ctx, executionID, userID)
	if err != nil {
		return Execution{}, err
	}

	if !canTransition(exec.Status, StatusInProgress) {
		return Execution{}, apperr.New(apperr.InvalidState, "execution is not paused and cannot be resumed")
	}

	exec.TotalPausedSec += s.pausedSecondsUntilNow(exec.PauseTime)
	exec.PauseTime = nil
	exec.Status = StatusInProgress

	row := s.db.QueryRow(ctx, `
		UPDATE route_executions SET status=$3, pause_time=NULL, total_paused_sec=$4, updated_at=now()
		WHERE id=$1 AND user_id=$2
		RETURNING updated_at
	`, exec.ID, exec.UserID, exec.Status, exec.TotalPausedSec)
	if err := row.Scan(&exec.UpdatedAt); err != nil {
		return Execution{}, err
	}

	s.publish(exec)
	return exec, nil
}

// Finish closes the session and derives calories and points. Finishing an
// already finished execution returns the stored record untouched. Metric
// derivation is fail-open: the session always reaches FINISHED even when
// calories or points cannot be computed.
func (s *Service) Finish(ctx context.Context, executionID, userID string, activityTypeOverride, notes *string) (Execution, error) {
	exec, err := s.get(ctx, executionID, userID)
	if err != nil {
		return Execution{}, err
	}

	if exec.Status == StatusFinished {
		return exec, nil
	}

	if activityTypeOverride != nil {
		if !ValidActivityType(*activityTypeOverride) {
			return Execution{}, apperr.New(apperr.InvalidArgument, "unknown activity type: "+*activityTypeOverride)
		}
		exec.ActivityType = *activityTypeOverride
	}
	if notes != nil {
		exec.Notes = *notes
	}

	if exec.Status == StatusPaused {
		exec.TotalPausedSec += s.pausedSecondsUntilNow(exec.PauseTime)
		exec.PauseTime = nil
	}

	endTime := s.now()
	exec.EndTime = &endTime
	exec.Status = StatusFinished

	elapsed := int64(endTime.Sub(exec.StartTime).Seconds())
	exec.DurationSec = elapsed - exec.TotalPausedSec
	if exec.DurationSec < 0 {
		exec.DurationSec = 0
	}

	prof, profErr := s.profiles.GetByUser(ctx, userID)

	exec.Calories = s.caloriesSafe(exec, prof, profErr)
	exec.Points = s.pointsSafe(ctx, exec, prof, profErr)

	row := s.db.QueryRow(ctx, `
		UPDATE route_executions
		SET status=$3, activity_type=$4, pause_time=NULL, end_time=$5, total_paused_sec=$6, duration_sec=$7, calories=$8, points=$9, notes=$10, updated_at=now()
		WHERE id=$1 AND user_id=$2
		RETURNING updated_at
	`, exec.ID, exec.UserID, exec.Status, exec.ActivityType, exec.EndTime, exec.TotalPausedSec,
		exec.DurationSec, exec.Calories, exec.Points, exec.Notes)
	if err := row.Scan(&exec.UpdatedAt); err != nil {
		return Execution{}, err
	}

	if exec.Points > 0 {
		if err := s.profiles.AddPoints(ctx, userID, exec.Points); err != nil {
			return Execution{}, err
		}
		s.board.Add(ctx, userID, exec.Points)
	}

	s.publish(exec)
	return exec, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Execution, error) {
	return s.list(ctx, `
		SELECT `+executionColumns+`
		FROM route_executions WHERE user_id=$1
		ORDER BY start_time DESC
	`, userID)
}

// History returns finished executions only, most recent first.
func (s *Service) History(ctx context.Context, userID string) ([]Execution, error) {
	return s.list(ctx, `
		SELECT `+executionColumns+`
		FROM route_executions WHERE user_id=$1 AND status='FINISHED'
		ORDER BY end_time DESC
	`, userID)
}

// caloriesSafe guards the calorie computation so an incomplete profile or
// unknown activity degrades to zero instead of aborting the finish.
func (s *Service) caloriesSafe(exec Execution, prof profile.Profile, profErr error) float64 {
	if exec.DurationSec <= 0 {
		return 0
	}
	if profErr != nil {
		log.Printf("no calorie calculation for execution %s: %v", exec.ID, profErr)
		return 0
	}

	kcal, err := s.calories.Calculate(prof, exec.ActivityType, exec.DurationSec)
	if err != nil {
		log.Printf("cannot calculate calories for execution %s: %v", exec.ID, err)
		return 0
	}
	return kcal
}

// pointsSafe is the same fail-open guard for the gamification score.
func (s *Service) pointsSafe(ctx context.Context, exec Execution, prof profile.Profile, profErr error) int64 {
	if exec.DurationSec <= 0 {
		return 0
	}
	if profErr != nil {
		log.Printf("no points calculation for execution %s: %v", exec.ID, profErr)
		return 0
	}

	distanceKm, err := s.routes.Distance(ctx, exec.RouteID)
	if err != nil {
		log.Printf("cannot calculate points for execution %s: %v", exec.ID, err)
		return 0
	}

	goalReached := s.calories.HasReachedDailyGoal(ctx, prof)
	return gamification.CalculatePoints(distanceKm, exec.DurationSec, exec.ActivityType, goalReached)
}

func (s *Service) pausedSecondsUntilNow(pauseTime *time.Time) int64 {
	if pauseTime == nil {
		return 0
	}
	elapsed := int64(s.now().Sub(*pauseTime).Seconds())
	// clock skew must never shrink the accumulated total
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func (s *Service) get(ctx context.Context, executionID, userID string) (Execution, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+executionColumns+`
		FROM route_executions WHERE id=$1 AND user_id=$2
	`, executionID, userID)
	exec, err := scanExecution(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Execution{}, apperr.New(apperr.NotFound, "execution not found for id: "+executionID)
	}
	return exec, err
}

func (s *Service) list(ctx context.Context, sql, userID string) ([]Execution, error) {
	rows, err := s.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var execs []Execution
	for rows.Next() {
		exec, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		execs = append(execs, exec)
	}
	return execs, rows.Err()
}

func (s *Service) publish(exec Execution) {
	at := s.now()
	if exec.EndTime != nil {
		at = *exec.EndTime
	}
	s.hub.Publish(stream.Event{
		ExecutionID: exec.ID,
		UserID:      exec.UserID,
		Status:      string(exec.Status),
		At:          at,
	})
}

func scanExecution(row pgx.Row) (Execution, error) {
	var exec Execution
	err := row.Scan(&exec.ID, &exec.RouteID, &exec.UserID, &exec.Status, &exec.ActivityType,
		&exec.StartTime, &exec.PauseTime, &exec.EndTime, &exec.TotalPausedSec,
		&exec.DurationSec, &exec.Calories, &exec.Points, &exec.Notes, &exec.CreatedAt, &exec.UpdatedAt)
	return exec, err
}
