package profile

import (
	"context"
	"errors"
	"time"

	"github.com/UB-ES-2025-B3/fitapp-api/internal/db"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/shared/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const profileColumns = `id, user_id, first_name, last_name, gender, birth_date, height_cm, weight_kg, time_zone, goal_kcal_daily, points, created_at, updated_at`

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) GetByUser(ctx context.Context, userID string) (Profile, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM user_profiles WHERE user_id=$1
	`, userID)
	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, apperr.New(apperr.NotFound, "profile not found for user")
	}
	return p, err
}

func (s *Service) Create(ctx context.Context, input Profile) (Profile, error) {
	if err := validateTimeZone(input.TimeZone); err != nil {
		return Profile{}, err
	}

	var exists bool
	if err := s.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM user_profiles WHERE user_id=$1)
	`, input.UserID).Scan(&exists); err != nil {
		return Profile{}, err
	}
	if exists {
		return Profile{}, apperr.New(apperr.InvalidState, "profile already exists for user")
	}

	input.ID = uuid.NewString()
	input.Points = 0
	row := s.db.QueryRow(ctx, `
		INSERT INTO user_profiles (id, user_id, first_name, last_name, gender, birth_date, height_cm, weight_kg, time_zone, goal_kcal_daily, points)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,0)
		RETURNING created_at, updated_at
	`, input.ID, input.UserID, input.FirstName, input.LastName, input.Gender, input.BirthDate,
		input.HeightCm, input.WeightKg, input.TimeZone, input.GoalKcalDaily)
	if err := row.Scan(&input.CreatedAt, &input.UpdatedAt); err != nil {
		return Profile{}, err
	}
	return input, nil
}

func (s *Service) Update(ctx context.Context, userID string, patch Profile) (Profile, error) {
	if err := validateTimeZone(patch.TimeZone); err != nil {
		return Profile{}, err
	}

	existing, err := s.GetByUser(ctx, userID)
	if err != nil {
		return Profile{}, err
	}

	existing.FirstName = patch.FirstName
	existing.LastName = patch.LastName
	existing.Gender = patch.Gender
	existing.BirthDate = patch.BirthDate
	existing.HeightCm = patch.HeightCm
	existing.WeightKg = patch.WeightKg
	existing.TimeZone = patch.TimeZone
	existing.GoalKcalDaily = patch.GoalKcalDaily

	row := s.db.QueryRow(ctx, `
		UPDATE user_profiles
		SET first_name=$2, last_name=$3, gender=$4, birth_date=$5, height_cm=$6, weight_kg=$7, time_zone=$8, goal_kcal_daily=$9, updated_at=now()
		WHERE user_id=$1
		RETURNING updated_at
	`, userID, existing.FirstName, existing.LastName, existing.Gender, existing.BirthDate,
		existing.HeightCm, existing.WeightKg, existing.TimeZone, existing.GoalKcalDaily)
	if err := row.Scan(&existing.UpdatedAt); err != nil {
		return Profile{}, err
	}
	return existing, nil
}

// AddPoints increments the cumulative score in one statement so concurrent
// finishes cannot lose an increment.
func (s *Service) AddPoints(ctx context.Context, userID string, points int64) error {
	if points == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx, `
		UPDATE user_profiles SET points = points + $2, updated_at=now() WHERE user_id=$1
	`, userID, points)
	return err
}

func validateTimeZone(name string) error {
	if name == "" {
		return nil
	}
	if _, err := time.LoadLocation(name); err != nil {
		return apperr.New(apperr.InvalidArgument, "unknown time zone: "+name)
	}
	return nil
}

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.Gender, &p.BirthDate,
		&p.HeightCm, &p.WeightKg, &p.TimeZone, &p.GoalKcalDaily, &p.Points, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
