package route

import (
	"context"
	"errors"
	"time"

	"github.com/UB-ES-2025-B3/fitapp-api/internal/db"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/shared/apperr"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/shared/geo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Create(ctx context.Context, input Route) (Route, error) {
	startLat, startLng, err := geo.ParsePoint(input.StartPoint)
	if err != nil {
		return Route{}, apperr.New(apperr.InvalidArgument, err.Error())
	}
	endLat, endLng, err := geo.ParsePoint(input.EndPoint)
	if err != nil {
		return Route{}, apperr.New(apperr.InvalidArgument, err.Error())
	}
	if input.DistanceKm < 0 {
		return Route{}, apperr.New(apperr.InvalidArgument, "distance_km must be >= 0")
	}
	if input.DistanceKm == 0 {
		input.DistanceKm = geo.HaversineKm(startLat, startLng, endLat, endLng)
	}
	for _, cp := range input.Checkpoints {
		if _, _, err := geo.ParsePoint(cp.Point); err != nil {
			return Route{}, apperr.New(apperr.InvalidArgument, err.Error())
		}
	}

	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO routes (id, user_id, name, start_point, end_point, distance_km, deleted)
		VALUES ($1,$2,$3,$4,$5,$6,false)
		RETURNING created_at
	`, input.ID, input.UserID, input.Name, input.StartPoint, input.EndPoint, input.DistanceKm)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Route{}, err
	}

	for i, cp := range input.Checkpoints {
		cp.Position = i
		input.Checkpoints[i] = cp
		_, err := s.db.Exec(ctx, `
			INSERT INTO route_checkpoints (route_id, position, name, point)
			VALUES ($1,$2,$3,$4)
		`, input.ID, cp.Position, cp.Name, cp.Point)
		if err != nil {
			return Route{}, err
		}
	}
	return input, nil
}

func (s *Service) Get(ctx context.Context, id string) (Route, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, name, start_point, end_point, distance_km, deleted, created_at
		FROM routes WHERE id=$1 AND deleted=false
	`, id)
	r, err := scanRoute(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Route{}, apperr.New(apperr.NotFound, "route not found for id: "+id)
	}
	if err != nil {
		return Route{}, err
	}

	r.Checkpoints, err = s.checkpoints(ctx, id)
	return r, err
}

// Distance returns the recorded distance even for soft-deleted routes so
// finished executions keep scoring against the route they actually ran.
func (s *Service) Distance(ctx context.Context, id string) (float64, error) {
	var km float64
	err := s.db.QueryRow(ctx, `SELECT distance_km FROM routes WHERE id=$1`, id).Scan(&km)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, apperr.New(apperr.NotFound, "route not found for id: "+id)
	}
	return km, err
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]Route, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, name, start_point, end_point, distance_km, deleted, created_at
		FROM routes WHERE user_id=$1 AND deleted=false
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []Route
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

func (s *Service) Update(ctx context.Context, id, userID string, patch Route) (Route, error) {
	existing, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return Route{}, err
	}

	if patch.Name != "" {
		existing.Name = patch.Name
	}
	if patch.StartPoint != "" {
		if _, _, err := geo.ParsePoint(patch.StartPoint); err != nil {
			return Route{}, apperr.New(apperr.InvalidArgument, err.Error())
		}
		existing.StartPoint = patch.StartPoint
	}
	if patch.EndPoint != "" {
		if _, _, err := geo.ParsePoint(patch.EndPoint); err != nil {
			return Route{}, apperr.New(apperr.InvalidArgument, err.Error())
		}
		existing.EndPoint = patch.EndPoint
	}
	if patch.DistanceKm > 0 {
		existing.DistanceKm = patch.DistanceKm
	}

	_, err = s.db.Exec(ctx, `
		UPDATE routes
		SET name=$3, start_point=$4, end_point=$5, distance_km=$6
		WHERE id=$1 AND user_id=$2
	`, id, userID, existing.Name, existing.StartPoint, existing.EndPoint, existing.DistanceKm)
	if err != nil {
		return Route{}, err
	}
	return existing, nil
}

// Delete soft-deletes so finished executions keep their history.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE routes SET deleted=true WHERE id=$1 AND user_id=$2 AND deleted=false
	`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "route not found for id: "+id)
	}
	return nil
}

// HasCreatedRouteInWindow backs the home KPI boolean. The window is the
// caller's local day converted to instants.
func (s *Service) HasCreatedRouteInWindow(ctx context.Context, userID string, start, end time.Time) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM routes WHERE user_id=$1 AND created_at >= $2 AND created_at < $3)
	`, userID, start, end).Scan(&exists)
	return exists, err
}

func (s *Service) getOwned(ctx context.Context, id, userID string) (Route, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, name, start_point, end_point, distance_km, deleted, created_at
		FROM routes WHERE id=$1 AND user_id=$2 AND deleted=false
	`, id, userID)
	r, err := scanRoute(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Route{}, apperr.New(apperr.NotFound, "route not found for id: "+id)
	}
	return r, err
}

func (s *Service) checkpoints(ctx context.Context, routeID string) ([]Checkpoint, error) {
	rows, err := s.db.Query(ctx, `
		SELECT position, name, point
		FROM route_checkpoints WHERE route_id=$1
		ORDER BY position
	`, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cps []Checkpoint
	for rows.Next() {
		var cp Checkpoint
		if err := rows.Scan(&cp.Position, &cp.Name, &cp.Point); err != nil {
			return nil, err
		}
		cps = append(cps, cp)
	}
	return cps, rows.Err()
}

func scanRoute(row pgx.Row) (Route, error) {
	var r Route
	err := row.Scan(&r.ID, &r.UserID, &r.Name, &r.StartPoint, &r.EndPoint, &r.DistanceKm, &r.Deleted, &r.CreatedAt)
	return r, err
}
