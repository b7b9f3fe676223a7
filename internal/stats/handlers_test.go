package stats

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func asUser(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	}
}

func TestKpisTodayHandler(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	app := fiber.New()
	RegisterHomeRoutes(app.Group("/home"), newTestService(mock, now), asUser("user-1"))

	expectCompleteProfile(mock, "")
	mock.ExpectQuery(`LEFT JOIN routes`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(finishedCols).
			AddRow(now.Add(-time.Hour), int64(1800), 400.0, 3.0))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM routes`).
		WithArgs("user-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	req := httptest.NewRequest(http.MethodGet, "/home/kpis-today", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("kpis status: %v %d", err, resp.StatusCode)
	}

	var kpis TodayKpis
	payload, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(payload, &kpis); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if kpis.RoutesCompleted != 1 || kpis.ActiveStreakDays != 1 {
		t.Fatalf("unexpected kpis: %+v", kpis)
	}
	if kpis.HasCreatedRouteToday {
		t.Fatalf("expected no route created today")
	}
}

func TestKpisTodayHandlerIncompleteProfile(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	app := fiber.New()
	RegisterHomeRoutes(app.Group("/home"), newTestService(mock, time.Now()), asUser("user-1"))

	mock.ExpectQuery(`SELECT id, user_id, first_name`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(profileCols).AddRow(
			"profile-1", "user-1", "Jane", "Doe", nil, nil, nil, nil,
			"", nil, int64(0), time.Now(), time.Now(),
		))

	req := httptest.NewRequest(http.MethodGet, "/home/kpis-today", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestEvolutionHandler(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	app := fiber.New()
	RegisterRoutes(app.Group("/stats"), newTestService(mock, now), asUser("user-1"), 30)

	expectCompleteProfile(mock, "")
	mock.ExpectQuery(`LEFT JOIN routes`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(finishedCols).
			AddRow(now.Add(-time.Hour), int64(1200), 500.0, 5.0))

	req := httptest.NewRequest(http.MethodGet, "/stats/evolution?metric=kcal&period=30d", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("evolution status: %v %d", err, resp.StatusCode)
	}

	var body struct {
		Checkpoints []DailyKcal `json:"checkpoints"`
	}
	payload, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Checkpoints) != 30 {
		t.Fatalf("expected 30 points, got %d", len(body.Checkpoints))
	}
}

func TestEvolutionHandlerRejectsUnknownMetricAndPeriod(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/stats"), newTestService(nil, time.Now()), asUser("user-1"), 30)

	req := httptest.NewRequest(http.MethodGet, "/stats/evolution?metric=steps", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request for metric, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/stats/evolution?period=7d", nil)
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request for period, got %d", resp.StatusCode)
	}
}

func TestEvolutionHandlerConfiguredDays(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	app := fiber.New()
	RegisterRoutes(app.Group("/stats"), newTestService(mock, now), asUser("user-1"), 7)

	expectCompleteProfile(mock, "")
	mock.ExpectQuery(`LEFT JOIN routes`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(finishedCols))

	req := httptest.NewRequest(http.MethodGet, "/stats/evolution?period=7d", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("evolution status: %v %d", err, resp.StatusCode)
	}

	var body struct {
		Checkpoints []DailyKcal `json:"checkpoints"`
	}
	payload, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Checkpoints) != 7 {
		t.Fatalf("expected 7 points, got %d", len(body.Checkpoints))
	}

	// the old hardcoded period no longer matches this deployment
	req = httptest.NewRequest(http.MethodGet, "/stats/evolution?period=30d", nil)
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request for mismatched period, got %d", resp.StatusCode)
	}
}
