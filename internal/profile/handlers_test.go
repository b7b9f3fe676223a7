package profile

import (
	"bytes"
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

func TestProfileHandlersGetCreateUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	app := fiber.New()
	RegisterRoutes(app.Group("/profiles"), NewService(mock), asUser("user-1"))

	now := time.Now()
	gender := GenderMale

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM user_profiles`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO user_profiles`).
		WithArgs(pgxmock.AnyArg(), "user-1", "Jane", "Doe", pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), "", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	body, _ := json.Marshal(Profile{FirstName: "Jane", LastName: "Doe", Gender: &gender})
	req := httptest.NewRequest(http.MethodPost, "/profiles/me", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status: %v %d", err, resp.StatusCode)
	}

	mock.ExpectQuery(`SELECT id, user_id, first_name`).
		WithArgs("user-1").
		WillReturnRows(profileRow(Profile{ID: "profile-1", UserID: "user-1", FirstName: "Jane", Points: 42}))

	req = httptest.NewRequest(http.MethodGet, "/profiles/me", nil)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("get status: %v %d", err, resp.StatusCode)
	}

	var p Profile
	payload, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(payload, &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Points != 42 {
		t.Fatalf("expected points in payload, got %d", p.Points)
	}

	mock.ExpectQuery(`SELECT id, user_id, first_name`).
		WithArgs("user-1").
		WillReturnRows(profileRow(Profile{ID: "profile-1", UserID: "user-1", FirstName: "Jane"}))
	mock.ExpectQuery(`UPDATE user_profiles`).
		WithArgs("user-1", "Janet", "", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), "", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(now))

	body, _ = json.Marshal(Profile{FirstName: "Janet"})
	req = httptest.NewRequest(http.MethodPut, "/profiles/me", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("update status: %v %d", err, resp.StatusCode)
	}
}

func TestProfileHandlersGetNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	app := fiber.New()
	RegisterRoutes(app.Group("/profiles"), NewService(mock), asUser("user-1"))

	mock.ExpectQuery(`SELECT id, user_id, first_name`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(profileCols))

	req := httptest.NewRequest(http.MethodGet, "/profiles/me", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected not found, got %d", resp.StatusCode)
	}
}

func TestProfileHandlersCreateConflict(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	app := fiber.New()
	RegisterRoutes(app.Group("/profiles"), NewService(mock), asUser("user-1"))

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM user_profiles`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	req := httptest.NewRequest(http.MethodPost, "/profiles/me", bytes.NewReader([]byte(`{"first_name":"Jane"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected conflict, got %d", resp.StatusCode)
	}
}
