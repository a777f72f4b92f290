package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cytolab/lims/internal/platform/apierr"
	"github.com/cytolab/lims/internal/platform/auth"
)

func serveStats(userID uuid.UUID, actorRole, target string) *httptest.ResponseRecorder {
	e := echo.New()
	e.HTTPErrorHandler = apierr.HTTPErrorHandler(zerolog.Nop())
	api := e.Group("/api", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := auth.WithIdentity(c.Request().Context(), userID, actorRole)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})
	NewHandler(NewService(&mockStatsRepo{})).RegisterRoutes(api)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestStatsEndpoint_OwnRole(t *testing.T) {
	rec := serveStats(uuid.New(), "technician", "/api/dashboard/technician")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stats Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if stats.Role != "technician" || stats.MyAssignments != 6 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestStatsEndpoint_OtherRoleDenied(t *testing.T) {
	rec := serveStats(uuid.New(), "technician", "/api/dashboard/admin")
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestStatsEndpoint_AdminSeesAnyRole(t *testing.T) {
	rec := serveStats(uuid.New(), "admin", "/api/dashboard/pathologist")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for admin, got %d", rec.Code)
	}
}

func TestStatsEndpoint_UnknownRole(t *testing.T) {
	rec := serveStats(uuid.New(), "admin", "/api/dashboard/superuser")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
