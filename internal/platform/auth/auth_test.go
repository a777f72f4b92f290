package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cytolab/lims/internal/platform/apierr"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour)
	uid := uuid.New()

	token, err := issuer.Issue(uid, "technician")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != uid {
		t.Errorf("expected user id %s, got %s", uid, claims.UserID)
	}
	if claims.Role != "technician" {
		t.Errorf("expected role technician, got %s", claims.Role)
	}
}

func TestVerify_Expired(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), -time.Minute)
	token, err := issuer.Issue(uuid.New(), "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = issuer.Verify(token)
	if !apierr.IsKind(err, apierr.KindTokenInvalid) {
		t.Errorf("expected token invalid, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	token, err := NewIssuer([]byte("secret-a"), time.Hour).Issue(uuid.New(), "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = NewIssuer([]byte("secret-b"), time.Hour).Verify(token)
	if !apierr.IsKind(err, apierr.KindTokenInvalid) {
		t.Errorf("expected token invalid, got %v", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour)
	_, err := issuer.Verify("not.a.token")
	if !apierr.IsKind(err, apierr.KindTokenInvalid) {
		t.Errorf("expected token invalid, got %v", err)
	}
}

func callMiddleware(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (error, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured echo.Context
	handler := mw(func(c echo.Context) error {
		captured = c
		return c.NoContent(http.StatusOK)
	})
	return handler(c), captured
}

func TestMiddleware(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour)
	uid := uuid.New()
	token, _ := issuer.Issue(uid, "pathologist")

	err, c := callMiddleware(t, Middleware(issuer), "Bearer "+token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := c.Request().Context()
	if UserIDFromContext(ctx) != uid {
		t.Error("expected user id on the request context")
	}
	if RoleFromContext(ctx) != "pathologist" {
		t.Error("expected role on the request context")
	}
}

func TestMiddleware_MissingHeader(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour)
	err, _ := callMiddleware(t, Middleware(issuer), "")
	if !apierr.IsKind(err, apierr.KindTokenMissing) {
		t.Errorf("expected token missing, got %v", err)
	}
}

func TestMiddleware_BadFormat(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour)
	err, _ := callMiddleware(t, Middleware(issuer), "Basic abc123")
	if !apierr.IsKind(err, apierr.KindTokenMissing) {
		t.Errorf("expected token missing, got %v", err)
	}
}

func TestMiddleware_InvalidToken(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour)
	err, _ := callMiddleware(t, Middleware(issuer), "Bearer bogus")
	if !apierr.IsKind(err, apierr.KindTokenInvalid) {
		t.Errorf("expected token invalid, got %v", err)
	}
}

func callRequireRole(role string, allowed ...string) error {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(context.Background(), uuid.New(), role))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireRole(allowed...)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return handler(c)
}

func TestRequireRole(t *testing.T) {
	if err := callRequireRole("technician", "technician"); err != nil {
		t.Errorf("expected technician to pass, got %v", err)
	}
	if err := callRequireRole("technician", "accession", "technician"); err != nil {
		t.Errorf("expected technician in multi-role set to pass, got %v", err)
	}
}

func TestRequireRole_AdminBypass(t *testing.T) {
	if err := callRequireRole("admin", "pathologist"); err != nil {
		t.Errorf("expected admin to bypass, got %v", err)
	}
}

func TestRequireRole_Denied(t *testing.T) {
	err := callRequireRole("customer", "technician")
	if !apierr.IsKind(err, apierr.KindTokenInvalid) {
		t.Errorf("expected denial, got %v", err)
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("Welcome@123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !CheckPassword(hash, "Welcome@123") {
		t.Error("expected matching password to verify")
	}
	if CheckPassword(hash, "welcome@123") {
		t.Error("expected mismatched password to fail")
	}
}
