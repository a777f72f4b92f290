package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cytolab/lims/internal/platform/apierr"
)

type contextKey string

const (
	userIDKey   contextKey = "user_id"
	userRoleKey contextKey = "user_role"
)

// Middleware returns echo middleware that requires a valid bearer token and
// attaches the verified claims to the request context. A missing or malformed
// Authorization header fails with TokenMissing (401); a bad signature or
// expired token fails with TokenInvalid (403).
func Middleware(issuer *Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return apierr.New(apierr.KindTokenMissing, "Missing authorization header")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return apierr.New(apierr.KindTokenMissing, "Invalid authorization format")
			}

			claims, err := issuer.Verify(parts[1])
			if err != nil {
				return err
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, userIDKey, claims.UserID)
			ctx = context.WithValue(ctx, userRoleKey, claims.Role)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// RequireRole returns middleware that rejects requests whose authenticated
// role is not in the allowed set. admin passes every check.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := RoleFromContext(c.Request().Context())
			if role == "admin" {
				return next(c)
			}
			for _, required := range roles {
				if role == required {
					return next(c)
				}
			}
			return apierr.Newf(apierr.KindTokenInvalid,
				"Requires role: %s", strings.Join(roles, " or "))
		}
	}
}

// UserIDFromContext returns the authenticated user id, or uuid.Nil.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	uid, _ := ctx.Value(userIDKey).(uuid.UUID)
	return uid
}

// RoleFromContext returns the authenticated role name, or "".
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(userRoleKey).(string)
	return role
}

// WithIdentity returns a context carrying the given user id and role. Used by
// tests and by internal callers acting on behalf of a verified user.
func WithIdentity(ctx context.Context, userID uuid.UUID, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, userRoleKey, role)
}
