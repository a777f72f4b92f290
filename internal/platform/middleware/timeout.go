package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cytolab/lims/internal/platform/apierr"
)

// RequestTimeout returns middleware that sets a context deadline on each
// incoming request. When the deadline fires before the handler finishes, the
// response is the taxonomy's timeout kind rather than a hung connection, so
// dashboard clients can tell a slow server apart from a rejected request.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)
			if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return apierr.New(apierr.KindTimeout, "Request timed out")
			}
			return err
		}
	}
}
