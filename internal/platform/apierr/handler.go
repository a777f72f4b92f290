package apierr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// statusFor maps error kinds to HTTP status codes. TokenMissing and
// TokenInvalid deliberately map differently (401 vs 403) so clients can tell
// "no credentials supplied" apart from "credentials rejected".
func statusFor(kind Kind) int {
	switch kind {
	case KindValidation, KindInvalidTransition:
		return http.StatusBadRequest
	case KindInvalidCredentials, KindTokenMissing:
		return http.StatusUnauthorized
	case KindTokenInvalid:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// HTTPStatus returns the response status for err.
func HTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return statusFor(e.Kind)
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Error string `json:"error"`
}

// HTTPErrorHandler returns an echo error handler that renders the taxonomy
// as `{"error": string}` bodies. Internal causes are logged, not leaked.
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "Internal server error"

		var e *Error
		var he *echo.HTTPError
		switch {
		case errors.As(err, &e):
			status = statusFor(e.Kind)
			message = e.Message
			if e.Kind == KindInternal {
				logger.Error().Err(e.Cause).
					Str("path", c.Request().URL.Path).
					Msg(e.Message)
				message = "Internal server error"
			}
		case errors.As(err, &he):
			status = he.Code
			if s, ok := he.Message.(string); ok {
				message = s
			} else {
				message = http.StatusText(he.Code)
			}
		default:
			logger.Error().Err(err).
				Str("path", c.Request().URL.Path).
				Msg("unhandled error")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, errorBody{Error: message})
		}
		if writeErr != nil {
			logger.Error().Err(writeErr).Msg("failed to write error response")
		}
	}
}
