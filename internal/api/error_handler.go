package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/storefront/internal/core/domain"
	"github.com/sirpyerre/storefront/internal/core/service"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Uses the authentication flow's user-facing message when there is one.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, rate limiter, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	code, msg, known := classify(err)
	if fe, ok := service.IsFlowError(err); ok {
		msg = fe.Message
		if !known {
			code, known = http.StatusInternalServerError, true
		}
	}
	if known {
		if code >= http.StatusInternalServerError {
			log.Warn().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg("request failed")
		}
		return code, msg
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

// classify maps the error taxonomy to a status and a default message.
func classify(err error) (int, string, bool) {
	backendMsg := domain.BackendMessage(err)
	pick := func(def string) string {
		if backendMsg != "" {
			return backendMsg
		}
		return def
	}

	switch {
	case errors.Is(err, domain.ErrMissingCredentials):
		return http.StatusBadRequest, "email and password are required", true
	case errors.Is(err, domain.ErrInvalidStockLevel):
		return http.StatusBadRequest, err.Error(), true
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, pick("invalid credentials"), true
	case errors.Is(err, domain.ErrRoleMismatch):
		return http.StatusForbidden, "role does not match portal", true
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, pick("not found"), true
	case errors.Is(err, domain.ErrSubmitInProgress):
		return http.StatusConflict, "login already in progress", true
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists", true
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusBadGateway, pick("backend unavailable"), true
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout, "request timed out", true
	}
	return 0, "", false
}
