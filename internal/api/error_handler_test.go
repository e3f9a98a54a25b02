package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/storefront/internal/core/domain"
	"github.com/sirpyerre/storefront/internal/core/service"
)

func renderError(t *testing.T, err error) (int, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var resp errorResponse
	if jerr := json.Unmarshal(rec.Body.Bytes(), &resp); jerr != nil {
		t.Fatalf("invalid json: %v", jerr)
	}
	return rec.Code, resp.Error
}

func TestErrorHandler_Mapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrMissingCredentials, http.StatusBadRequest},
		{fmt.Errorf("x: %w", domain.ErrInvalidStockLevel), http.StatusBadRequest},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrRoleMismatch, http.StatusForbidden},
		{fmt.Errorf("category: %w", domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrSubmitInProgress, http.StatusConflict},
		{fmt.Errorf("list products: %w", domain.ErrNetwork), http.StatusBadGateway},
		{echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded"), http.StatusTooManyRequests},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if code, _ := renderError(t, tc.err); code != tc.code {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.code, code)
		}
	}
}

func TestErrorHandler_FlowMessageWins(t *testing.T) {
	err := &service.FlowError{Err: domain.ErrRoleMismatch, Message: "Acceso denegado"}
	code, msg := renderError(t, err)
	if code != http.StatusForbidden || msg != "Acceso denegado" {
		t.Fatalf("expected 403 with flow message, got %d %q", code, msg)
	}
}

func TestErrorHandler_BackendMessage(t *testing.T) {
	err := fmt.Errorf("list: %w", &domain.BackendError{Err: domain.ErrNetwork, Message: "mantenimiento"})
	code, msg := renderError(t, err)
	if code != http.StatusBadGateway || msg != "mantenimiento" {
		t.Fatalf("expected 502 with backend message, got %d %q", code, msg)
	}
}

func TestErrorHandler_UnexpectedIsGeneric(t *testing.T) {
	_, msg := renderError(t, errors.New("mongo: connection refused at 10.0.0.3"))
	if msg != "internal server error" {
		t.Fatalf("internal details leaked: %q", msg)
	}
}
