package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/storefront/internal/core/domain"
)

func runGate(t *testing.T, required domain.Role, id *domain.Identity) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != nil {
		c.Set(keyIdentity, id)
	}

	called := false
	h := Gate(required)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, called
}

func decodeGate(t *testing.T, rec *httptest.ResponseRecorder) gateResponse {
	t.Helper()
	var resp gateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestGate_Allows(t *testing.T) {
	rec, called := runGate(t, domain.RoleAdmin, &domain.Identity{ID: "1", Role: domain.RoleAdmin})
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected next handler with 200, got called=%v code=%d", called, rec.Code)
	}
}

func TestGate_NoRoleRequired(t *testing.T) {
	if _, called := runGate(t, domain.RoleNone, nil); !called {
		t.Fatalf("expected anonymous access when no role is required")
	}
}

func TestGate_AnonymousRedirectsToLogin(t *testing.T) {
	rec, called := runGate(t, domain.RoleDistributor, nil)
	if called {
		t.Fatalf("next handler must not be called")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if resp := decodeGate(t, rec); resp.Redirect != "/login" {
		t.Fatalf("expected redirect to /login, got %+v", resp)
	}
}

func TestGate_OtherPortalRedirectsToOwnDashboard(t *testing.T) {
	rec, called := runGate(t, domain.RoleAdmin, &domain.Identity{ID: "2", Role: domain.RoleDistributor})
	if called {
		t.Fatalf("next handler must not be called")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if resp := decodeGate(t, rec); resp.Redirect != "/distribuidor/dashboard" {
		t.Fatalf("expected redirect to distributor dashboard, got %+v", resp)
	}

	rec, _ = runGate(t, domain.RoleDistributor, &domain.Identity{ID: "1", Role: domain.RoleAdmin})
	if resp := decodeGate(t, rec); resp.Redirect != "/admin/dashboard" {
		t.Fatalf("expected redirect to admin dashboard, got %+v", resp)
	}
}
