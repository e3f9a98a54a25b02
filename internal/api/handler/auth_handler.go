package handler

import (
	"errors"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/storefront/internal/api/metrics"
	"github.com/sirpyerre/storefront/internal/api/middleware"
	"github.com/sirpyerre/storefront/internal/core/domain"
	"github.com/sirpyerre/storefront/internal/core/gate"
	"github.com/sirpyerre/storefront/internal/core/ports"
	"github.com/sirpyerre/storefront/internal/core/service"
)

// AuthHandler exposes the authentication flow over HTTP. Each request runs
// its own flow against the caller's session store.
type AuthHandler struct {
	backend ports.AuthBackend
	audit   ports.AuditRecorder
	log     zerolog.Logger

	// one login at a time per browser session
	inflight sync.Map
}

func NewAuthHandler(backend ports.AuthBackend, audit ports.AuditRecorder, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{backend: backend, audit: audit, log: log}
}

type loginRequest struct {
	Email    string `json:"email"    validate:"omitempty,email,max=254"`
	Password string `json:"password" validate:"max=256"`
	// Role is the inline role choice of the combined login screen.
	Role string `json:"role,omitempty" validate:"omitempty,oneof=admin distribuidor"`
}

type loginResponse struct {
	User     domain.Identity `json:"user"`
	Token    string          `json:"token"`
	Redirect string          `json:"redirect"`
}

type redirectResponse struct {
	Redirect string `json:"redirect"`
}

// Login handles POST /auth/login, the combined login screen.
//
// @Summary      Login (combined screen)
// @Description  Without a role the portal is taken from the account. With a role it must match.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	return h.login(c, domain.RoleNone)
}

// AdminLogin handles POST /admin/login.
//
// @Summary      Login (admin portal)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /admin/login [post]
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	return h.login(c, domain.RoleAdmin)
}

// DistributorLogin handles POST /distribuidor/login.
//
// @Summary      Login (distributor portal)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /distribuidor/login [post]
func (h *AuthHandler) DistributorLogin(c echo.Context) error {
	return h.login(c, domain.RoleDistributor)
}

func (h *AuthHandler) login(c echo.Context, portal domain.Role) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	expected := portal
	if expected == domain.RoleNone {
		expected = domain.Role(req.Role)
	}

	sid := middleware.SessionIDFrom(c)
	if _, busy := h.inflight.LoadOrStore(sid, struct{}{}); busy {
		err := &service.FlowError{Err: domain.ErrSubmitInProgress, Message: "Ya hay un inicio de sesión en curso"}
		metrics.LoginsTotal.WithLabelValues(portalLabel(expected), loginResult(err)).Inc()
		return err
	}
	defer h.inflight.Delete(sid)

	var target string
	flow := h.flow(c, expected, &target)

	err := flow.Submit(c.Request().Context(), req.Email, req.Password)
	metrics.LoginsTotal.WithLabelValues(portalLabel(expected), loginResult(err)).Inc()
	if err != nil {
		return err
	}

	sess, err := middleware.StoreFrom(c).Current(c.Request().Context())
	if err != nil {
		return err
	}
	if sess == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session not persisted")
	}

	return c.JSON(http.StatusOK, loginResponse{User: sess.Identity, Token: sess.Token, Redirect: target})
}

// Logout handles POST /auth/logout.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  redirectResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var target string
	flow := h.flow(c, domain.RoleNone, &target)
	if err := flow.Logout(c.Request().Context()); err != nil {
		h.log.Warn().Err(err).Str("session_id", middleware.SessionIDFrom(c)).Msg("session clear failed on logout")
	}
	return c.JSON(http.StatusOK, redirectResponse{Redirect: target})
}

// Me handles GET /auth/me.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.Identity
// @Failure      401  {object}  gateResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	id := middleware.IdentityFrom(c)
	if id == nil {
		return c.JSON(http.StatusUnauthorized, gateResponse{Error: "not authenticated", Redirect: gate.LoginPath})
	}
	return c.JSON(http.StatusOK, id)
}

func (h *AuthHandler) flow(c echo.Context, expected domain.Role, target *string) *service.AuthFlow {
	sid := middleware.SessionIDFrom(c)
	return service.NewAuthFlow(
		h.backend,
		middleware.StoreFrom(c),
		ports.NavigatorFunc(func(t string) { *target = t }),
		service.AuthFlowOptions{ExpectedRole: expected, SessionID: sid, Audit: h.audit},
		h.log.With().Str("session_id", sid).Logger(),
	)
}

func portalLabel(r domain.Role) string {
	if r == domain.RoleNone {
		return "any"
	}
	return string(r)
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrMissingCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrRoleMismatch):
		return "role_mismatch"
	case errors.Is(err, domain.ErrNetwork):
		return "network"
	default:
		return "error"
	}
}
