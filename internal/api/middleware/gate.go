package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/storefront/internal/api/metrics"
	"github.com/sirpyerre/storefront/internal/core/domain"
	"github.com/sirpyerre/storefront/internal/core/gate"
)

type gateResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
}

// Gate only lets through requests whose session identity holds required.
// Anonymous requests get 401 with a redirect to the login page; requests
// from the other portal get 403 with a redirect to their own dashboard.
func Gate(required domain.Role) echo.MiddlewareFunc {
	label := string(required)
	if label == "" {
		label = "none"
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := gate.Decide(required, IdentityFrom(c))
			metrics.GateDecisionsTotal.WithLabelValues(label, string(d.Outcome)).Inc()

			switch d.Outcome {
			case gate.Allow:
				return next(c)
			case gate.RedirectToLogin:
				return c.JSON(http.StatusUnauthorized, gateResponse{Error: "authentication required", Redirect: d.Target})
			default:
				return c.JSON(http.StatusForbidden, gateResponse{Error: "forbidden", Redirect: d.Target})
			}
		}
	}
}
