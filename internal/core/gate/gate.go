// Package gate decides whether the current identity may enter a screen that
// requires a given role. It is the only place that branches on roles; every
// protected entry point goes through Decide.
package gate

import "github.com/sirpyerre/storefront/internal/core/domain"

// Outcome is the verdict of the access gate.
type Outcome string

const (
	Allow               Outcome = "allow"
	RedirectToLogin     Outcome = "redirect_to_login"
	RedirectToOwnPortal Outcome = "redirect_to_own_portal"
)

const (
	LoginPath            = "/login"
	AdminDashboard       = "/admin/dashboard"
	DistributorDashboard = "/distribuidor/dashboard"
)

// Decision is the gate verdict plus where the caller should navigate when
// the outcome is not Allow.
type Decision struct {
	Outcome Outcome `json:"outcome"`
	Target  string  `json:"target,omitempty"`
}

// Allowed reports whether the decision lets the caller through.
func (d Decision) Allowed() bool { return d.Outcome == Allow }

// Decide is a pure function of the required role and the current identity.
// An identity carrying an unknown role is treated as absent.
func Decide(required domain.Role, identity *domain.Identity) Decision {
	if required == domain.RoleNone {
		return Decision{Outcome: Allow}
	}
	if identity == nil || !identity.Role.Valid() {
		return Decision{Outcome: RedirectToLogin, Target: LoginPath}
	}
	if identity.Role == required {
		return Decision{Outcome: Allow}
	}
	return Decision{Outcome: RedirectToOwnPortal, Target: Dashboard(identity.Role)}
}

// Dashboard returns the landing screen of a portal role.
func Dashboard(role domain.Role) string {
	switch role {
	case domain.RoleAdmin:
		return AdminDashboard
	case domain.RoleDistributor:
		return DistributorDashboard
	default:
		return LoginPath
	}
}
