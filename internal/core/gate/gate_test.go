package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sirpyerre/storefront/internal/core/domain"
)

var roles = []domain.Role{domain.RoleAdmin, domain.RoleDistributor}

func TestDecide_SameRoleAllows(t *testing.T) {
	for _, r := range roles {
		d := Decide(r, &domain.Identity{ID: "u1", Role: r})
		assert.Equal(t, Allow, d.Outcome, "role %s", r)
		assert.True(t, d.Allowed())
		assert.Empty(t, d.Target)
	}
}

func TestDecide_OtherRoleRedirectsToOwnPortal(t *testing.T) {
	for _, have := range roles {
		for _, want := range roles {
			if have == want {
				continue
			}
			d := Decide(want, &domain.Identity{ID: "u1", Role: have})
			assert.Equal(t, RedirectToOwnPortal, d.Outcome)
			assert.Equal(t, Dashboard(have), d.Target)
		}
	}
}

func TestDecide_NoIdentityRedirectsToLogin(t *testing.T) {
	for _, r := range roles {
		d := Decide(r, nil)
		assert.Equal(t, RedirectToLogin, d.Outcome)
		assert.Equal(t, LoginPath, d.Target)
	}
}

func TestDecide_RoleNoneAlwaysAllows(t *testing.T) {
	assert.True(t, Decide(domain.RoleNone, nil).Allowed())
	assert.True(t, Decide(domain.RoleNone, &domain.Identity{Role: domain.RoleDistributor}).Allowed())
}

func TestDecide_UnknownRoleTreatedAsAnonymous(t *testing.T) {
	d := Decide(domain.RoleAdmin, &domain.Identity{ID: "u1", Role: "cliente"})
	assert.Equal(t, RedirectToLogin, d.Outcome)
}

func TestDashboard(t *testing.T) {
	assert.Equal(t, "/admin/dashboard", Dashboard(domain.RoleAdmin))
	assert.Equal(t, "/distribuidor/dashboard", Dashboard(domain.RoleDistributor))
	assert.Equal(t, "/login", Dashboard("other"))
}
