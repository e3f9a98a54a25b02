package domain

import "time"

// Role is one of the two portals a user can belong to.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleDistributor Role = "distribuidor"

	// RoleNone marks screens that require no role at all.
	RoleNone Role = ""
)

// Valid reports whether r is one of the known portal roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleDistributor
}

// Identity is the authenticated actor held in the session store.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
	Email string `json:"email"`
}

// Session pairs an Identity with the opaque credential token issued for it.
type Session struct {
	Identity Identity `json:"identity"`
	Token    string   `json:"token"`
}

// User is a stored account of the self-hosted credential backend.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity returns the session-facing view of the account.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Name: u.Name, Role: u.Role, Email: u.Email}
}
