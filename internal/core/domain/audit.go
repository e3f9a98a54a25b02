package domain

import "time"

// AuthEventType classifies an entry of the authentication audit trail.
type AuthEventType string

const (
	AuthLoginSucceeded AuthEventType = "login_succeeded"
	AuthLoginFailed    AuthEventType = "login_failed"
	AuthRoleMismatch   AuthEventType = "role_mismatch"
	AuthLogout         AuthEventType = "logout"
)

// AuthEvent records one authentication outcome.
type AuthEvent struct {
	ID         string
	Type       AuthEventType
	Email      string
	Role       Role // role reported by the backend, if any
	Portal     Role // role expected by the screen the user came through
	SessionID  string
	Reason     string
	OccurredAt time.Time
}
