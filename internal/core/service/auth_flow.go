package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/storefront/internal/core/domain"
	"github.com/sirpyerre/storefront/internal/core/gate"
	"github.com/sirpyerre/storefront/internal/core/ports"
)

// FlowState is a state of the authentication flow.
type FlowState string

const (
	StateUnauthenticated FlowState = "unauthenticated"
	StateSubmitting      FlowState = "submitting"
	StateAuthenticated   FlowState = "authenticated"
	StateFailed          FlowState = "failed"
)

const (
	// GenericLoginError is shown when the backend gives no message of its own.
	GenericLoginError      = "Error al iniciar sesión"
	missingCredentialsText = "El correo y la contraseña son obligatorios"
	inProgressText         = "Ya hay un inicio de sesión en curso"
)

// FlowError is what the authentication flow returns on failure: a message
// fit for the user plus the underlying taxonomy error.
type FlowError struct {
	Err     error
	Message string
}

func (e *FlowError) Error() string { return e.Message }
func (e *FlowError) Unwrap() error { return e.Err }

// AuthFlowOptions configures one authentication flow.
type AuthFlowOptions struct {
	// ExpectedRole is the portal the user logs in through. RoleNone lets
	// the backend decide.
	ExpectedRole domain.Role
	SessionID    string
	Audit        ports.AuditRecorder
}

// AuthFlow drives Unauthenticated → Submitting → {Authenticated, Failed}.
type AuthFlow struct {
	backend ports.AuthBackend
	store   ports.SessionStore
	nav     ports.Navigator
	opts    AuthFlowOptions
	log     zerolog.Logger

	mu      sync.Mutex
	state   FlowState
	message string
}

// NewAuthFlow returns a flow in the Unauthenticated state.
func NewAuthFlow(
	backend ports.AuthBackend,
	store ports.SessionStore,
	nav ports.Navigator,
	opts AuthFlowOptions,
	log zerolog.Logger,
) *AuthFlow {
	return &AuthFlow{
		backend: backend,
		store:   store,
		nav:     nav,
		opts:    opts,
		log:     log,
		state:   StateUnauthenticated,
	}
}

// State returns the current state and the user-visible message of the last
// failure, if any.
func (f *AuthFlow) State() (FlowState, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, f.message
}

// CurrentUser reads the locally stored identity.
func (f *AuthFlow) CurrentUser(ctx context.Context) (*domain.Identity, error) {
	s, err := f.store.Current(ctx)
	if err != nil || s == nil {
		return nil, err
	}
	return &s.Identity, nil
}

// Submit exchanges the credentials for a session. On success the session
// store is written once and the navigator is called once with the role's
// dashboard. Every failure comes back as a *FlowError.
func (f *AuthFlow) Submit(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return &FlowError{Err: domain.ErrMissingCredentials, Message: missingCredentialsText}
	}

	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return &FlowError{Err: domain.ErrSubmitInProgress, Message: inProgressText}
	}
	prev := f.state
	f.state, f.message = StateSubmitting, ""
	f.mu.Unlock()

	sess, err := f.backend.Login(ctx, email, password)
	if err != nil {
		f.record(domain.AuthLoginFailed, email, "", err.Error())
		return f.fail(err, loginMessage(err))
	}

	// The caller went away while the backend was answering: drop the result.
	if ctx.Err() != nil {
		f.revoke(context.WithoutCancel(ctx), sess.Token)
		f.setState(prev, "")
		return &FlowError{Err: ctx.Err(), Message: GenericLoginError}
	}

	role := sess.Identity.Role
	if !role.Valid() || (f.opts.ExpectedRole != domain.RoleNone && role != f.opts.ExpectedRole) {
		f.revoke(ctx, sess.Token)
		if err := f.store.Clear(ctx); err != nil {
			f.log.Warn().Err(err).Str("email", email).Msg("failed to clear session after role mismatch")
		}
		f.record(domain.AuthRoleMismatch, email, role, "")
		f.log.Info().Str("email", email).Str("role", string(role)).
			Str("portal", string(f.opts.ExpectedRole)).Msg("login rejected: role mismatch")
		return f.fail(domain.ErrRoleMismatch, mismatchMessage(f.opts.ExpectedRole))
	}

	if err := f.store.Set(ctx, sess.Identity, sess.Token); err != nil {
		f.log.Error().Err(err).Str("email", email).Msg("failed to persist session")
		f.revoke(ctx, sess.Token)
		return f.fail(err, GenericLoginError)
	}

	f.setState(StateAuthenticated, "")
	f.record(domain.AuthLoginSucceeded, email, role, "")
	f.log.Info().Str("email", email).Str("role", string(role)).Msg("login succeeded")
	f.nav.Navigate(gate.Dashboard(role))
	return nil
}

// Logout drops the server-side session if possible and always clears the
// local store.
func (f *AuthFlow) Logout(ctx context.Context) error {
	s, err := f.store.Current(ctx)
	if err != nil {
		f.log.Warn().Err(err).Msg("failed to read session on logout")
	}
	if s != nil {
		f.revoke(ctx, s.Token)
		f.record(domain.AuthLogout, s.Identity.Email, s.Identity.Role, "")
	}

	clearErr := f.store.Clear(ctx)
	f.setState(StateUnauthenticated, "")
	f.nav.Navigate(gate.LoginPath)
	return clearErr
}

func (f *AuthFlow) fail(err error, msg string) error {
	f.setState(StateFailed, msg)
	return &FlowError{Err: err, Message: msg}
}

func (f *AuthFlow) setState(s FlowState, msg string) {
	f.mu.Lock()
	f.state, f.message = s, msg
	f.mu.Unlock()
}

func (f *AuthFlow) revoke(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := f.backend.Logout(ctx, token); err != nil {
		f.log.Warn().Err(err).Msg("backend logout failed")
	}
}

func (f *AuthFlow) record(t domain.AuthEventType, email string, role domain.Role, reason string) {
	if f.opts.Audit == nil {
		return
	}
	f.opts.Audit.Record(domain.AuthEvent{
		Type:       t,
		Email:      email,
		Role:       role,
		Portal:     f.opts.ExpectedRole,
		SessionID:  f.opts.SessionID,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})
}

func loginMessage(err error) string {
	if msg := domain.BackendMessage(err); msg != "" {
		return msg
	}
	return GenericLoginError
}

func mismatchMessage(portal domain.Role) string {
	switch portal {
	case domain.RoleAdmin:
		return "Acceso denegado: esta cuenta no pertenece al portal de administración"
	case domain.RoleDistributor:
		return "Acceso denegado: esta cuenta no pertenece al portal de distribuidores"
	default:
		return "Acceso denegado: rol de usuario no reconocido"
	}
}

// IsFlowError reports whether err came out of the flow with a user message.
func IsFlowError(err error) (*FlowError, bool) {
	var fe *FlowError
	ok := errors.As(err, &fe)
	return fe, ok
}
