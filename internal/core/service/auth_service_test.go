package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/sirpyerre/storefront/internal/core/domain"
)

type stubAuthRepo struct {
	users   map[string]*domain.User
	findErr error
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubAuthRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	copy := cloneUser(user)
	if copy.ID == "" {
		copy.ID = "id-" + user.Email
	}
	r.users[copy.Email] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubAuthRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

type stubRevocations struct {
	revoked map[string]time.Duration
	err     error
}

func newStubRevocations() *stubRevocations {
	return &stubRevocations{revoked: make(map[string]time.Duration)}
}

func (r *stubRevocations) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if r.err != nil {
		return r.err
	}
	r.revoked[jti] = ttl
	return nil
}

func (r *stubRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.revoked[jti]
	return ok, nil
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubAuthRepo()
	svc := NewAuthService(repo, "secret", time.Hour, nil)

	user, err := svc.Register(context.Background(), "Alicia", " Alice@Example.com ", "pass123", domain.RoleDistributor)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalised email, got %q", user.Email)
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Role != domain.RoleDistributor {
		t.Fatalf("unexpected role: %s", user.Role)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := NewAuthService(newStubAuthRepo(), "secret", time.Hour, nil)

	if _, err := svc.Register(context.Background(), "Bob", "", "pass", domain.RoleAdmin); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "Bob", "bob@example.com", "pass", "cliente"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for bad role, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc := NewAuthService(newStubAuthRepo(), "secret", time.Hour, nil)

	_, _ = svc.Register(context.Background(), "Bob", "bob@example.com", "pass", domain.RoleAdmin)
	if _, err := svc.Register(context.Background(), "Bob", "bob@example.com", "pass2", domain.RoleAdmin); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc := NewAuthService(newStubAuthRepo(), "secret", time.Hour, nil)

	if _, err := svc.Register(context.Background(), "Carol", "carol@example.com", "s3cret", domain.RoleAdmin); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	sess, err := svc.Login(context.Background(), "carol@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if sess.Token == "" {
		t.Fatalf("expected token, got empty")
	}
	if sess.Identity.Name != "Carol" || sess.Identity.Role != domain.RoleAdmin {
		t.Fatalf("unexpected identity: %+v", sess.Identity)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(sess.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["role"] != string(domain.RoleAdmin) {
		t.Fatalf("expected role %s, got %v", domain.RoleAdmin, claims["role"])
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	svc := NewAuthService(newStubAuthRepo(), "secret", time.Hour, nil)

	_, _ = svc.Register(context.Background(), "Dave", "dave@example.com", "goodpass", domain.RoleDistributor)
	_, err := svc.Login(context.Background(), "dave@example.com", "badpass")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if domain.BackendMessage(err) != invalidCredentialsText {
		t.Fatalf("expected backend message, got %q", domain.BackendMessage(err))
	}
}

func TestAuthService_Login_UnknownUserLooksLikeBadPassword(t *testing.T) {
	svc := NewAuthService(newStubAuthRepo(), "secret", time.Hour, nil)

	if _, err := svc.Login(context.Background(), "ghost@example.com", "pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_RepoFailureIsNetworkError(t *testing.T) {
	repo := newStubAuthRepo()
	repo.findErr = errors.New("mongo unavailable")
	svc := NewAuthService(repo, "secret", time.Hour, nil)

	if _, err := svc.Login(context.Background(), "ghost@example.com", "pass"); !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestAuthService_ParseToken_RoundTrip(t *testing.T) {
	svc := NewAuthService(newStubAuthRepo(), "secret", time.Hour, nil)
	_, _ = svc.Register(context.Background(), "Eva", "eva@example.com", "pw", domain.RoleDistributor)

	sess, err := svc.Login(context.Background(), "eva@example.com", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	id, err := svc.ParseToken(context.Background(), sess.Token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if *id != sess.Identity {
		t.Fatalf("identity mismatch: %+v vs %+v", *id, sess.Identity)
	}

	other := NewAuthService(newStubAuthRepo(), "other-secret", time.Hour, nil)
	if _, err := other.ParseToken(context.Background(), sess.Token); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for foreign token, got %v", err)
	}
}

func TestAuthService_Logout_RevokesToken(t *testing.T) {
	revocations := newStubRevocations()
	svc := NewAuthService(newStubAuthRepo(), "secret", time.Hour, revocations)
	_, _ = svc.Register(context.Background(), "Fede", "fede@example.com", "pw", domain.RoleDistributor)

	sess, err := svc.Login(context.Background(), "fede@example.com", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := svc.ParseToken(context.Background(), sess.Token); err != nil {
		t.Fatalf("fresh token rejected: %v", err)
	}

	if err := svc.Logout(context.Background(), sess.Token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if len(revocations.revoked) != 1 {
		t.Fatalf("expected one revocation, got %v", revocations.revoked)
	}
	for _, ttl := range revocations.revoked {
		if ttl <= 0 || ttl > time.Hour {
			t.Fatalf("revocation ttl should be the remaining lifetime, got %v", ttl)
		}
	}
	if _, err := svc.ParseToken(context.Background(), sess.Token); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}

	// A second session of the same account is unaffected.
	again, _ := svc.Login(context.Background(), "fede@example.com", "pw")
	if _, err := svc.ParseToken(context.Background(), again.Token); err != nil {
		t.Fatalf("new token rejected: %v", err)
	}
}

func TestAuthService_Logout_IgnoresForeignToken(t *testing.T) {
	revocations := newStubRevocations()
	svc := NewAuthService(newStubAuthRepo(), "secret", time.Hour, revocations)

	if err := svc.Logout(context.Background(), "not-a-jwt"); err != nil {
		t.Fatalf("expected nil for unverifiable token, got %v", err)
	}
	if len(revocations.revoked) != 0 {
		t.Fatalf("nothing should be revoked, got %v", revocations.revoked)
	}
}

func TestAuthService_ParseToken_RevocationStoreDown(t *testing.T) {
	revocations := newStubRevocations()
	svc := NewAuthService(newStubAuthRepo(), "secret", time.Hour, revocations)
	_, _ = svc.Register(context.Background(), "Gabi", "gabi@example.com", "pw", domain.RoleAdmin)
	sess, _ := svc.Login(context.Background(), "gabi@example.com", "pw")

	revocations.err = errors.New("redis down")
	if _, err := svc.ParseToken(context.Background(), sess.Token); !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if err := svc.Logout(context.Background(), sess.Token); !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork from logout, got %v", err)
	}
}
