package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sirpyerre/storefront/internal/core/domain"
	"github.com/sirpyerre/storefront/internal/core/ports"
)

const invalidCredentialsText = "Credenciales inválidas"

// AuthService is the self-hosted credential backend: accounts live in an
// AuthRepository and tokens are HS256 JWTs.
type AuthService struct {
	repo      ports.AuthRepository
	jwtSecret string
	tokenTTL  time.Duration
	revoked   ports.TokenRevocations
}

// NewAuthService returns an AuthService. A non-positive tokenTTL means 24h.
// With a nil revoked store Logout cannot invalidate tokens, which is only
// acceptable where tokens are never parsed back (the seed command).
func NewAuthService(repo ports.AuthRepository, jwtSecret string, tokenTTL time.Duration, revoked ports.TokenRevocations) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL, revoked: revoked}
}

// Register creates an account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" || name == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Login checks the password and issues a token. Unknown accounts and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, &domain.BackendError{Err: domain.ErrInvalidCredentials, Message: invalidCredentialsText}
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, &domain.BackendError{Err: domain.ErrInvalidCredentials, Message: invalidCredentialsText}
		}
		return nil, fmt.Errorf("login: %w: %v", domain.ErrNetwork, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, &domain.BackendError{Err: domain.ErrInvalidCredentials, Message: invalidCredentialsText}
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	return &domain.Session{Identity: user.Identity(), Token: token}, nil
}

// Logout revokes token until it would have expired. Tokens that no longer
// verify are already unusable and are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s.revoked == nil {
		return nil
	}
	claims, err := s.verify(token)
	if err != nil {
		return nil
	}

	jti, _ := claims["jti"].(string)
	if jti == "" {
		return nil
	}
	ttl := time.Minute
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		ttl = time.Until(exp.Time)
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.Revoke(ctx, jti, ttl); err != nil {
		return fmt.Errorf("logout: %w: %v", domain.ErrNetwork, err)
	}
	return nil
}

// ParseToken validates a token issued by Login and not revoked since, and
// returns its identity. If the revocation store cannot be read the token is
// rejected.
func (s *AuthService) ParseToken(ctx context.Context, token string) (*domain.Identity, error) {
	claims, err := s.verify(token)
	if err != nil {
		return nil, err
	}

	id, _ := claims["sub"].(string)
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	jti, _ := claims["jti"].(string)
	if id == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.revoked != nil {
		if jti == "" {
			return nil, domain.ErrInvalidCredentials
		}
		revoked, err := s.revoked.IsRevoked(ctx, jti)
		if err != nil {
			return nil, fmt.Errorf("parse token: %w: %v", domain.ErrNetwork, err)
		}
		if revoked {
			return nil, domain.ErrInvalidCredentials
		}
	}
	return &domain.Identity{ID: id, Name: name, Email: email, Role: domain.Role(role)}, nil
}

func (s *AuthService) verify(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidCredentials
	}
	return claims, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  string(user.Role),
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
