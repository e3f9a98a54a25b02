package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/storefront/internal/core/domain"
	"github.com/sirpyerre/storefront/internal/core/ports"
	"github.com/sirpyerre/storefront/internal/core/session"
)

// Context keys set by Session.
const (
	keySessionID = "session_id"
	keyStore     = "session_store"
	keyIdentity  = "identity"
)

// StoreFactory returns the session store of one browser session.
type StoreFactory func(sid string) ports.SessionStore

// TokenParser verifies a bearer token issued by the self-hosted backend.
type TokenParser interface {
	ParseToken(ctx context.Context, token string) (*domain.Identity, error)
}

// SessionConfig configures the Session middleware.
type SessionConfig struct {
	Stores     StoreFactory
	CookieName string
	TTL        time.Duration
	Secure     bool
	// Tokens, when set, lets API clients authenticate with
	// "Authorization: Bearer <token>" instead of the session cookie.
	Tokens TokenParser
	Log    zerolog.Logger
}

// Session binds every request to a session store keyed by a cookie, issuing
// a new session id when the cookie is missing, and loads the stored identity.
func Session(cfg SessionConfig) echo.MiddlewareFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = "sid"
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := ""
			if ck, err := c.Cookie(cfg.CookieName); err == nil {
				if _, perr := uuid.Parse(ck.Value); perr == nil {
					sid = ck.Value
				}
			}
			if sid == "" {
				sid = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     cfg.CookieName,
					Value:    sid,
					Path:     "/",
					MaxAge:   int(cfg.TTL.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			store := cfg.Stores(sid)
			c.Set(keySessionID, sid)
			c.Set(keyStore, store)

			if id, token, ok := bearerIdentity(c, cfg.Tokens); ok {
				setIdentity(c, id, token)
				return next(c)
			}

			sess, err := store.Current(c.Request().Context())
			if err != nil {
				cfg.Log.Warn().Err(err).Str("session_id", sid).Msg("failed to load session")
			} else if sess != nil {
				setIdentity(c, &sess.Identity, sess.Token)
			}
			return next(c)
		}
	}
}

func bearerIdentity(c echo.Context, tokens TokenParser) (*domain.Identity, string, bool) {
	if tokens == nil {
		return nil, "", false
	}
	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return nil, "", false
	}
	id, err := tokens.ParseToken(c.Request().Context(), parts[1])
	if err != nil {
		return nil, "", false
	}
	return id, parts[1], true
}

func setIdentity(c echo.Context, id *domain.Identity, token string) {
	c.Set(keyIdentity, id)
	req := c.Request()
	c.SetRequest(req.WithContext(session.WithToken(req.Context(), token)))
}

// IdentityFrom returns the identity loaded for this request, or nil.
func IdentityFrom(c echo.Context) *domain.Identity {
	id, _ := c.Get(keyIdentity).(*domain.Identity)
	return id
}

// StoreFrom returns the session store bound to this request.
func StoreFrom(c echo.Context) ports.SessionStore {
	s, _ := c.Get(keyStore).(ports.SessionStore)
	return s
}

// SessionIDFrom returns the browser session id of this request.
func SessionIDFrom(c echo.Context) string {
	sid, _ := c.Get(keySessionID).(string)
	return sid
}
