// Package session keeps the signed-in state of a browser. The session is
// created by Login, destroyed by Logout and only read everywhere else.
package session

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/travelbooking/config"
	"github.com/Domenick1991/travelbooking/internal/accessor"
	"github.com/Domenick1991/travelbooking/internal/cache"
	"github.com/Domenick1991/travelbooking/internal/remote"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrNoSession = errors.New("session: no session")

const contextKey = "session"

type Session struct {
	ID           string    `json:"id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	UserID       int64     `json:"user_id"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (s *Session) Identity() remote.Identity {
	return remote.Identity{SessionID: s.ID, UserID: s.UserID, Token: s.AccessToken}
}

type Store interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Authenticator exchanges credentials for a token pair. accessor.API
// implements it.
type Authenticator interface {
	Token(ctx context.Context, creds accessor.Credentials) (accessor.TokenPair, error)
}

type Invalidator interface {
	Invalidate(ctx context.Context, names ...string) error
}

type Manager struct {
	store   Store
	auth    Authenticator
	queries Invalidator
	cfg     config.SessionConfig
	log     *zap.Logger
	now     func() time.Time
}

func NewManager(store Store, auth Authenticator, queries Invalidator, cfg config.SessionConfig, log *zap.Logger) *Manager {
	return &Manager{store: store, auth: auth, queries: queries, cfg: cfg, log: log, now: time.Now}
}

// accessClaims are the claims the backend puts in its access tokens.
type accessClaims struct {
	UserID json.Number `json:"user_id"`
	jwt.RegisteredClaims
}

// Login authenticates against the backend and stores a new session. The
// session lives until the access token expires, or for the configured TTL
// when the token carries no usable expiry.
func (m *Manager) Login(ctx context.Context, creds accessor.Credentials) (*Session, error) {
	pair, err := m.auth.Token(ctx, creds)
	if err != nil {
		return nil, errors.Wrap(err, "obtain token")
	}

	now := m.now()
	s := &Session{
		ID:           uuid.NewString(),
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		ExpiresAt:    now.Add(m.cfg.TTL()),
	}

	var claims accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(pair.Access, &claims); err != nil {
		m.log.Debug("access token is not a readable jwt", zap.Error(err))
	} else {
		if id, err := strconv.ParseInt(claims.UserID.String(), 10, 64); err == nil {
			s.UserID = id
		}
		if claims.ExpiresAt != nil && claims.ExpiresAt.After(now) {
			s.ExpiresAt = claims.ExpiresAt.Time
		}
	}

	if err := m.store.SetJSON(ctx, cache.SessionKey(s.ID), s, s.ExpiresAt.Sub(now)); err != nil {
		return nil, errors.Wrap(err, "store session")
	}
	m.log.Info("session created", zap.String("session_id", s.ID), zap.Int64("user_id", s.UserID))
	return s, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNoSession
	}
	var s Session
	found, err := m.store.GetJSON(ctx, cache.SessionKey(id), &s)
	if err != nil {
		return nil, errors.Wrap(err, "load session")
	}
	if !found {
		return nil, ErrNoSession
	}
	return &s, nil
}

// Logout removes the session and every cached query made on its behalf.
func (m *Manager) Logout(ctx context.Context, s *Session) error {
	if s == nil {
		return ErrNoSession
	}
	scoped := remote.WithIdentity(ctx, s.Identity())
	if err := m.queries.Invalidate(scoped); err != nil {
		m.log.Warn("session queries not invalidated", zap.String("session_id", s.ID), zap.Error(err))
	}
	if err := m.store.Delete(ctx, cache.SessionKey(s.ID)); err != nil {
		return errors.Wrap(err, "delete session")
	}
	m.log.Info("session closed", zap.String("session_id", s.ID))
	return nil
}

// Middleware resolves the session cookie. Requests without a valid session
// pass through anonymously.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(m.cfg.CookieName)
		if err != nil || id == "" {
			c.Next()
			return
		}

		s, err := m.Get(c.Request.Context(), id)
		switch {
		case errors.Is(err, ErrNoSession):
			m.ClearCookie(c)
		case err != nil:
			m.log.Warn("session lookup failed", zap.Error(err))
		default:
			Attach(c, s)
		}
		c.Next()
	}
}

// RequireAuthenticated rejects requests that carry no session.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := From(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "authentication required",
				"redirect": "/login",
			})
			return
		}
		c.Next()
	}
}

// RequireAuthenticated returns the package-level RequireAuthenticated
// middleware so that Manager satisfies bootstrap.Sessions.
func (m *Manager) RequireAuthenticated() gin.HandlerFunc {
	return RequireAuthenticated()
}

// Attach binds s to the request: handlers see it through From and upstream
// queries run under its identity.
func Attach(c *gin.Context, s *Session) {
	c.Set(contextKey, s)
	c.Request = c.Request.WithContext(remote.WithIdentity(c.Request.Context(), s.Identity()))
}

func From(c *gin.Context) (*Session, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*Session)
	return s, ok && s != nil
}

func (m *Manager) SetCookie(c *gin.Context, s *Session) {
	maxAge := int(s.ExpiresAt.Sub(m.now()).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cfg.CookieName, s.ID, maxAge, "/", m.cfg.Domain, m.cfg.Secure, true)
}

func (m *Manager) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cfg.CookieName, "", -1, "/", m.cfg.Domain, m.cfg.Secure, true)
}
