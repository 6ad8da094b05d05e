// Package session carries the visitor's identity through a request.
//
// The identity lives in a signed JWT cookie whose token ID must also be
// registered in Redis; logging out removes the registration, so a copied
// cookie stops working immediately. Anything that fails validation is
// treated as an anonymous visitor rather than an error. The cookie is only
// cleared when the token is bad or the registry says it is gone.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"bandroom/internal/auth"
)

// CookieName is the cookie holding the session token.
const CookieName = "bandroom_session"

const contextKey = "session"

// errRegistryUnavailable marks a token that could not be checked against the
// registry. The cookie is kept so the visitor is back once redis returns.
var errRegistryUnavailable = errors.New("session registry unavailable")

// Session records at most one authenticated username.
type Session struct {
	Username  string
	TokenID   string
	ExpiresAt time.Time
}

// Anonymous returns a session without identity.
func Anonymous() *Session {
	return &Session{}
}

// Authenticated reports whether the session holds a username.
func (s *Session) Authenticated() bool {
	return s != nil && s.Username != ""
}

// FromContext returns the request's session, anonymous when none was established.
func FromContext(c echo.Context) *Session {
	if s, ok := c.Get(contextKey).(*Session); ok && s != nil {
		return s
	}
	return Anonymous()
}

// WithSession stores s on the request context.
func WithSession(c echo.Context, s *Session) {
	c.Set(contextKey, s)
}

// Middleware resolves the session cookie into a *Session for every request.
func Middleware(jwtService *auth.JWTService, tokens auth.TokenStoreInterface, secure bool) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  contextKey,
		TokenLookup: "cookie:" + CookieName,
		ParseTokenFunc: func(c echo.Context, raw string) (interface{}, error) {
			claims, err := jwtService.ValidateToken(raw)
			if err != nil {
				return nil, err
			}
			username, err := tokens.GetSession(c.Request().Context(), claims.ID)
			if errors.Is(err, auth.ErrSessionNotFound) {
				return nil, err
			}
			if err != nil {
				return nil, fmt.Errorf("%w: %w", errRegistryUnavailable, err)
			}
			if username != claims.Username {
				return nil, auth.ErrSessionNotFound
			}
			s := &Session{Username: username, TokenID: claims.ID}
			if claims.ExpiresAt != nil {
				s.ExpiresAt = claims.ExpiresAt.Time
			}
			return s, nil
		},
		ContinueOnIgnoredError: true,
		ErrorHandler: func(c echo.Context, err error) error {
			var parseErr *echojwt.TokenParsingError
			if errors.As(err, &parseErr) && !errors.Is(parseErr.Err, errRegistryUnavailable) {
				// stale or revoked token
				ClearCookie(c, secure)
			}
			WithSession(c, Anonymous())
			return nil
		},
	})
}

// SetCookie writes the session token cookie.
func SetCookie(c echo.Context, token string, ttl time.Duration, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session token cookie.
func ClearCookie(c echo.Context, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
