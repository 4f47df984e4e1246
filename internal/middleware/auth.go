package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"premium_gallery/internal/domain/models"
	"premium_gallery/internal/lib/apperror"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	SessionName     = "session"
	SessionTokenKey = "token"

	// HeaderSessionToken carries a re-signed bearer on authorized requests.
	HeaderSessionToken = "X-Session-Token"

	authContextKey = "auth"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.AuthContext, error)
	AuthenticateBearer(ctx context.Context, bearer string) (*models.AuthContext, error)
	// Extend slides the session expiry and returns a freshly signed bearer.
	Extend(ctx context.Context, auth *models.AuthContext) (string, error)
	TTL() time.Duration
}

// RequireAuth lets the request through only with a valid session whose role
// is in roles. No roles means any authenticated user.
func RequireAuth(a Authenticator, roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth, fromCookie, err := resolve(c, a)
			if err != nil {
				return err
			}
			if auth == nil {
				return apperror.Unauthenticated()
			}

			if len(roles) > 0 && !auth.HasRole(roles...) {
				return apperror.Forbidden()
			}

			refresh(c, a, auth, fromCookie)
			c.Set(authContextKey, auth)

			return next(c)
		}
	}
}

// OptionalAuth attaches the caller when valid credentials are present and
// lets anonymous requests through otherwise.
func OptionalAuth(a Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth, fromCookie, err := resolve(c, a)
			if err != nil && !apperror.IsKind(err, apperror.KindAuth) {
				return err
			}

			if err == nil && auth != nil {
				refresh(c, a, auth, fromCookie)
				c.Set(authContextKey, auth)
			}

			return next(c)
		}
	}
}

// resolve tries the session cookie first and falls back to the bearer token
// when the cookie is missing or rejected. It returns nil without error when
// the request carries no credentials at all.
func resolve(c echo.Context, a Authenticator) (*models.AuthContext, bool, error) {
	ctx := c.Request().Context()
	token, bearer := sessionToken(c), bearerToken(c.Request())

	if token != "" {
		auth, err := a.Authenticate(ctx, token)
		if err == nil {
			return auth, true, nil
		}
		if bearer == "" || !apperror.IsKind(err, apperror.KindAuth) {
			return nil, false, err
		}
	}

	if bearer != "" {
		auth, err := a.AuthenticateBearer(ctx, bearer)
		if err != nil {
			return nil, false, err
		}
		return auth, false, nil
	}

	return nil, false, nil
}

// refresh slides the session and hands the client a credential with a fresh
// lifetime: a re-saved cookie, or a new bearer in HeaderSessionToken.
// Failures leave the current credential in place.
func refresh(c echo.Context, a Authenticator, auth *models.AuthContext, fromCookie bool) {
	bearer, err := a.Extend(c.Request().Context(), auth)
	if err != nil {
		return
	}

	if fromCookie {
		_ = SaveSessionToken(c, auth.Token, a.TTL())
		return
	}
	c.Response().Header().Set(HeaderSessionToken, bearer)
}

// AuthFrom returns the caller set by RequireAuth, or nil on public routes.
func AuthFrom(c echo.Context) *models.AuthContext {
	auth, _ := c.Get(authContextKey).(*models.AuthContext)
	return auth
}

// SaveSessionToken stores token in the session cookie.
func SaveSessionToken(c echo.Context, token string, ttl time.Duration) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}

	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	sess.Values[SessionTokenKey] = token

	return sess.Save(c.Request(), c.Response())
}

// ClearSession expires the session cookie.
func ClearSession(c echo.Context) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}

	sess.Options = &sessions.Options{Path: "/", MaxAge: -1, HttpOnly: true}
	delete(sess.Values, SessionTokenKey)

	return sess.Save(c.Request(), c.Response())
}

func sessionToken(c echo.Context) string {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return ""
	}

	token, _ := sess.Values[SessionTokenKey].(string)

	return token
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}

	return ""
}
