package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pls-platform/dashboard/internal/core/domain"
	"github.com/pls-platform/dashboard/internal/core/ports"
)

const (
	// SessionCookie holds the opaque session id.
	SessionCookie = "pls_session"

	// Echo context keys set by LoadSession.
	ContextSession   = "session"
	ContextSessionID = "session_id"
)

// LoadSession resolves the session cookie against the store and injects the
// session into the echo context and the request context. Requests without a
// usable session pass through untouched; authorization is the guard's job.
// The request metadata used by the audit trail is attached either way.
func LoadSession(store ports.SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := domain.WithRequestMeta(req.Context(), domain.RequestMeta{
				RemoteAddr: c.RealIP(),
				UserAgent:  req.UserAgent(),
				RequestID:  c.Response().Header().Get(echo.HeaderXRequestID),
			})

			if cookie, err := req.Cookie(SessionCookie); err == nil && cookie.Value != "" {
				c.Set(ContextSessionID, cookie.Value)
				if s, ok := store.Get(ctx, cookie.Value); ok {
					c.Set(ContextSession, s)
					ctx = domain.WithSession(ctx, s)
				}
			}

			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

// RequireSession rejects requests without a session with a 401 envelope.
// It guards the JSON API; dashboard pages go through Guard instead.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := SessionFrom(c); !ok {
				return c.JSON(http.StatusUnauthorized, domain.Fail("UNAUTHORIZED", "authentication required"))
			}
			return next(c)
		}
	}
}

// SessionFrom returns the session injected by LoadSession.
func SessionFrom(c echo.Context) (domain.Session, bool) {
	s, ok := c.Get(ContextSession).(domain.Session)
	return s, ok
}

// SessionIDFrom returns the raw session cookie value, even when it no longer
// resolves to a session.
func SessionIDFrom(c echo.Context) string {
	sid, _ := c.Get(ContextSessionID).(string)
	return sid
}
