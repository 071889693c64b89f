package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/pls-platform/dashboard/internal/api/middleware"
	"github.com/pls-platform/dashboard/internal/core/domain"
)

// ctxSession returns the session injected by LoadSession. Routes that call it
// sit behind Guard or RequireSession, so a miss means the middleware chain is
// wired wrong; reject with 401 instead of rendering an anonymous dashboard.
func ctxSession(c echo.Context) (domain.Session, string, error) {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		return domain.Session{}, "", echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return s, middleware.SessionIDFrom(c), nil
}

// csrfToken is the token minted by echo's CSRF middleware for this request.
func csrfToken(c echo.Context) string {
	token, _ := c.Get(echomiddleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
