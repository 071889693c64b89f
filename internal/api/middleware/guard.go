package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pls-platform/dashboard/internal/api/metrics"
	"github.com/pls-platform/dashboard/internal/core/domain"
	"github.com/pls-platform/dashboard/internal/core/service"
)

// Guard enforces the route guard on role-scoped paths. It must run after
// LoadSession. Redirects never carry an error banner: a denied request looks
// exactly like one that needs to log in.
func Guard(guard service.RouteGuard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var session *domain.Session
			if s, ok := SessionFrom(c); ok {
				session = &s
			}

			d := guard.Decide(c.Request().URL.Path, session)
			metrics.GuardDecisionsTotal.WithLabelValues(d.Label).Inc()

			switch d.Kind {
			case service.Redirect:
				if isFragmentRequest(c.Request()) {
					c.Response().Header().Set("HX-Redirect", d.Target)
					return c.NoContent(http.StatusUnauthorized)
				}
				return c.Redirect(http.StatusFound, d.Target)
			case service.Rewrite:
				rewritePath(c.Request(), d.Target)
			}
			return next(c)
		}
	}
}

// RootRewrite serves the login page for the bare root within the same
// request cycle. Register it with echo.Pre so routing sees the new path.
func RootRewrite(guard service.RouteGuard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.URL.Path == domain.PublicRoute {
				if d := guard.Decide(req.URL.Path, nil); d.Kind == service.Rewrite {
					metrics.GuardDecisionsTotal.WithLabelValues(d.Label).Inc()
					rewritePath(req, d.Target)
				}
			}
			return next(c)
		}
	}
}

func rewritePath(req *http.Request, target string) {
	req.URL.Path = target
	req.URL.RawPath = ""
}

// isFragmentRequest detects htmx and XHR loads, which cannot follow a redirect
// into a full page.
func isFragmentRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true" ||
		strings.EqualFold(r.Header.Get(echo.HeaderXRequestedWith), "XMLHttpRequest")
}
