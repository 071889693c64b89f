package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pls-platform/dashboard/internal/core/service"
)

// NavCollapsedCookie remembers the rail state. It is presentation only.
const NavCollapsedCookie = "pls_nav_collapsed"

type ShellHandler struct {
	shell *service.Shell
	roles service.RoleRouter
}

func NewShellHandler(shell *service.Shell, roles service.RoleRouter) *ShellHandler {
	return &ShellHandler{shell: shell, roles: roles}
}

// Page renders the dashboard shell for any path under the role's root.
func (h *ShellHandler) Page(c echo.Context) error {
	session, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	view := h.shell.View(session, c.Request().URL.Path, navCollapsed(c))
	title := view.RoleTitle + " Dashboard | PLS"
	if view.ActiveTitle != "" {
		title = view.ActiveTitle + " | PLS"
	}
	return c.Render(http.StatusOK, viewShell, shellPage{
		Title:     title,
		View:      view,
		CSRFToken: csrfToken(c),
	})
}

// Header renders the identity fragment. It always answers 200; a failed
// profile fetch yields a blank header.
func (h *ShellHandler) Header(c echo.Context) error {
	_, sid, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, viewHeader, h.shell.Header(c.Request().Context(), sid))
}

// ToggleSidebar flips the collapsed cookie and goes back to the page it was
// posted from when that page is on the caller's own dashboard.
func (h *ShellHandler) ToggleSidebar(c echo.Context) error {
	session, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     NavCollapsedCookie,
		Value:    strconv.FormatBool(!navCollapsed(c)),
		Path:     "/",
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		SameSite: http.SameSiteLaxMode,
	})

	target := h.roles.LandingRouteFor(session.Role)
	if back, ok := sameDashboard(c.Request(), h.roles.DashboardRootFor(session.Role)); ok {
		target = back
	}
	return c.Redirect(http.StatusSeeOther, target)
}

func navCollapsed(c echo.Context) bool {
	cookie, err := c.Cookie(NavCollapsedCookie)
	if err != nil {
		return false
	}
	collapsed, _ := strconv.ParseBool(cookie.Value)
	return collapsed
}

// sameDashboard returns the Referer as a local path when it points into root
// on this host.
func sameDashboard(req *http.Request, root string) (string, bool) {
	if root == "" {
		return "", false
	}
	ref, err := url.Parse(req.Referer())
	if err != nil || ref.Path == "" {
		return "", false
	}
	if ref.Host != "" && ref.Host != req.Host {
		return "", false
	}
	if ref.Path != root && !strings.HasPrefix(ref.Path, root+"/") {
		return "", false
	}
	back := ref.EscapedPath()
	if ref.RawQuery != "" {
		back += "?" + ref.RawQuery
	}
	return back, true
}
