package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pls-platform/dashboard/internal/core/domain"
	"github.com/pls-platform/dashboard/internal/core/ports"
	"github.com/pls-platform/dashboard/internal/core/service"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

type SessionHandler struct {
	roles service.RoleRouter
	audit ports.AuditReader
	log   zerolog.Logger
}

// NewSessionHandler builds the JSON session API. audit may be nil when the
// audit trail is disabled.
func NewSessionHandler(roles service.RoleRouter, audit ports.AuditReader, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{roles: roles, audit: audit, log: log}
}

// --- Request / Response types ---

type navEntryResponse struct {
	Title string `json:"title"`
	Route string `json:"route"`
	Icon  string `json:"icon"`
}

type sessionResponse struct {
	UID        string             `json:"uid"`
	Username   string             `json:"username"`
	FullName   string             `json:"fullName,omitempty"`
	Email      string             `json:"email,omitempty"`
	Role       string             `json:"role"`
	HomeRoute  string             `json:"homeRoute"`
	ExpiresAt  time.Time          `json:"expiresAt"`
	Navigation []navEntryResponse `json:"navigation"`
}

type activityResponse struct {
	Events []domain.LoginEvent `json:"events"`
}

// Current returns the caller's identity and navigation.
//
// @Summary      Current session
// @Description  Identity, landing route and navigation of the logged-in user. The access token is never exposed.
// @Tags         session
// @Produce      json
// @Success      200  {object}  domain.Response{data=sessionResponse}
// @Failure      401  {object}  domain.Response
// @Router       /api/session [get]
func (h *SessionHandler) Current(c echo.Context) error {
	s, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	entries := h.roles.NavigationEntriesFor(s.Role)
	nav := make([]navEntryResponse, 0, len(entries))
	for _, e := range entries {
		nav = append(nav, navEntryResponse{Title: e.Title, Route: e.Route, Icon: e.Icon})
	}

	return c.JSON(http.StatusOK, domain.OK(sessionResponse{
		UID:        s.UID,
		Username:   s.Username,
		FullName:   s.FullName,
		Email:      s.Email,
		Role:       s.Role.String(),
		HomeRoute:  h.roles.LandingRouteFor(s.Role),
		ExpiresAt:  s.ExpiresAt,
		Navigation: nav,
	}))
}

// Activity lists the caller's recent logins and logouts.
//
// @Summary      Recent login activity
// @Tags         session
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of events (1-100)"  default(20)
// @Success      200    {object}  domain.Response{data=activityResponse}
// @Failure      400    {object}  domain.Response
// @Failure      401    {object}  domain.Response
// @Failure      503    {object}  domain.Response
// @Router       /api/session/activity [get]
func (h *SessionHandler) Activity(c echo.Context) error {
	s, _, err := ctxSession(c)
	if err != nil {
		return err
	}
	if h.audit == nil {
		return c.JSON(http.StatusServiceUnavailable, domain.Fail("AUDIT_DISABLED", "login activity is not recorded"))
	}

	limit := int64(defaultActivityLimit)
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 || n > maxActivityLimit {
			return c.JSON(http.StatusBadRequest, domain.Fail("BAD_REQUEST", "limit must be between 1 and 100"))
		}
		limit = n
	}

	events, err := h.audit.RecentByUsername(c.Request().Context(), s.Username, limit)
	if err != nil {
		return err
	}
	if events == nil {
		events = []domain.LoginEvent{}
	}
	return c.JSON(http.StatusOK, domain.OK(activityResponse{Events: events}))
}
