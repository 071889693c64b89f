package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pls-platform/dashboard/internal/api/middleware"
	"github.com/pls-platform/dashboard/internal/core/domain"
	"github.com/pls-platform/dashboard/internal/core/ports"
	"github.com/pls-platform/dashboard/internal/core/service"
)

// Inline login messages.
const (
	msgInvalidCredentials = "Invalid username or password"
	msgNetworkFailure     = "Unable to reach the server, please try again"
	msgServerError        = "Something went wrong, please try again"
	msgMissingFields      = "Please fill in all fields"
)

const loginTitle = "Login | PLS"

type AuthHandler struct {
	gateway      ports.AuthGateway
	store        ports.SessionStore
	roles        service.RoleRouter
	cookieSecure bool
	newID        func() string
	log          zerolog.Logger
}

func NewAuthHandler(gateway ports.AuthGateway, store ports.SessionStore, roles service.RoleRouter, cookieSecure bool, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		gateway:      gateway,
		store:        store,
		roles:        roles,
		cookieSecure: cookieSecure,
		newID:        uuid.NewString,
		log:          log,
	}
}

type loginForm struct {
	Username string `form:"username" validate:"required,max=128"`
	Password string `form:"password" validate:"required,notblank,max=256"`
}

// LoginPage renders the login form. A visitor who already holds a session is
// sent to their landing route instead.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	if s, ok := middleware.SessionFrom(c); ok {
		return c.Redirect(http.StatusFound, h.roles.LandingRouteFor(s.Role))
	}
	return h.renderLogin(c, http.StatusOK, "", "")
}

// Login authenticates the form credentials, stores the session under a fresh
// id and redirects to the role's landing route.
func (h *AuthHandler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return h.renderLogin(c, http.StatusBadRequest, msgMissingFields, "")
	}
	form.Username = strings.TrimSpace(form.Username)
	if err := c.Validate(&form); err != nil {
		return h.renderLogin(c, http.StatusBadRequest, validationMessage(err), form.Username)
	}

	ctx := c.Request().Context()
	session, err := h.gateway.Login(ctx, form.Username, form.Password)
	if err != nil {
		status, msg := loginFailure(err)
		return h.renderLogin(c, status, msg, form.Username)
	}

	// Replace any previous session so an old id cannot be replayed.
	if old := middleware.SessionIDFrom(c); old != "" {
		if err := h.store.Clear(ctx, old); err != nil {
			h.log.Warn().Err(err).Msg("clear previous session failed")
		}
	}

	sid := h.newID()
	if err := h.store.Set(ctx, sid, session); err != nil {
		h.log.Error().Err(err).Str("username", session.Username).Msg("persist session failed")
		return h.renderLogin(c, http.StatusInternalServerError, msgServerError, form.Username)
	}

	c.SetCookie(h.sessionCookie(sid, session.ExpiresAt))
	return c.Redirect(http.StatusSeeOther, h.roles.LandingRouteFor(session.Role))
}

// Logout drops the session locally and upstream and returns to the login page.
func (h *AuthHandler) Logout(c echo.Context) error {
	if sid := middleware.SessionIDFrom(c); sid != "" {
		h.gateway.Logout(c.Request().Context(), sid)
	}
	expired := h.sessionCookie("", time.Unix(0, 0))
	expired.MaxAge = -1
	c.SetCookie(expired)
	return c.Redirect(http.StatusSeeOther, domain.LoginRoute)
}

func (h *AuthHandler) renderLogin(c echo.Context, status int, msg, username string) error {
	return c.Render(status, viewLogin, loginPage{
		Title:     loginTitle,
		Error:     msg,
		Username:  username,
		CSRFToken: csrfToken(c),
	})
}

func (h *AuthHandler) sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// loginFailure maps a gateway error to the page status and inline message.
// validationMessage shows missing fields with the generic prompt and any other
// rule (length limits) with the validator's own wording.
func validationMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) && !ve.Missing() {
		return ve.Error()
	}
	return msgMissingFields
}

func loginFailure(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgInvalidCredentials
	case errors.Is(err, domain.ErrNetworkFailure):
		return http.StatusBadGateway, msgNetworkFailure
	default:
		return http.StatusInternalServerError, msgServerError
	}
}
