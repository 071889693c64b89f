// Package devbackend is a stand-in for the PLS backend's auth endpoints, for
// local development and end-to-end tests. It speaks the same envelope
// contract as the real backend.
package devbackend

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/pls-platform/dashboard/internal/core/domain"
)

const contextClaims = "claims"

type Server struct {
	users        *Directory
	tokens       *Issuer
	minimalLogin bool
	log          zerolog.Logger
}

// NewServer builds the backend. With minimalLogin the login response leaves
// out fullName and email, which then only come from /auth/me.
func NewServer(users *Directory, tokens *Issuer, minimalLogin bool, log zerolog.Logger) *Server {
	return &Server{users: users, tokens: tokens, minimalLogin: minimalLogin, log: log}
}

// Router returns the echo instance serving the auth endpoints.
func (s *Server) Router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = envelopeErrorHandler
	e.Use(echomiddleware.Recover())

	e.POST("/auth/login", s.Login)
	e.GET("/auth/me", s.Me, s.bearer)
	e.POST("/auth/logout", s.Logout, s.bearer)
	return e
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
	UID         string `json:"uid"`
	Username    string `json:"username"`
	FullName    string `json:"fullName,omitempty"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role"`
}

type profileResponse struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (s *Server) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, domain.Fail("VALIDATION_ERROR", "invalid payload"))
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, domain.Fail("VALIDATION_ERROR", "username and password are required"))
	}

	user, err := s.users.Authenticate(req.Username, req.Password)
	if err != nil {
		s.log.Info().Str("username", req.Username).Msg("dev login rejected")
		return c.JSON(http.StatusUnauthorized, domain.Fail("INVALID_CREDENTIALS", "Invalid username or password"))
	}

	token, _, err := s.tokens.Issue(user)
	if err != nil {
		return err
	}

	resp := loginResponse{
		AccessToken: token,
		UID:         user.UID,
		Username:    user.Username,
		Role:        user.Role,
	}
	if !s.minimalLogin {
		resp.FullName = user.FullName
		resp.Email = user.Email
	}
	s.log.Info().Str("username", user.Username).Msg("dev login")
	return c.JSON(http.StatusOK, domain.OK(resp))
}

func (s *Server) Me(c echo.Context) error {
	claims := c.Get(contextClaims).(*Claims)
	user, ok := s.users.Lookup(claims.Username)
	if !ok {
		return c.JSON(http.StatusUnauthorized, domain.Fail("UNAUTHORIZED", "user no longer exists"))
	}
	return c.JSON(http.StatusOK, domain.OK(profileResponse{
		UID:      user.UID,
		Username: user.Username,
		FullName: user.FullName,
		Email:    user.Email,
		Role:     user.Role,
	}))
}

func (s *Server) Logout(c echo.Context) error {
	claims := c.Get(contextClaims).(*Claims)
	s.tokens.Revoke(claims)
	return c.JSON(http.StatusOK, domain.OK(map[string]bool{"loggedOut": true}))
}

// bearer validates the access token and injects its claims.
func (s *Server) bearer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return c.JSON(http.StatusUnauthorized, domain.Fail("UNAUTHORIZED", "missing bearer token"))
		}

		claims, err := s.tokens.Verify(parts[1])
		if err != nil {
			return c.JSON(http.StatusUnauthorized, domain.Fail("UNAUTHORIZED", "invalid token"))
		}
		c.Set(contextClaims, claims)
		return next(c)
	}
}

func envelopeErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, msg := http.StatusInternalServerError, "internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status, msg = he.Code, fmt.Sprintf("%v", he.Message)
	}
	_ = c.JSON(status, domain.Fail(strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_")), msg))
}
