package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/pls-platform/dashboard/docs"
	"github.com/pls-platform/dashboard/internal/api/handler"
	"github.com/pls-platform/dashboard/internal/api/middleware"
	"github.com/pls-platform/dashboard/internal/core/domain"
	"github.com/pls-platform/dashboard/internal/core/ports"
	"github.com/pls-platform/dashboard/internal/core/service"
)

// Deps is everything the router wires into handlers. Mongo, Redis and
// Activity are nil when the matching backend is not configured.
type Deps struct {
	Store        ports.SessionStore
	Gateway      ports.AuthGateway
	Shell        *service.Shell
	Roles        service.RoleRouter
	Activity     ports.AuditReader
	Mongo        *mongo.Database
	Redis        *redis.Client
	CookieSecure bool
	Log          zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) (*echo.Echo, error) {
	renderer, err := handler.NewRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Renderer = renderer
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	guard := service.NewRouteGuard(d.Roles)

	// Each router owns its HTTP metrics registry; the domain metrics live in
	// the default one.
	reg := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Pre(middleware.RootRewrite(guard))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "dashboard",
		Subsystem:  "http",
		Registerer: reg,
		Skipper:    skipPaths("/metrics", "/health"),
	}))
	e.Use(middleware.LoadSession(d.Store))
	e.Use(echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
		TokenLookup:    "form:_csrf,header:" + echo.HeaderXCSRFToken,
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   d.CookieSecure,
		CookieSameSite: http.SameSiteLaxMode,
		Skipper:        skipPaths("/api", "/health", "/metrics", "/swagger"),
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Gateway, d.Store, d.Roles, d.CookieSecure, d.Log)
	shellHandler := handler.NewShellHandler(d.Shell, d.Roles)
	sessionHandler := handler.NewSessionHandler(d.Roles, d.Activity, d.Log)

	// --- Public pages ---
	e.GET(domain.LoginRoute, authHandler.LoginPage)
	e.POST(domain.LoginRoute, authHandler.Login)
	e.POST("/logout", authHandler.Logout)

	// --- Role-scoped dashboard ---
	dash := e.Group(domain.DashboardRoot, middleware.Guard(guard))
	dash.GET("/:role", shellHandler.Page)
	dash.GET("/:role/*", shellHandler.Page)
	dash.GET("/:role/header", shellHandler.Header)
	dash.POST("/:role/sidebar", shellHandler.ToggleSidebar)

	// --- JSON API ---
	apiGroup := e.Group("/api", middleware.RequireSession())
	apiGroup.GET("/session", sessionHandler.Current)
	apiGroup.GET("/session/activity", sessionHandler.Activity)

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", readinessHandler.Readiness) // readiness
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, reg},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}

// skipPaths matches any of the given path prefixes on a segment boundary.
func skipPaths(prefixes ...string) echomiddleware.Skipper {
	return func(c echo.Context) bool {
		p := c.Request().URL.Path
		for _, prefix := range prefixes {
			if p == prefix || strings.HasPrefix(p, prefix+"/") {
				return true
			}
		}
		return false
	}
}
