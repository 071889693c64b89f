// @title        PLS Dashboard Gateway API
// @version      1.0
// @description  Session-authenticated JSON endpoints of the PLS freelance dashboard.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pls-platform/dashboard/internal/api"
	"github.com/pls-platform/dashboard/internal/core/ports"
	"github.com/pls-platform/dashboard/internal/core/service"
	"github.com/pls-platform/dashboard/internal/infrastructure/backend"
	"github.com/pls-platform/dashboard/internal/infrastructure/config"
	"github.com/pls-platform/dashboard/internal/infrastructure/db/memory"
	mongostore "github.com/pls-platform/dashboard/internal/infrastructure/db/mongo"
	redisstore "github.com/pls-platform/dashboard/internal/infrastructure/db/redis"
	"github.com/pls-platform/dashboard/internal/infrastructure/queue"
	"github.com/pls-platform/dashboard/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Service: "dashboard"})
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "dashboard",
	})

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("dashboard stopped")
	}
	log.Info().Msg("dashboard exited cleanly")
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	// --- Session store ---
	var (
		store ports.SessionStore
		rdb   *goredis.Client
	)
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer client.Close()
		rdb = client
		store = redisstore.NewSessionStore(client, logger.Component("session_store"))
	default:
		log.Warn().Msg("using the in-memory session store; sessions are lost on restart")
		store = memory.NewSessionStore()
	}

	// --- Audit trail ---
	var (
		sink     ports.AuditSink
		activity ports.AuditReader
		mdb      *mongo.Database
	)
	if cfg.Audit.Enabled {
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = client.Disconnect(dctx)
		}()
		mdb = db

		repo := mongostore.NewAuditRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
		auditLog := logger.Component("audit")
		dispatcher := queue.NewDispatcher(cfg.Audit.Workers, service.NewAuditService(repo, auditLog), auditLog)
		dispatcher.Start(ctx)
		sink, activity = dispatcher, repo
	}

	// --- Core ---
	client, err := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
	}, logger.Component("backend"))
	if err != nil {
		return err
	}

	roles := service.NewRoleRouter()
	gateway := service.NewAuthGateway(client, store, sink, cfg.Session.TTL, logger.Component("auth"))
	shell := service.NewShell(roles, gateway, cfg.Backend.ProfileTimeout, logger.Component("shell"))

	e, err := api.NewRouter(api.Deps{
		Store:        store,
		Gateway:      gateway,
		Shell:        shell,
		Roles:        roles,
		Activity:     activity,
		Mongo:        mdb,
		Redis:        rdb,
		CookieSecure: cfg.Session.CookieSecure,
		Log:          logger.Component("http"),
	})
	if err != nil {
		return err
	}

	// --- Serve until signalled ---
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.Backend.BaseURL).Msg("dashboard listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
