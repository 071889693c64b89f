package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pls-platform/dashboard/internal/devbackend"
	"github.com/pls-platform/dashboard/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := devbackend.LoadConfig(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Service: "devbackend"})
		boot.Fatal().Err(err).Msg("load config")
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "devbackend"})

	users, err := devbackend.Seed(cfg.SeedPassword, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("seed users")
	}
	srv := devbackend.NewServer(users, devbackend.NewIssuer(cfg.Secret, cfg.TokenTTL), cfg.MinimalLogin, log)
	e := srv.Router()

	go func() {
		for _, u := range devbackend.SeedUsers {
			log.Info().Str("username", u.Username).Str("role", u.Role).Msg("seeded user")
		}
		log.Info().Str("port", cfg.Port).Msg("devbackend listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("devbackend server")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
