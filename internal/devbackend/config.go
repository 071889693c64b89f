package devbackend

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port         string        `env:"DEV_PORT,          default=9090"`
	Secret       string        `env:"DEV_JWT_SECRET,    default=dev-secret-change-me"`
	TokenTTL     time.Duration `env:"DEV_TOKEN_TTL,     default=1h"`
	SeedPassword string        `env:"DEV_SEED_PASSWORD, default=password"`
	MinimalLogin bool          `env:"DEV_MINIMAL_LOGIN, default=false"`
	LogLevel     string        `env:"LOG_LEVEL,         default=debug"`
}

// LoadConfig reads the DEV_* variables.
func LoadConfig(ctx context.Context) (*Config, error) {
	return loadConfig(ctx, envconfig.OsLookuper())
}

func loadConfig(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("devbackend config: %w", err)
	}
	if len(cfg.Secret) < 8 {
		return nil, fmt.Errorf("devbackend config: DEV_JWT_SECRET must be at least 8 characters")
	}
	return &cfg, nil
}
