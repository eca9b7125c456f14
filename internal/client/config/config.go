// Package config loads the studyctl terminal client settings.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	APIURL         string        `env:"API_URL,         default=http://localhost:8080"`
	LogLevel       string        `env:"LOG_LEVEL,       default=warn"`
	RefreshMargin  time.Duration `env:"REFRESH_MARGIN,  default=1m"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT, default=15s"`
}

// Load reads STUDYCTL_* variables from the environment.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.PrefixLookuper("STUDYCTL_", lookuper),
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if cfg.RefreshMargin < 0 {
		return nil, fmt.Errorf("config: STUDYCTL_REFRESH_MARGIN must not be negative")
	}
	return &cfg, nil
}
