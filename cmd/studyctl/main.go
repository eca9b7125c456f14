package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/palavraviva/study-platform/internal/client/cli"
	"github.com/palavraviva/study-platform/internal/client/config"
	"github.com/palavraviva/study-platform/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: true,
		Output: os.Stderr,
	})

	if err := cli.NewApp(cfg, log).Run(ctx); err != nil {
		log.Error().Err(err).Msg("studyctl")
		os.Exit(1)
	}
}
