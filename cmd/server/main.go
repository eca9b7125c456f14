package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	_ "github.com/palavraviva/study-platform/docs" // swagger docs

	"github.com/palavraviva/study-platform/internal/api"
	"github.com/palavraviva/study-platform/internal/api/metrics"
	"github.com/palavraviva/study-platform/internal/core/service"
	"github.com/palavraviva/study-platform/internal/infrastructure/config"
	mongorepo "github.com/palavraviva/study-platform/internal/infrastructure/db/mongo"
	redisstore "github.com/palavraviva/study-platform/internal/infrastructure/db/redis"
	"github.com/palavraviva/study-platform/internal/infrastructure/queue"
	"github.com/palavraviva/study-platform/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title Bible Study Platform API
// @version 1.0
// @description Authentication, profiles, study library and admin console for the bible study app.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.New(logger.Options{}).Fatal().Err(err).Msg("load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "study-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, db, err := mongorepo.Connect(ctx, mongorepo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	redisClient, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close")
		}
	}()

	users := mongorepo.NewAuthRepository(db)
	allowList := mongorepo.NewAuthorizedEmailRepository(db)
	admins := mongorepo.NewAdminRepository(db)

	if err := mongorepo.EnsureIndexes(ctx,
		users,
		allowList,
		admins,
		mongorepo.NewStudyRepository(db),
		mongorepo.NewChapterRepository(db),
		mongorepo.NewProgressRepository(db),
	); err != nil {
		return err
	}

	if err := service.BootstrapAdmin(ctx, cfg.BootstrapAdmin, allowList, users, admins, log); err != nil {
		return err
	}

	// Workers stop only after the HTTP server has shut down.
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.ActivityWorkers, mongorepo.NewActivityRepository(db), log)
	dispatcher.Start(workerCtx)
	metrics.RegisterActivityQueue(prometheus.DefaultRegisterer, dispatcher)
	defer func() {
		cancelWorkers()
		dispatcher.Wait()
	}()

	e := api.NewRouter(api.Deps{
		DB:       db,
		Redis:    redisClient,
		Config:   cfg,
		Activity: dispatcher,
		Log:      log,
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("http server stopped")
	return nil
}
