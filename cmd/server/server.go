package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	gormlogger "gorm.io/gorm/logger"

	"pokedex-api/internal/cache"
	"pokedex-api/internal/config"
	"pokedex-api/internal/database"
	"pokedex-api/internal/observability"
	"pokedex-api/internal/pokeapi"
	"pokedex-api/internal/realtime"
	"pokedex-api/internal/routes"
	"pokedex-api/internal/service"
	"pokedex-api/internal/validation"
)

const shutdownTimeout = 10 * time.Second

// run wires every component from cfg and serves until ctx is cancelled or
// the process receives SIGINT/SIGTERM.
func run(ctx context.Context, cfg *config.Config) error {
	logger := observability.NewLogger(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)
	if observability.ParseLevel(cfg.Log.Level) > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init database
	db, err := database.Open(cfg.Database.DSN, gormlogger.Silent)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warn("close database", slog.Any("error", err))
		}
	}()
	journal := database.NewCallJournal(db, cfg.Journal.Retention)

	client, err := pokeapi.NewClient(cfg.PokeAPI.BaseURL,
		pokeapi.WithHTTPClient(pokeapi.NewHTTPClient(cfg.PokeAPI.UserAgent, cfg.PokeAPI.Timeout, nil)),
		pokeapi.WithLogger(logger),
		pokeapi.WithRecorder(journal),
	)
	if err != nil {
		return err
	}

	store := cache.NewTTLCache[string, any](cache.Options{
		DefaultTTL:    cfg.Cache.TTL,
		SweepInterval: cfg.Cache.SweepInterval,
	})
	store.Start()
	defer store.Close()

	validator := validation.New(validation.Limits{
		MinID:        cfg.Pokemon.MinID,
		MaxID:        cfg.Pokemon.MaxID,
		DefaultLimit: cfg.Pagination.DefaultLimit,
		MaxLimit:     cfg.Pagination.MaxLimit,
	})

	hub := realtime.NewHub(logger)
	go hub.Run(ctx)

	svc := service.New(client, store, validator,
		service.WithLogger(logger),
		service.WithNotifier(hub),
		service.WithFanout(cfg.Service.Fanout),
	)

	// Setup the routes
	ginRoutes := routes.SetupRoutes(routes.Deps{
		Service:     svc,
		Validator:   validator,
		Journal:     journal,
		Hub:         hub,
		Logger:      logger,
		FrontendURL: cfg.Server.FrontendURL,
		Version:     version,
		StartedAt:   time.Now(),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           ginRoutes,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("server starting",
		slog.Int("port", cfg.Server.Port),
		slog.String("pokeapi", cfg.PokeAPI.BaseURL),
		slog.Duration("cache_ttl", cfg.Cache.TTL),
	)
	for _, endpoint := range []string{
		"GET    /api/pokemon",
		"GET    /api/pokemon/search",
		"GET    /api/pokemon/random",
		"GET    /api/pokemon/types/:type",
		"GET    /api/pokemon/:identifier",
		"GET    /api/pokemon/:identifier/exists",
		"DELETE /api/pokemon/cache",
		"GET    /api/pokemon/cache/stats",
		"GET    /api/pokemon/upstream/calls",
		"GET    /api/events",
		"GET    /health",
	} {
		logger.Debug("endpoint", slog.String("route", endpoint))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "failed to start server")
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "graceful shutdown")
	}
	return nil
}
