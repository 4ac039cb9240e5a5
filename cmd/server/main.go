// Package main is the entry point for the showalert API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"showalert/internal/config"
	"showalert/internal/domain/artist"
	"showalert/internal/domain/genre"
	"showalert/internal/domain/show"
	"showalert/internal/infrastructure/cache"
	v1 "showalert/internal/infrastructure/http/v1"
	"showalert/internal/infrastructure/http/v1/handlers"
	"showalert/internal/infrastructure/metrics"
	"showalert/internal/infrastructure/storage/postgres"
	"showalert/internal/infrastructure/storage/postgres/assoc_repo"
	"showalert/internal/infrastructure/storage/postgres/catalog_repo"
	"showalert/internal/infrastructure/storage/postgres/show_repo"
	"showalert/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.App.Development(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()
	log.Infow("starting showalert server", "env", cfg.App.Env)

	// --- Database ---
	pool, err := postgres.NewPool(ctx, postgres.NewPoolConfig("showalert", cfg.Database))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	// --- Detail cache (optional) ---
	var (
		detailCache show.DetailCache
		redisPing   handlers.Pinger
	)
	rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
	switch {
	case err != nil:
		log.Warnw("redis unavailable, running without detail cache", "error", err)
	case rdb != nil:
		defer rdb.Close()
		codec, err := cache.NewCodec(cfg.Redis.CompressThreshold)
		if err != nil {
			log.Fatalw("failed to create cache codec", "error", err)
		}
		detailCache = cache.NewDetailCache(rdb, codec, cfg.Redis.DetailTTL, log, metrics.CacheObserver{})
		redisPing = handlers.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		log.Infow("detail cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.DetailTTL)
	default:
		log.Info("redis address not set, detail cache disabled")
	}

	// --- Repositories and services ---
	links := assoc_repo.NewLinks(txManager)

	artistService := artist.NewService(catalog_repo.NewArtistRepo(txManager), txManager, artist.Links{
		Genres: links.ArtistGenres,
		Shows:  links.ArtistShows,
	}, detailCache)
	genreService := genre.NewService(catalog_repo.NewGenreRepo(txManager), txManager, genre.Links{
		Artists: links.GenreArtists,
		Shows:   links.GenreShows,
	}, detailCache)

	showQueries := show.NewQueryService(show_repo.NewQueryRepo(txManager), detailCache)
	showAdmin := show.NewAdminService(show.AdminServiceConfig{
		Repo:      catalog_repo.NewShowRepo(txManager),
		Stores:    assoc_repo.NewShowStores(txManager, links),
		TxManager: txManager,
		Events:    postgres.NewOutboxPublisher(txManager),
		Cache:     detailCache,
	})

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:       log,
		Development:  cfg.App.Development(),
		DB:           pool,
		Redis:        redisPing,
		PoolStats:    pool.Stats,
		ShowQueries:  showQueries,
		ShowCommands: showAdmin,
		Artists:      artistService,
		Genres:       genreService,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
		IdleTimeout:  2 * cfg.App.WriteTimeout,
	}

	go func() {
		log.Infow("server starting", "port", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
