package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/cache"
	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/config"
	httpserver "github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/http"
	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/identity"
	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/logging"
	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/recommend"
	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/repository"
	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLogger.Fatal().Err(err).Msg("config error")
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	storeOpts := store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	}

	st, err := store.New(dbCtx, cfg.DBURL, storeOpts)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer st.Close()

	movieCache, err := cache.New(ctx, cache.Options{
		URL:      cfg.RedisURL,
		Password: cfg.RedisPassword,
		TTL:      time.Duration(cfg.CacheTTLSecs) * time.Second,
		Logger:   logger,
	})
	if err != nil {
		// The cache is optional; run against the database alone.
		logger.Warn().Err(err).Msg("movie cache disabled")
		movieCache = nil
	}
	defer movieCache.Close()

	repo := repository.New(st)

	svcOpts := recommend.Options{
		Limits: recommend.Limits{
			Default: cfg.RecommendationDefaultLimit,
			Max:     cfg.RecommendationMaxLimit,
		},
		Logger: logger,
		Users:  repo.Users,
	}
	if movieCache != nil {
		svcOpts.Cache = movieCache
	}
	svc := recommend.NewService(repo.Ratings, repo.Movies, repo.Recommendations, svcOpts)

	auth := identity.NewService(repo.Users, identity.Options{
		Secret:   cfg.JWTSecret,
		TokenTTL: time.Duration(cfg.TokenTTLMins) * time.Minute,
	})

	server := httpserver.New(cfg, st, svc, auth, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("server error")
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
}
