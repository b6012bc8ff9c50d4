// Package cache keeps movie details in Redis behind a circuit breaker.
// Every failure degrades to a miss; the database stays authoritative.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/domain"
	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/metrics"
)

const (
	keyPrefix   = "movie:"
	breakerName = "redis-movie-cache"
)

// Options configures the Redis-backed cache.
type Options struct {
	URL      string
	Password string
	TTL      time.Duration
	Logger   zerolog.Logger
}

// MovieCache caches movie metadata by id.
type MovieCache struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	ttl     time.Duration
	logger  zerolog.Logger
}

// Key returns the Redis key for a movie id.
func Key(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

// New connects to Redis at opts.URL. It returns (nil, nil) when URL is empty;
// a nil *MovieCache is a valid, always-missing cache.
func New(ctx context.Context, opts Options) (*MovieCache, error) {
	if opts.URL == "" {
		return nil, nil
	}
	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.Password != "" {
		redisOpts.Password = opts.Password
	}
	redisOpts.DialTimeout = 5 * time.Second
	redisOpts.ReadTimeout = time.Second
	redisOpts.WriteTimeout = time.Second

	client := redis.NewClient(redisOpts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return newWithClient(client, opts.TTL, opts.Logger), nil
}

func newWithClient(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *MovieCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	logger = logger.With().Str("component", "cache").Logger()
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &MovieCache{client: client, breaker: breaker, ttl: ttl, logger: logger}
}

// Get returns the cached movie, if any.
func (c *MovieCache) Get(ctx context.Context, id int64) (domain.Movie, bool) {
	if c == nil {
		metrics.CacheRequests.WithLabelValues("miss").Inc()
		return domain.Movie{}, false
	}
	payload, err := c.breaker.Execute(func() ([]byte, error) {
		return c.client.Get(ctx, Key(id)).Bytes()
	})
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheRequests.WithLabelValues("miss").Inc()
		} else {
			metrics.CacheRequests.WithLabelValues("error").Inc()
			c.logger.Debug().Err(err).Int64("movie_id", id).Msg("cache read failed")
		}
		return domain.Movie{}, false
	}

	var movie domain.Movie
	if err := json.Unmarshal(payload, &movie); err != nil {
		metrics.CacheRequests.WithLabelValues("error").Inc()
		c.Invalidate(ctx, id)
		return domain.Movie{}, false
	}
	metrics.CacheRequests.WithLabelValues("hit").Inc()
	return movie, true
}

// Set stores movie for the configured TTL.
func (c *MovieCache) Set(ctx context.Context, movie domain.Movie) {
	if c == nil {
		return
	}
	payload, err := json.Marshal(movie)
	if err != nil {
		return
	}
	_, err = c.breaker.Execute(func() ([]byte, error) {
		return nil, c.client.Set(ctx, Key(movie.ID), payload, c.ttl).Err()
	})
	if err != nil {
		c.logger.Debug().Err(err).Int64("movie_id", movie.ID).Msg("cache write failed")
	}
}

// Invalidate drops the cached movie.
func (c *MovieCache) Invalidate(ctx context.Context, id int64) {
	if c == nil {
		return
	}
	_, err := c.breaker.Execute(func() ([]byte, error) {
		return nil, c.client.Del(ctx, Key(id)).Err()
	})
	if err != nil {
		c.logger.Warn().Err(err).Int64("movie_id", id).Msg("cache invalidation failed")
	}
}

// Ping reports whether Redis is reachable. A nil cache is always healthy.
func (c *MovieCache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the Redis connection pool.
func (c *MovieCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
