package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/domain"
	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/logging"
	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/metrics"
	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/repository"
)

// Options configures a Service.
type Options struct {
	Limits Limits
	Logger zerolog.Logger
	// Cache is optional.
	Cache MovieCache
	// Users is optional; without it every user id is treated as known.
	Users UserDirectory
}

// RateResult reports a successful rating write.
type RateResult struct {
	Rating    domain.Rating
	Created   bool
	Aggregate *domain.RatingAggregate
	// Recommendations is the regenerated list, nil when regeneration failed.
	Recommendations []domain.RecommendedMovie
	// SideEffects lists non-fatal failures of the follow-up work; each wraps ErrSideEffect.
	SideEffects []error
}

// Service orchestrates rating writes, recommendation reads and catalog lookups.
type Service struct {
	ratings      RatingStore
	movies       MovieCatalog
	recs         RecommendationStore
	cache        MovieCache
	generator    *Generator
	recalculator *Recalculator
	limits       Limits
	logger       zerolog.Logger
}

// NewService wires the engine over the given stores.
func NewService(ratings RatingStore, movies MovieCatalog, recs RecommendationStore, opts Options) *Service {
	cache := opts.Cache
	if cache == nil {
		cache = nopCache{}
	}
	logger := opts.Logger.With().Str("component", "recommend").Logger()
	return &Service{
		ratings:      ratings,
		movies:       movies,
		recs:         recs,
		cache:        cache,
		generator:    NewGenerator(ratings, movies, recs, opts.Users, opts.Limits, opts.Logger),
		recalculator: NewRecalculator(movies, opts.Logger),
		limits:       opts.Limits,
		logger:       logger,
	}
}

// Rate records value as userID's rating of movieID, then recalculates the
// movie's aggregates and regenerates the user's recommendations. Failures of
// the last two steps are returned in RateResult.SideEffects.
func (s *Service) Rate(ctx context.Context, userID, movieID int64, value float64) (RateResult, error) {
	if userID <= 0 {
		return RateResult{}, ErrNotAuthenticated
	}
	if err := domain.ValidateRatingValue(value); err != nil {
		return RateResult{}, fmt.Errorf("%w: %v", ErrInvalidValue, value)
	}
	if _, err := s.movies.GetByID(ctx, movieID); err != nil {
		return RateResult{}, s.mapStoreErr(err, "load movie")
	}

	rating, created, err := s.ratings.Upsert(ctx, repository.RatingUpsertParams{
		UserID:  userID,
		MovieID: movieID,
		Value:   value,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRating) {
			return RateResult{}, fmt.Errorf("%w: %v", ErrInvalidValue, value)
		}
		return RateResult{}, s.mapStoreErr(err, "upsert rating")
	}
	if created {
		metrics.RatingsWritten.WithLabelValues("created").Inc()
	} else {
		metrics.RatingsWritten.WithLabelValues("updated").Inc()
	}

	result := RateResult{Rating: rating, Created: created}
	log := logging.Ctx(ctx, s.logger)

	agg, err := s.recalculator.Recalculate(ctx, movieID)
	if err != nil {
		result.SideEffects = append(result.SideEffects, s.sideEffect(ctx, metrics.StageRecalculate, err))
	} else {
		result.Aggregate = &agg
	}

	recs, err := s.generator.Refresh(ctx, userID, s.limits.Normalize(0))
	switch {
	case err == nil:
		result.Recommendations = recs
	case errors.Is(err, ErrSideEffect):
		result.Recommendations = recs
		metrics.SideEffectFailures.WithLabelValues(metrics.StagePersist).Inc()
		log.Warn().Err(err).Int64("user_id", userID).Msg("recommendations not persisted")
		result.SideEffects = append(result.SideEffects, err)
	case errors.Is(err, ErrUnknownUser):
		log.Debug().Int64("user_id", userID).Msg("skipping regeneration for unknown user")
	default:
		result.SideEffects = append(result.SideEffects, s.sideEffect(ctx, metrics.StageRegenerate, err))
	}

	log.Info().
		Int64("user_id", userID).
		Int64("movie_id", movieID).
		Bool("created", created).
		Int("side_effects", len(result.SideEffects)).
		Msg("rating recorded")
	return result, nil
}

// Recommendations regenerates and returns up to limit entries for userID in
// generation order. If generation fails, the stored list is returned, and if
// that is empty or unreadable, the plain fallback list.
func (s *Service) Recommendations(ctx context.Context, userID int64, limit int) ([]domain.RecommendedMovie, error) {
	if userID <= 0 {
		return nil, ErrNotAuthenticated
	}
	limit = s.limits.Normalize(limit)
	log := logging.Ctx(ctx, s.logger)

	recs, err := s.generator.Refresh(ctx, userID, limit)
	switch {
	case err == nil:
		return recs, nil
	case errors.Is(err, ErrUnknownUser):
		return []domain.RecommendedMovie{}, nil
	case errors.Is(err, ErrSideEffect):
		log.Warn().Err(err).Int64("user_id", userID).Msg("serving unpersisted recommendations")
		return recs, nil
	}
	log.Warn().Err(err).Int64("user_id", userID).Msg("generation failed, reading stored recommendations")

	stored, readErr := s.recs.ReadForUser(ctx, userID)
	if readErr == nil && len(stored) > 0 {
		if len(stored) > limit {
			stored = stored[:limit]
		}
		return stored, nil
	}

	fallback, fbErr := s.generator.Fallback().Select(ctx, userID, limit, nil)
	if fbErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, errors.Join(err, fbErr))
	}
	return fallback, nil
}

// SavedRecommendations returns the stored list ordered by the movies' current avg_rating.
func (s *Service) SavedRecommendations(ctx context.Context, userID int64) ([]domain.RecommendedMovie, error) {
	if userID <= 0 {
		return nil, ErrNotAuthenticated
	}
	stored, err := s.recs.ReadForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return stored, nil
}

// Movie returns one movie. Metadata may come from the cache; avg_rating and
// ratings_count are always read from the store.
func (s *Service) Movie(ctx context.Context, id int64) (domain.Movie, error) {
	if movie, ok := s.cache.Get(ctx, id); ok {
		agg, err := s.movies.StoredAggregate(ctx, id)
		if err != nil {
			return domain.Movie{}, s.mapStoreErr(err, "load aggregate")
		}
		movie.AvgRating, movie.RatingsCount = agg.Average, agg.Count
		return movie, nil
	}
	movie, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return domain.Movie{}, s.mapStoreErr(err, "load movie")
	}
	metadata := movie
	metadata.AvgRating, metadata.RatingsCount = 0, 0
	s.cache.Set(ctx, metadata)
	return movie, nil
}

// Genres lists the distinct catalog genres.
func (s *Service) Genres(ctx context.Context) ([]string, error) {
	genres, err := s.movies.ListGenres(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return genres, nil
}

// MoviesByGenre lists one genre, or the whole catalog when genre is blank.
func (s *Service) MoviesByGenre(ctx context.Context, genre string) ([]domain.Movie, error) {
	var filter *string
	if trimmed := strings.TrimSpace(genre); trimmed != "" {
		filter = &trimmed
	}
	movies, err := s.movies.ListByGenre(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return movies, nil
}

// TopMovies returns the globally top-rated movies.
func (s *Service) TopMovies(ctx context.Context, limit int) ([]domain.Movie, error) {
	movies, err := s.movies.TopRated(ctx, nil, s.limits.Normalize(limit))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return movies, nil
}

// UserRating returns the rating userID gave movieID.
func (s *Service) UserRating(ctx context.Context, userID, movieID int64) (domain.Rating, error) {
	if userID <= 0 {
		return domain.Rating{}, ErrNotAuthenticated
	}
	rating, err := s.ratings.Get(ctx, userID, movieID)
	if err != nil {
		return domain.Rating{}, s.mapStoreErr(err, "load rating")
	}
	return rating, nil
}

func (s *Service) sideEffect(ctx context.Context, stage string, err error) error {
	metrics.SideEffectFailures.WithLabelValues(stage).Inc()
	logging.Ctx(ctx, s.logger).Warn().Err(err).Str("stage", stage).Msg("rating side effect failed")
	return fmt.Errorf("%w: %s: %w", ErrSideEffect, stage, err)
}

func (s *Service) mapStoreErr(err error, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
