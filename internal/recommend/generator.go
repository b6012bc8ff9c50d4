package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/domain"
	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/metrics"
)

const (
	// DefaultLimit is the list length used when callers pass a non-positive limit.
	DefaultLimit = 20
	// DefaultMaxLimit caps caller-supplied limits.
	DefaultMaxLimit = 100
)

// Limits bounds the length of generated lists.
type Limits struct {
	Default int
	Max     int
}

// Normalize maps non-positive limits to the default and caps the rest at Max.
func (l Limits) Normalize(limit int) int {
	def, ceiling := l.Default, l.Max
	if def <= 0 {
		def = DefaultLimit
	}
	if ceiling <= 0 {
		ceiling = DefaultMaxLimit
	}
	if def > ceiling {
		def = ceiling
	}
	if limit <= 0 {
		return def
	}
	return min(limit, ceiling)
}

// Generator computes and persists per-user recommendation lists.
type Generator struct {
	ratings  RatingStore
	movies   MovieCatalog
	recs     RecommendationStore
	users    UserDirectory
	fallback *FallbackSelector
	limits   Limits
	logger   zerolog.Logger
}

// NewGenerator wires a generator. users may be nil, in which case every user
// id is treated as known.
func NewGenerator(ratings RatingStore, movies MovieCatalog, recs RecommendationStore, users UserDirectory, limits Limits, logger zerolog.Logger) *Generator {
	return &Generator{
		ratings:  ratings,
		movies:   movies,
		recs:     recs,
		users:    users,
		fallback: NewFallbackSelector(ratings, movies),
		limits:   limits,
		logger:   logger.With().Str("component", "generator").Logger(),
	}
}

// Fallback exposes the selector used to fill short lists.
func (g *Generator) Fallback() *FallbackSelector {
	return g.fallback
}

// Compute returns up to limit ranked recommendations for userID without
// persisting them.
func (g *Generator) Compute(ctx context.Context, userID int64, limit int) ([]domain.RecommendedMovie, error) {
	start := time.Now()
	limit = g.limits.Normalize(limit)

	if g.users != nil {
		known, err := g.users.Exists(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("lookup user: %w", err)
		}
		if !known {
			return []domain.RecommendedMovie{}, ErrUnknownUser
		}
	}

	rated, err := g.ratings.RatedMovieIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("rated movies: %w", err)
	}
	history, err := g.ratings.History(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("rating history: %w", err)
	}

	exclude := make(map[int64]struct{}, len(rated)+limit)
	for id := range rated {
		exclude[id] = struct{}{}
	}
	for _, item := range history {
		exclude[item.MovieID] = struct{}{}
	}

	var picked []domain.RecommendedMovie
	if len(history) > 0 {
		picked, err = g.personalized(ctx, history, exclude, limit)
		if err != nil {
			return nil, err
		}
	}
	personalized := len(picked)

	if len(picked) < limit {
		for _, item := range picked {
			exclude[item.Movie.ID] = struct{}{}
		}
		fill, err := g.fallback.selectExcluding(ctx, exclude, limit-len(picked))
		if err != nil {
			return nil, err
		}
		picked = append(picked, fill...)
	}
	if picked == nil {
		picked = []domain.RecommendedMovie{}
	}

	metrics.RecordGenerated(personalized, len(picked)-personalized, time.Since(start))
	g.logger.Debug().
		Int64("user_id", userID).
		Int("limit", limit).
		Int("personalized", personalized).
		Int("fallback", len(picked)-personalized).
		Msg("recommendations computed")

	return picked, nil
}

// Refresh computes a list and replaces the user's stored rows with it.
// When only the replace fails, the computed list is returned together with an
// error wrapping ErrSideEffect.
func (g *Generator) Refresh(ctx context.Context, userID int64, limit int) ([]domain.RecommendedMovie, error) {
	picked, err := g.Compute(ctx, userID, limit)
	if err != nil {
		return picked, err
	}

	rows := make([]domain.Recommendation, 0, len(picked))
	for _, item := range picked {
		rows = append(rows, domain.Recommendation{UserID: userID, MovieID: item.Movie.ID, Reason: item.Reason})
	}
	if err := g.recs.ReplaceForUser(ctx, userID, rows); err != nil {
		return picked, fmt.Errorf("%w: replace recommendations: %w", ErrSideEffect, err)
	}
	return picked, nil
}

func (g *Generator) personalized(ctx context.Context, history []domain.RatedMovie, exclude map[int64]struct{}, limit int) ([]domain.RecommendedMovie, error) {
	genres := likedGenres(history)
	if len(genres) == 0 {
		if genre, ok := favouriteGenre(history); ok {
			genres = []string{genre}
		}
	}

	candidates := make([]domain.RecommendedMovie, 0)
	seen := make(map[int64]struct{})
	for _, genre := range genres {
		movies, err := g.movies.ListByGenre(ctx, &genre)
		if err != nil {
			return nil, fmt.Errorf("movies in genre %q: %w", genre, err)
		}
		for _, movie := range movies {
			if _, skip := exclude[movie.ID]; skip {
				continue
			}
			if _, dup := seen[movie.ID]; dup {
				continue
			}
			seen[movie.ID] = struct{}{}
			candidates = append(candidates, domain.RecommendedMovie{
				Movie:  movie,
				Reason: domain.LikedGenreReason(genre),
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return rankBefore(candidates[i].Movie, candidates[j].Movie)
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// likedGenres returns the sorted distinct genres rated at or above the liked threshold.
func likedGenres(history []domain.RatedMovie) []string {
	set := make(map[string]struct{})
	for _, item := range history {
		if item.Genre == nil || *item.Genre == "" {
			continue
		}
		if item.Value >= domain.LikedThreshold {
			set[*item.Genre] = struct{}{}
		}
	}
	genres := make([]string, 0, len(set))
	for genre := range set {
		genres = append(genres, genre)
	}
	sort.Strings(genres)
	return genres
}

// favouriteGenre returns the genre of the single highest rated movie, lowest
// movie id first on ties. ok is false when that movie has no genre.
func favouriteGenre(history []domain.RatedMovie) (string, bool) {
	var best *domain.RatedMovie
	for i := range history {
		item := &history[i]
		if best == nil || item.Value > best.Value || (item.Value == best.Value && item.MovieID < best.MovieID) {
			best = item
		}
	}
	if best == nil || best.Genre == nil || *best.Genre == "" {
		return "", false
	}
	return *best.Genre, true
}

// rankBefore orders by avg_rating desc, ratings_count desc, id asc.
func rankBefore(a, b domain.Movie) bool {
	if a.AvgRating != b.AvgRating {
		return a.AvgRating > b.AvgRating
	}
	if a.RatingsCount != b.RatingsCount {
		return a.RatingsCount > b.RatingsCount
	}
	return a.ID < b.ID
}
