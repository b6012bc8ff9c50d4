package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/domain"
)

// FallbackSelector picks globally top-rated movies the user has not rated.
// It never persists anything.
type FallbackSelector struct {
	ratings RatingStore
	movies  MovieCatalog
}

// NewFallbackSelector returns a selector over the given stores.
func NewFallbackSelector(ratings RatingStore, movies MovieCatalog) *FallbackSelector {
	return &FallbackSelector{ratings: ratings, movies: movies}
}

// Select returns up to limit top-rated movies, excluding the user's rated
// movies and any id in extraExclude, each tagged domain.ReasonFallback.
func (f *FallbackSelector) Select(ctx context.Context, userID int64, limit int, extraExclude map[int64]struct{}) ([]domain.RecommendedMovie, error) {
	rated, err := f.ratings.RatedMovieIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("rated movies: %w", err)
	}
	exclude := make(map[int64]struct{}, len(rated)+len(extraExclude))
	for id := range rated {
		exclude[id] = struct{}{}
	}
	for id := range extraExclude {
		exclude[id] = struct{}{}
	}
	return f.selectExcluding(ctx, exclude, limit)
}

func (f *FallbackSelector) selectExcluding(ctx context.Context, exclude map[int64]struct{}, limit int) ([]domain.RecommendedMovie, error) {
	if limit <= 0 {
		return []domain.RecommendedMovie{}, nil
	}

	ids := make([]int64, 0, len(exclude))
	for id := range exclude {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	movies, err := f.movies.TopRated(ctx, ids, limit)
	if err != nil {
		return nil, fmt.Errorf("top rated: %w", err)
	}

	out := make([]domain.RecommendedMovie, 0, len(movies))
	for _, movie := range movies {
		out = append(out, domain.RecommendedMovie{Movie: movie, Reason: domain.ReasonFallback})
	}
	return out, nil
}
