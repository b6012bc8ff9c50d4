package recommend

import (
	"context"

	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/domain"
	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/repository"
)

// RatingStore reads and writes user ratings.
type RatingStore interface {
	Get(ctx context.Context, userID, movieID int64) (domain.Rating, error)
	Upsert(ctx context.Context, params repository.RatingUpsertParams) (domain.Rating, bool, error)
	RatedMovieIDs(ctx context.Context, userID int64) (map[int64]struct{}, error)
	History(ctx context.Context, userID int64) ([]domain.RatedMovie, error)
}

// MovieCatalog reads the catalog and refreshes derived aggregates.
type MovieCatalog interface {
	GetByID(ctx context.Context, id int64) (domain.Movie, error)
	ListGenres(ctx context.Context) ([]string, error)
	ListByGenre(ctx context.Context, genre *string) ([]domain.Movie, error)
	TopRated(ctx context.Context, exclude []int64, limit int) ([]domain.Movie, error)
	RefreshAggregate(ctx context.Context, movieID int64) (domain.RatingAggregate, error)
	StoredAggregate(ctx context.Context, movieID int64) (domain.RatingAggregate, error)
}

// RecommendationStore persists generated lists per user.
type RecommendationStore interface {
	ReplaceForUser(ctx context.Context, userID int64, recs []domain.Recommendation) error
	ReadForUser(ctx context.Context, userID int64) ([]domain.RecommendedMovie, error)
}

// UserDirectory tells whether a user id is registered.
type UserDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// MovieCache caches immutable movie metadata by id. Aggregates are never
// read from it. Implementations swallow their own failures; a miss is always safe.
type MovieCache interface {
	Get(ctx context.Context, id int64) (domain.Movie, bool)
	Set(ctx context.Context, movie domain.Movie)
}

type nopCache struct{}

func (nopCache) Get(context.Context, int64) (domain.Movie, bool) { return domain.Movie{}, false }
func (nopCache) Set(context.Context, domain.Movie)               {}
