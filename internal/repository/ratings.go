package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/domain"
)

// RatingsRepository provides helpers for movie ratings.
type RatingsRepository struct {
	pool *pgxpool.Pool
}

// RatingUpsertParams captures the payload required to upsert a rating.
type RatingUpsertParams struct {
	UserID  int64
	MovieID int64
	Value   float64
}

// Upsert inserts or updates a rating and indicates whether it was newly created.
// Out-of-range values are rejected before the statement runs.
func (r *RatingsRepository) Upsert(ctx context.Context, params RatingUpsertParams) (domain.Rating, bool, error) {
	if err := domain.ValidateRatingValue(params.Value); err != nil {
		return domain.Rating{}, false, err
	}

	const query = `
        INSERT INTO ratings (user_id, movie_id, rating)
        VALUES ($1,$2,$3)
        ON CONFLICT (user_id, movie_id)
        DO UPDATE SET rating = EXCLUDED.rating, rated_at = now()
        RETURNING id, user_id, movie_id, rating, rated_at, (xmax = 0) AS inserted
    `

	var rating domain.Rating
	var inserted bool
	err := r.pool.QueryRow(ctx, query, params.UserID, params.MovieID, params.Value).Scan(
		&rating.ID,
		&rating.UserID,
		&rating.MovieID,
		&rating.Value,
		&rating.RatedAt,
		&inserted,
	)
	if err != nil {
		switch code, _ := pgErrorCode(err); code {
		case pgForeignKeyViolation:
			return domain.Rating{}, false, ErrNotFound
		case pgCheckViolation:
			return domain.Rating{}, false, domain.ErrInvalidRating
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Rating{}, false, ErrNotFound
		}
		return domain.Rating{}, false, err
	}

	return rating, inserted, nil
}

// Get retrieves the rating a user gave a movie.
func (r *RatingsRepository) Get(ctx context.Context, userID, movieID int64) (domain.Rating, error) {
	const query = `
        SELECT id, user_id, movie_id, rating, rated_at
        FROM ratings
        WHERE user_id = $1 AND movie_id = $2
    `
	var rating domain.Rating
	err := r.pool.QueryRow(ctx, query, userID, movieID).Scan(
		&rating.ID,
		&rating.UserID,
		&rating.MovieID,
		&rating.Value,
		&rating.RatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Rating{}, ErrNotFound
		}
		return domain.Rating{}, err
	}
	return rating, nil
}

// RatedMovieIDs returns the set of movies the user has rated.
func (r *RatingsRepository) RatedMovieIDs(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	rows, err := r.pool.Query(ctx, `SELECT movie_id FROM ratings WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, err
	}

	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// History returns the user's ratings joined with each movie's genre, ordered by movie id.
func (r *RatingsRepository) History(ctx context.Context, userID int64) ([]domain.RatedMovie, error) {
	const query = `
        SELECT r.movie_id, m.genre, r.rating
        FROM ratings r
        JOIN movies m ON m.id = r.movie_id
        WHERE r.user_id = $1
        ORDER BY r.movie_id
    `
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]domain.RatedMovie, 0)
	for rows.Next() {
		var item domain.RatedMovie
		if err := rows.Scan(&item.MovieID, &item.Genre, &item.Value); err != nil {
			return nil, err
		}
		history = append(history, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return history, nil
}

// Aggregate returns the rating average (two decimals) and count for a movie
// computed directly from the ratings table.
func (r *RatingsRepository) Aggregate(ctx context.Context, movieID int64) (domain.RatingAggregate, error) {
	const query = `
        SELECT COALESCE(ROUND(AVG(rating)::numeric, 2), 0)::float8 AS average,
               COUNT(*)::int8 AS count
        FROM ratings
        WHERE movie_id = $1
    `

	var agg domain.RatingAggregate
	err := r.pool.QueryRow(ctx, query, movieID).Scan(&agg.Average, &agg.Count)
	if err != nil {
		return domain.RatingAggregate{}, fmt.Errorf("aggregate ratings: %w", err)
	}
	return agg, nil
}
