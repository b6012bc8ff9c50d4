package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/domain"
)

// RecommendationsRepository materializes generated recommendations per user.
type RecommendationsRepository struct {
	pool *pgxpool.Pool
}

// ReplaceForUser swaps all stored rows of a user for recs in one transaction.
// A per-user advisory lock serializes concurrent replacements so the last one wins whole.
func (r *RecommendationsRepository) ReplaceForUser(ctx context.Context, userID int64, recs []domain.Recommendation) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, userID); err != nil {
			return fmt.Errorf("lock recommendations: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM recommendations WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("delete recommendations: %w", err)
		}
		if len(recs) == 0 {
			return nil
		}

		_, err := tx.CopyFrom(
			ctx,
			pgx.Identifier{"recommendations"},
			[]string{"user_id", "movie_id", "reason", "rank"},
			pgx.CopyFromSlice(len(recs), func(i int) ([]any, error) {
				return []any{userID, recs[i].MovieID, recs[i].Reason, int32(i + 1)}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("insert recommendations: %w", err)
		}
		return nil
	})
}

// ReadForUser returns the stored rows joined with their movies, ordered by the
// movies' current avg_rating (not the rank at generation time).
func (r *RecommendationsRepository) ReadForUser(ctx context.Context, userID int64) ([]domain.RecommendedMovie, error) {
	const query = `
        SELECT m.id, m.title, m.genre, m.release_year, m.avg_rating, m.ratings_count,
               m.poster_path, m.created_at, r.reason
        FROM recommendations r
        JOIN movies m ON m.id = r.movie_id
        WHERE r.user_id = $1
        ORDER BY m.avg_rating DESC, m.id ASC
    `
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.RecommendedMovie, 0)
	for rows.Next() {
		var reason string
		movie, err := scanMovie(rows, &reason)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.RecommendedMovie{Movie: movie, Reason: reason})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
