package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/domain"
)

// MoviesRepository provides read access to the catalog plus the aggregate refresh.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

const movieColumns = `
    id,
    title,
    genre,
    release_year,
    avg_rating,
    ratings_count,
    poster_path,
    created_at
`

// MovieCreateParams bundles the fields required to create a movie.
type MovieCreateParams struct {
	Title       string
	Genre       *string
	ReleaseYear *int
	PosterPath  *string
}

// Create inserts a new movie row and returns the stored entity. Aggregates start at zero.
func (r *MoviesRepository) Create(ctx context.Context, params MovieCreateParams) (domain.Movie, error) {
	query := fmt.Sprintf(`
        INSERT INTO movies (title, genre, release_year, poster_path)
        VALUES ($1,$2,$3,$4)
        RETURNING %s
    `, movieColumns)

	row := r.pool.QueryRow(ctx, query, params.Title, params.Genre, params.ReleaseYear, params.PosterPath)
	return scanMovie(row)
}

// GetByID fetches a movie by its identifier.
func (r *MoviesRepository) GetByID(ctx context.Context, id int64) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id = $1`, movieColumns)
	movie, err := scanMovie(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// ListGenres returns the distinct non-null genres in alphabetical order.
func (r *MoviesRepository) ListGenres(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT genre FROM movies WHERE genre IS NOT NULL AND genre <> '' ORDER BY genre`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	genres, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	return genres, nil
}

// ListByGenre returns the movies of one genre, or the whole catalog when genre is nil,
// ordered by avg_rating descending with id as the tie-break.
func (r *MoviesRepository) ListByGenre(ctx context.Context, genre *string) ([]domain.Movie, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if genre == nil {
		query := fmt.Sprintf(`SELECT %s FROM movies ORDER BY avg_rating DESC, id ASC`, movieColumns)
		rows, err = r.pool.Query(ctx, query)
	} else {
		query := fmt.Sprintf(`SELECT %s FROM movies WHERE genre = $1 ORDER BY avg_rating DESC, id ASC`, movieColumns)
		rows, err = r.pool.Query(ctx, query, *genre)
	}
	if err != nil {
		return nil, err
	}
	return collectMovies(rows)
}

// TopRated returns up to limit movies not in exclude, ordered by avg_rating
// descending then id ascending.
func (r *MoviesRepository) TopRated(ctx context.Context, exclude []int64, limit int) ([]domain.Movie, error) {
	if limit <= 0 {
		return []domain.Movie{}, nil
	}
	if exclude == nil {
		// A NULL array would make NOT (id = ANY(...)) filter every row.
		exclude = []int64{}
	}

	query := fmt.Sprintf(`
        SELECT %s FROM movies
        WHERE NOT (id = ANY($1))
        ORDER BY avg_rating DESC, id ASC
        LIMIT $2
    `, movieColumns)

	rows, err := r.pool.Query(ctx, query, exclude, limit)
	if err != nil {
		return nil, err
	}
	return collectMovies(rows)
}

// RefreshAggregate recomputes ratings_count and avg_rating for one movie from
// the ratings table in a single statement and returns the stored values.
func (r *MoviesRepository) RefreshAggregate(ctx context.Context, movieID int64) (domain.RatingAggregate, error) {
	const query = `
        UPDATE movies m
        SET ratings_count = agg.count,
            avg_rating = agg.average
        FROM (
            SELECT COUNT(*)::int8 AS count,
                   COALESCE(ROUND(AVG(rating)::numeric, 2), 0)::float8 AS average
            FROM ratings
            WHERE movie_id = $1
        ) agg
        WHERE m.id = $1
        RETURNING m.avg_rating, m.ratings_count
    `

	var agg domain.RatingAggregate
	err := r.pool.QueryRow(ctx, query, movieID).Scan(&agg.Average, &agg.Count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RatingAggregate{}, ErrNotFound
		}
		return domain.RatingAggregate{}, fmt.Errorf("refresh aggregate: %w", err)
	}
	return agg, nil
}

// StoredAggregate reads the avg_rating and ratings_count currently stored on a movie.
func (r *MoviesRepository) StoredAggregate(ctx context.Context, movieID int64) (domain.RatingAggregate, error) {
	var agg domain.RatingAggregate
	err := r.pool.QueryRow(ctx, `SELECT avg_rating, ratings_count FROM movies WHERE id = $1`, movieID).
		Scan(&agg.Average, &agg.Count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RatingAggregate{}, ErrNotFound
		}
		return domain.RatingAggregate{}, fmt.Errorf("read aggregate: %w", err)
	}
	return agg, nil
}

func collectMovies(rows pgx.Rows) ([]domain.Movie, error) {
	defer rows.Close()

	items := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanMovie(row pgx.Row, extra ...any) (domain.Movie, error) {
	var movie domain.Movie
	dest := []any{
		&movie.ID,
		&movie.Title,
		&movie.Genre,
		&movie.ReleaseYear,
		&movie.AvgRating,
		&movie.RatingsCount,
		&movie.PosterPath,
		&movie.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domain.Movie{}, err
	}
	return movie, nil
}
