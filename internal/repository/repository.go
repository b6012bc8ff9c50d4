package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/store"
)

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrUsernameTaken is returned when registering a duplicate username.
	ErrUsernameTaken = errors.New("repository: username already exists")
	// ErrEmailTaken is returned when registering a duplicate email.
	ErrEmailTaken = errors.New("repository: email already exists")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Movies          *MoviesRepository
	Ratings         *RatingsRepository
	Recommendations *RecommendationsRepository
	Users           *UsersRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Movies:          &MoviesRepository{pool: pool},
		Ratings:         &RatingsRepository{pool: pool},
		Recommendations: &RecommendationsRepository{pool: pool},
		Users:           &UsersRepository{pool: pool},
	}
}

func pgErrorCode(err error) (string, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}
