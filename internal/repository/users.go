package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/domain"
)

// UsersRepository stores registered accounts.
type UsersRepository struct {
	pool *pgxpool.Pool
}

// UserCreateParams carries an already-hashed credential.
type UserCreateParams struct {
	Username     string
	Email        string
	PasswordHash string
}

const userColumns = `id, username, email, password_hash, created_at`

// Create inserts a user, mapping unique violations to ErrUsernameTaken/ErrEmailTaken.
func (r *UsersRepository) Create(ctx context.Context, params UserCreateParams) (domain.User, error) {
	const query = `
        INSERT INTO users (username, email, password_hash)
        VALUES ($1,$2,$3)
        RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, params.Username, params.Email, params.PasswordHash))
	if err != nil {
		if code, constraint := pgErrorCode(err); code == pgUniqueViolation {
			if constraint == "users_email_key" {
				return domain.User{}, ErrEmailTaken
			}
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, err
	}
	return user, nil
}

// GetByLogin finds a user whose username or email equals login.
func (r *UsersRepository) GetByLogin(ctx context.Context, login string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $1 ORDER BY id LIMIT 1`
	user, err := scanUser(r.pool.QueryRow(ctx, query, login))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// Exists reports whether a user id is registered.
func (r *UsersRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func scanUser(row pgx.Row) (domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	return user, err
}
