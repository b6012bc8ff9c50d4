// Package identity registers users, checks credentials and issues the bearer
// tokens that carry the authenticated user id into the HTTP layer.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/domain"
	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/repository"
)

const issuer = "movie-recommendation"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
)

// UserStore is the subset of the users repository identity relies on.
type UserStore interface {
	Create(ctx context.Context, params repository.UserCreateParams) (domain.User, error)
	GetByLogin(ctx context.Context, login string) (domain.User, error)
}

// Options configures a Service.
type Options struct {
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
}

// Claims is the JWT payload.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Session is returned on successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      domain.User
}

// Service implements registration, login and token verification.
type Service struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

// NewService returns a Service. A zero TokenTTL defaults to 24h and a zero
// BcryptCost to bcrypt.DefaultCost.
func NewService(users UserStore, opts Options) *Service {
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		users:  users,
		secret: []byte(opts.Secret),
		ttl:    ttl,
		cost:   cost,
		now:    time.Now,
	}
}

// Register hashes password and stores a new user. Duplicate usernames and
// emails surface as repository.ErrUsernameTaken and repository.ErrEmailTaken.
func (s *Service) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	hash, err := s.hashPassword(password)
	if err != nil {
		return domain.User{}, err
	}
	user, err := s.users.Create(ctx, repository.UserCreateParams{
		Username:     strings.TrimSpace(username),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("register user: %w", err)
	}
	return user, nil
}

// Authenticate checks password against the user found by username or email.
func (s *Service) Authenticate(ctx context.Context, login, password string) (domain.User, error) {
	user, err := s.users.GetByLogin(ctx, normalizeLogin(login))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Same cost as a real comparison.
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues a token.
func (s *Service) Login(ctx context.Context, login, password string) (Session, error) {
	user, err := s.Authenticate(ctx, login, password)
	if err != nil {
		return Session{}, err
	}
	token, expires, err := s.IssueToken(user)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: expires, User: user}, nil
}

// IssueToken signs an HS256 token whose subject is the user id.
func (s *Service) IssueToken(user domain.User) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := Claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// ParseToken verifies tokenString and returns the user id it carries.
func (s *Service) ParseToken(tokenString string) (int64, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

func (s *Service) hashPassword(password string) (string, error) {
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

var dummyHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	return hash
})

// normalizeLogin lowercases email logins the way Register stores them.
func normalizeLogin(login string) string {
	login = strings.TrimSpace(login)
	if strings.Contains(login, "@") {
		return strings.ToLower(login)
	}
	return login
}
