package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/config"
	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/domain"
	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/identity"
	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/recommend"
)

// RecommendationService is the engine surface the handlers call.
type RecommendationService interface {
	Rate(ctx context.Context, userID, movieID int64, value float64) (recommend.RateResult, error)
	Recommendations(ctx context.Context, userID int64, limit int) ([]domain.RecommendedMovie, error)
	SavedRecommendations(ctx context.Context, userID int64) ([]domain.RecommendedMovie, error)
	Movie(ctx context.Context, id int64) (domain.Movie, error)
	Genres(ctx context.Context) ([]string, error)
	MoviesByGenre(ctx context.Context, genre string) ([]domain.Movie, error)
	TopMovies(ctx context.Context, limit int) ([]domain.Movie, error)
	UserRating(ctx context.Context, userID, movieID int64) (domain.Rating, error)
}

// Authenticator registers users, logs them in and verifies bearer tokens.
type Authenticator interface {
	Register(ctx context.Context, username, email, password string) (domain.User, error)
	Login(ctx context.Context, login, password string) (identity.Session, error)
	ParseToken(token string) (int64, error)
}

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg      config.Config
	health   HealthChecker
	svc      RecommendationService
	auth     Authenticator
	logger   zerolog.Logger
	validate *validator.Validate
	router   chi.Router
	httpSrv  *http.Server
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, health HealthChecker, svc RecommendationService, auth Authenticator, logger zerolog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	s := &Server{
		cfg:      cfg,
		health:   health,
		svc:      svc,
		auth:     auth,
		logger:   logger.With().Str("component", "http").Logger(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		router:   r,
	}
	s.registerRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/auth", func(r chi.Router) {
		r.Use(s.rateLimit())
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
	})

	s.router.Get("/genres", s.handleListGenres)
	s.router.Route("/movies", func(r chi.Router) {
		r.Get("/", s.handleListMovies)
		r.Get("/top", s.handleTopMovies)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetMovie)
			r.With(s.requireUser).Get("/rating", s.handleGetUserRating)
		})
	})

	s.router.Group(func(r chi.Router) {
		r.Use(s.requireUser)
		r.Post("/ratings", s.handleSubmitRating)
		r.Get("/recommendations", s.handleRecommendations)
		r.Get("/recommendations/saved", s.handleSavedRecommendations)
	})
}

// Start boots the HTTP server and blocks until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.health != nil {
		if err := s.health.HealthCheck(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("health check failed")
			s.respondError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Service unavailable")
			return
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
