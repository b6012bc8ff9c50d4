package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/domain"
)

type movieResponse struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Genre        *string   `json:"genre"`
	ReleaseYear  *int      `json:"releaseYear,omitempty"`
	AvgRating    float64   `json:"avgRating"`
	RatingsCount int64     `json:"ratingsCount"`
	PosterPath   *string   `json:"posterPath"`
	CreatedAt    time.Time `json:"createdAt"`
}

type movieListResponse struct {
	Items []movieResponse `json:"items"`
}

type genresResponse struct {
	Items []string `json:"items"`
}

type userRatingResponse struct {
	MovieID int64     `json:"movieId"`
	Rating  float64   `json:"rating"`
	RatedAt time.Time `json:"ratedAt"`
}

func (s *Server) handleListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := s.svc.Genres(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err, "list genres")
		return
	}
	if genres == nil {
		genres = []string{}
	}
	s.respondJSON(w, http.StatusOK, genresResponse{Items: genres})
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := s.svc.MoviesByGenre(r.Context(), r.URL.Query().Get("genre"))
	if err != nil {
		s.respondServiceError(w, r, err, "list movies")
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieListResponse(movies))
}

func (s *Server) handleTopMovies(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	movies, err := s.svc.TopMovies(r.Context(), limit)
	if err != nil {
		s.respondServiceError(w, r, err, "top movies")
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieListResponse(movies))
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	movie, err := s.svc.Movie(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err, "get movie")
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (s *Server) handleGetUserRating(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	rating, err := s.svc.UserRating(r.Context(), userIDFromContext(r.Context()), id)
	if err != nil {
		s.respondServiceError(w, r, err, "get rating")
		return
	}
	s.respondJSON(w, http.StatusOK, userRatingResponse{
		MovieID: rating.MovieID,
		Rating:  rating.Value,
		RatedAt: rating.RatedAt,
	})
}

func toMovieResponse(movie domain.Movie) movieResponse {
	return movieResponse{
		ID:           movie.ID,
		Title:        movie.Title,
		Genre:        movie.Genre,
		ReleaseYear:  movie.ReleaseYear,
		AvgRating:    movie.AvgRating,
		RatingsCount: movie.RatingsCount,
		PosterPath:   movie.PosterPath,
		CreatedAt:    movie.CreatedAt,
	}
}

func toMovieListResponse(movies []domain.Movie) movieListResponse {
	items := make([]movieResponse, 0, len(movies))
	for _, movie := range movies {
		items = append(items, toMovieResponse(movie))
	}
	return movieListResponse{Items: items}
}
