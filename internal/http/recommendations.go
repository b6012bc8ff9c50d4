package httpserver

import (
	"net/http"

	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/domain"
)

type recommendationResponse struct {
	MovieID    int64   `json:"movieId"`
	Title      string  `json:"title"`
	Genre      *string `json:"genre"`
	AvgRating  float64 `json:"avgRating"`
	PosterPath *string `json:"posterPath"`
	Reason     string  `json:"reason"`
}

type recommendationListResponse struct {
	Items []recommendationResponse `json:"items"`
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	recs, err := s.svc.Recommendations(r.Context(), userIDFromContext(r.Context()), limit)
	if err != nil {
		s.respondServiceError(w, r, err, "recommendations")
		return
	}
	s.respondJSON(w, http.StatusOK, recommendationListResponse{Items: toRecommendationResponses(recs)})
}

func (s *Server) handleSavedRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := s.svc.SavedRecommendations(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.respondServiceError(w, r, err, "saved recommendations")
		return
	}
	s.respondJSON(w, http.StatusOK, recommendationListResponse{Items: toRecommendationResponses(recs)})
}

func toRecommendationResponses(recs []domain.RecommendedMovie) []recommendationResponse {
	items := make([]recommendationResponse, 0, len(recs))
	for _, rec := range recs {
		items = append(items, recommendationResponse{
			MovieID:    rec.Movie.ID,
			Title:      rec.Movie.Title,
			Genre:      rec.Movie.Genre,
			AvgRating:  rec.Movie.AvgRating,
			PosterPath: rec.Movie.PosterPath,
			Reason:     rec.Reason,
		})
	}
	return items
}
