package httpserver

import (
	"net/http"
	"time"
)

type ratingRequest struct {
	MovieID int64    `json:"movieId" validate:"required,gt=0"`
	Rating  *float64 `json:"rating" validate:"required"`
}

type ratingResponse struct {
	MovieID      int64                    `json:"movieId"`
	Rating       float64                  `json:"rating"`
	RatedAt      time.Time                `json:"ratedAt"`
	AvgRating    *float64                 `json:"avgRating,omitempty"`
	RatingsCount *int64                   `json:"ratingsCount,omitempty"`
	Warnings     []string                 `json:"warnings,omitempty"`
	Recommended  []recommendationResponse `json:"recommendations,omitempty"`
}

func (s *Server) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if !s.validateRequest(w, &req) {
		return
	}

	result, err := s.svc.Rate(r.Context(), userIDFromContext(r.Context()), req.MovieID, *req.Rating)
	if err != nil {
		s.respondServiceError(w, r, err, "submit rating")
		return
	}

	resp := ratingResponse{
		MovieID: result.Rating.MovieID,
		Rating:  result.Rating.Value,
		RatedAt: result.Rating.RatedAt,
	}
	if result.Aggregate != nil {
		resp.AvgRating = &result.Aggregate.Average
		resp.RatingsCount = &result.Aggregate.Count
	}
	for _, sideErr := range result.SideEffects {
		resp.Warnings = append(resp.Warnings, sideErr.Error())
	}
	if len(result.Recommendations) > 0 {
		resp.Recommended = toRecommendationResponses(result.Recommendations)
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	s.respondJSON(w, status, resp)
}
