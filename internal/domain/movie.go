package domain

import "time"

// Movie represents the canonical movie entity in the database/service.
// AvgRating and RatingsCount are derived from the ratings table and only
// written by the aggregate recalculation.
type Movie struct {
	ID           int64
	Title        string
	Genre        *string
	ReleaseYear  *int
	AvgRating    float64
	RatingsCount int64
	PosterPath   *string
	CreatedAt    time.Time
}

// GenreOrEmpty returns the movie genre or "" when unset.
func (m Movie) GenreOrEmpty() string {
	if m.Genre == nil {
		return ""
	}
	return *m.Genre
}
