package domain

import (
	"errors"
	"math"
	"time"
)

const (
	MinRating = 0.0
	MaxRating = 5.0

	// LikedThreshold is the minimum rating that marks a movie's genre as liked.
	LikedThreshold = 4.0
)

// ErrInvalidRating is returned for rating values outside [MinRating, MaxRating].
var ErrInvalidRating = errors.New("rating must be between 0 and 5")

// Rating represents a single user's rating for a movie.
type Rating struct {
	ID      int64
	UserID  int64
	MovieID int64
	Value   float64
	RatedAt time.Time
}

// RatingAggregate provides average and count for a movie's ratings.
type RatingAggregate struct {
	Average float64
	Count   int64
}

// RatedMovie is one entry of a user's rating history joined with the movie genre.
type RatedMovie struct {
	MovieID int64
	Genre   *string
	Value   float64
}

// ValidateRatingValue rejects NaN, infinities and values outside [0,5].
func ValidateRatingValue(value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ErrInvalidRating
	}
	if value < MinRating || value > MaxRating {
		return ErrInvalidRating
	}
	return nil
}

// RoundAverage rounds a mean rating to two decimals, matching the stored aggregate.
func RoundAverage(value float64) float64 {
	return math.Round(value*100) / 100
}
