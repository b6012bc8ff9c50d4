package recommend

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/domain"
	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/metrics"
)

// Recalculator is the only writer of a movie's avg_rating and ratings_count.
type Recalculator struct {
	movies MovieCatalog
	logger zerolog.Logger
}

// NewRecalculator returns a recalculator over movies.
func NewRecalculator(movies MovieCatalog, logger zerolog.Logger) *Recalculator {
	return &Recalculator{
		movies: movies,
		logger: logger.With().Str("component", "aggregates").Logger(),
	}
}

// Recalculate recomputes count and rounded mean for movieID from its ratings.
// Running it twice yields the same values.
func (r *Recalculator) Recalculate(ctx context.Context, movieID int64) (domain.RatingAggregate, error) {
	agg, err := r.movies.RefreshAggregate(ctx, movieID)
	if err != nil {
		return domain.RatingAggregate{}, fmt.Errorf("recalculate movie %d: %w", movieID, err)
	}
	metrics.AggregateRecalculations.Inc()

	r.logger.Debug().
		Int64("movie_id", movieID).
		Float64("avg_rating", agg.Average).
		Int64("ratings_count", agg.Count).
		Msg("aggregate refreshed")
	return agg, nil
}
