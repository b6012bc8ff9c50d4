// Package recommend implements the rating-driven recommendation engine.
//
// A rating write is followed, in the same request, by a recalculation of the
// movie's stored aggregates and a regeneration of the rater's recommendation
// list. Both follow-ups are best effort: their failures are logged, counted and
// reported in RateResult.SideEffects without failing the write.
//
// Generation is deterministic. Genres the user rated at or above
// domain.LikedThreshold select the candidate pool; when there are none, the
// genre of the user's highest rated movie is used. Candidates are ranked by
// average rating, then rating count, then movie id, and any shortfall is
// filled from the global top-rated list.
//
// The package depends only on the small store interfaces declared in
// store.go; internal/repository satisfies them against Postgres.
package recommend
