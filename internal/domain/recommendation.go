package domain

// ReasonFallback tags entries chosen by global popularity.
const ReasonFallback = "Top rated fallback"

// Recommendation is a persisted (user, movie, reason) row. It is derived data
// and always reconstructible from ratings and movies.
type Recommendation struct {
	UserID  int64
	MovieID int64
	Reason  string
}

// RecommendedMovie pairs a movie with the explanation for recommending it.
type RecommendedMovie struct {
	Movie  Movie
	Reason string
}

// LikedGenreReason builds the explanation for a personalized pick.
func LikedGenreReason(genre string) string {
	return "Because you liked " + genre
}
