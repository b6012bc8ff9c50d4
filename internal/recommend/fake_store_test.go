package recommend

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/domain"
	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/repository"
)

type ratingKey struct{ user, movie int64 }

// memStore is an in-memory stand-in for the Postgres repositories.
type memStore struct {
	mu      sync.Mutex
	calls   int
	movies  map[int64]domain.Movie
	ratings map[ratingKey]domain.Rating
	recs    map[int64][]domain.Recommendation
	users   map[int64]bool
	nextID  int64

	errUpsert   error
	errRefresh  error
	errReplace  error
	errHistory  error
	errTopRated error
	errRead     error
}

func newMemStore() *memStore {
	return &memStore{
		movies:  make(map[int64]domain.Movie),
		ratings: make(map[ratingKey]domain.Rating),
		recs:    make(map[int64][]domain.Recommendation),
		users:   make(map[int64]bool),
	}
}

func (m *memStore) addMovie(id int64, genre string, avg float64, count int64) domain.Movie {
	m.mu.Lock()
	defer m.mu.Unlock()
	movie := domain.Movie{ID: id, Title: "Movie", AvgRating: avg, RatingsCount: count, CreatedAt: time.Unix(0, 0)}
	if genre != "" {
		g := genre
		movie.Genre = &g
	}
	m.movies[id] = movie
	return movie
}

func (m *memStore) setRating(user, movie int64, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.ratings[ratingKey{user, movie}] = domain.Rating{ID: m.nextID, UserID: user, MovieID: movie, Value: value}
}

func (m *memStore) touch() {
	m.calls++
}

func (m *memStore) Get(_ context.Context, userID, movieID int64) (domain.Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch()
	rating, ok := m.ratings[ratingKey{userID, movieID}]
	if !ok {
		return domain.Rating{}, repository.ErrNotFound
	}
	return rating, nil
}

func (m *memStore) Upsert(_ context.Context, params repository.RatingUpsertParams) (domain.Rating, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch()
	if err := domain.ValidateRatingValue(params.Value); err != nil {
		return domain.Rating{}, false, err
	}
	if m.errUpsert != nil {
		return domain.Rating{}, false, m.errUpsert
	}
	if _, ok := m.movies[params.MovieID]; !ok {
		return domain.Rating{}, false, repository.ErrNotFound
	}
	key := ratingKey{params.UserID, params.MovieID}
	existing, found := m.ratings[key]
	if !found {
		m.nextID++
		existing = domain.Rating{ID: m.nextID, UserID: params.UserID, MovieID: params.MovieID}
	}
	existing.Value = params.Value
	m.ratings[key] = existing
	return existing, !found, nil
}

func (m *memStore) RatedMovieIDs(_ context.Context, userID int64) (map[int64]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch()
	out := make(map[int64]struct{})
	for key := range m.ratings {
		if key.user == userID {
			out[key.movie] = struct{}{}
		}
	}
	return out, nil
}

func (m *memStore) History(_ context.Context, userID int64) ([]domain.RatedMovie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch()
	if m.errHistory != nil {
		return nil, m.errHistory
	}
	out := make([]domain.RatedMovie, 0)
	for key, rating := range m.ratings {
		if key.user != userID {
			continue
		}
		out = append(out, domain.RatedMovie{MovieID: key.movie, Genre: m.movies[key.movie].Genre, Value: rating.Value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MovieID < out[j].MovieID })
	return out, nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (domain.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch()
	movie, ok := m.movies[id]
	if !ok {
		return domain.Movie{}, repository.ErrNotFound
	}
	return movie, nil
}

func (m *memStore) ListGenres(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch()
	set := make(map[string]struct{})
	for _, movie := range m.movies {
		if movie.Genre != nil {
			set[*movie.Genre] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for g := range set {
		out = append(out, g)
	}
	sort.Strings(out)
	return out, nil
}

func (m *memStore) sortedMovies(keep func(domain.Movie) bool) []domain.Movie {
	out := make([]domain.Movie, 0)
	for _, movie := range m.movies {
		if keep(movie) {
			out = append(out, movie)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgRating != out[j].AvgRating {
			return out[i].AvgRating > out[j].AvgRating
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *memStore) ListByGenre(_ context.Context, genre *string) ([]domain.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch()
	return m.sortedMovies(func(movie domain.Movie) bool {
		return genre == nil || (movie.Genre != nil && *movie.Genre == *genre)
	}), nil
}

func (m *memStore) TopRated(_ context.Context, exclude []int64, limit int) ([]domain.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch()
	if m.errTopRated != nil {
		return nil, m.errTopRated
	}
	skip := make(map[int64]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	out := m.sortedMovies(func(movie domain.Movie) bool {
		_, excluded := skip[movie.ID]
		return !excluded
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) StoredAggregate(_ context.Context, movieID int64) (domain.RatingAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch()
	movie, ok := m.movies[movieID]
	if !ok {
		return domain.RatingAggregate{}, repository.ErrNotFound
	}
	return domain.RatingAggregate{Average: movie.AvgRating, Count: movie.RatingsCount}, nil
}

func (m *memStore) RefreshAggregate(_ context.Context, movieID int64) (domain.RatingAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch()
	if m.errRefresh != nil {
		return domain.RatingAggregate{}, m.errRefresh
	}
	movie, ok := m.movies[movieID]
	if !ok {
		return domain.RatingAggregate{}, repository.ErrNotFound
	}
	var sum float64
	var count int64
	for key, rating := range m.ratings {
		if key.movie == movieID {
			sum += rating.Value
			count++
		}
	}
	agg := domain.RatingAggregate{Count: count}
	if count > 0 {
		agg.Average = domain.RoundAverage(sum / float64(count))
	}
	movie.AvgRating, movie.RatingsCount = agg.Average, agg.Count
	m.movies[movieID] = movie
	return agg, nil
}

func (m *memStore) ReplaceForUser(_ context.Context, userID int64, recs []domain.Recommendation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch()
	if m.errReplace != nil {
		return m.errReplace
	}
	m.recs[userID] = append([]domain.Recommendation(nil), recs...)
	return nil
}

func (m *memStore) ReadForUser(_ context.Context, userID int64) ([]domain.RecommendedMovie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch()
	if m.errRead != nil {
		return nil, m.errRead
	}
	out := make([]domain.RecommendedMovie, 0)
	for _, rec := range m.recs[userID] {
		out = append(out, domain.RecommendedMovie{Movie: m.movies[rec.MovieID], Reason: rec.Reason})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Movie.AvgRating != out[j].Movie.AvgRating {
			return out[i].Movie.AvgRating > out[j].Movie.AvgRating
		}
		return out[i].Movie.ID < out[j].Movie.ID
	})
	return out, nil
}

func (m *memStore) Exists(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch()
	return m.users[id], nil
}

type recordingCache struct {
	mu      sync.Mutex
	entries map[int64]domain.Movie
	// beforeSet runs ahead of every Set, outside the lock.
	beforeSet func()
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: make(map[int64]domain.Movie)}
}

func (c *recordingCache) Get(_ context.Context, id int64) (domain.Movie, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	movie, ok := c.entries[id]
	return movie, ok
}

func (c *recordingCache) Set(_ context.Context, movie domain.Movie) {
	if c.beforeSet != nil {
		c.beforeSet()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[movie.ID] = movie
}

func movieIDs(items []domain.RecommendedMovie) []int64 {
	out := make([]int64, 0, len(items))
	for _, item := range items {
		out = append(out, item.Movie.ID)
	}
	return out
}
