package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/repository"
)

func BenchmarkSubmitRating(b *testing.B) {
	env := buildStack(b)

	movie := env.movie(b, "Benchmark Movie", "Action")
	for i := 0; i < 50; i++ {
		env.movie(b, fmt.Sprintf("Filler %d", i), "Action")
	}
	user, err := env.repo.Users.Create(context.Background(), repository.UserCreateParams{Username: "bench", Email: "bench@example.com", PasswordHash: "x"})
	if err != nil {
		b.Fatalf("create user: %v", err)
	}
	token, _, err := env.auth.IssueToken(user)
	if err != nil {
		b.Fatalf("issue token: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		body := map[string]any{"movieId": movie.ID, "rating": float64(i%11) / 2}
		rec := env.call(b, http.MethodPost, "/ratings", token, body)
		if rec.Code != http.StatusCreated && rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}

func BenchmarkRecommendations(b *testing.B) {
	env := buildStack(b)
	ctx := context.Background()

	user, err := env.repo.Users.Create(ctx, repository.UserCreateParams{Username: "bench", Email: "bench@example.com", PasswordHash: "x"})
	if err != nil {
		b.Fatalf("create user: %v", err)
	}
	genres := []string{"Action", "Drama", "Comedy", "Horror"}
	for i := 0; i < 200; i++ {
		m := env.movie(b, fmt.Sprintf("Movie %d", i), genres[i%len(genres)])
		if i%10 == 0 {
			if _, err := env.svc.Rate(ctx, user.ID, m.ID, 4.5); err != nil {
				b.Fatalf("seed rating: %v", err)
			}
		}
	}
	token, _, err := env.auth.IssueToken(user)
	if err != nil {
		b.Fatalf("issue token: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := env.call(b, http.MethodGet, "/recommendations?limit=20", token, nil)
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}
