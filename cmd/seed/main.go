// Command seed loads a movie catalog from a JSON file into the database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/domain"
	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/logging"
	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/repository"
	"github.com/PES2UG24CS801/Movie-recommedation-DBMS/internal/store"
)

type catalogEntry struct {
	Title       string  `json:"title"`
	Genre       *string `json:"genre"`
	ReleaseYear *int    `json:"releaseYear"`
	PosterPath  *string `json:"posterPath"`
}

type movieCreator interface {
	Create(ctx context.Context, params repository.MovieCreateParams) (domain.Movie, error)
}

func main() {
	var (
		data     = flag.String("data", "db/seed/movies.json", "path to catalog file")
		dbURL    = flag.String("db", os.Getenv("DB_URL"), "postgres connection string")
		logLevel = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	logger := logging.New(logging.Config{Level: *logLevel, Format: "console"})

	if *dbURL == "" {
		logger.Fatal().Msg("a database url is required (-db or DB_URL)")
	}

	file, err := os.Open(*data)
	if err != nil {
		logger.Fatal().Err(err).Msg("open catalog")
	}
	defer file.Close()

	params, err := loadCatalog(file)
	if err != nil {
		logger.Fatal().Err(err).Str("file", *data).Msg("parse catalog")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.New(ctx, *dbURL, store.Options{ConnTimeout: 10 * time.Second, Logger: logger})
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer st.Close()

	repo := repository.New(st)
	created, err := seedCatalog(ctx, repo.Movies, params, logger)
	if err != nil {
		logger.Error().Err(err).Int("created", created).Msg("seed aborted")
		st.Close()
		os.Exit(1)
	}
	logger.Info().Int("created", created).Msg("catalog seeded")
}

// loadCatalog decodes a JSON array of movies and rejects entries without a title.
func loadCatalog(r io.Reader) ([]repository.MovieCreateParams, error) {
	var entries []catalogEntry
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	params := make([]repository.MovieCreateParams, 0, len(entries))
	for i, entry := range entries {
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			return nil, fmt.Errorf("entry %d: title is required", i)
		}
		var genre *string
		if entry.Genre != nil {
			if g := strings.TrimSpace(*entry.Genre); g != "" {
				genre = &g
			}
		}
		params = append(params, repository.MovieCreateParams{
			Title:       title,
			Genre:       genre,
			ReleaseYear: entry.ReleaseYear,
			PosterPath:  entry.PosterPath,
		})
	}
	return params, nil
}

func seedCatalog(ctx context.Context, movies movieCreator, params []repository.MovieCreateParams, logger zerolog.Logger) (int, error) {
	created := 0
	for _, p := range params {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		movie, err := movies.Create(ctx, p)
		if err != nil {
			return created, errors.Join(fmt.Errorf("create %q", p.Title), err)
		}
		created++
		logger.Debug().Int64("movie_id", movie.ID).Str("title", movie.Title).Msg("movie created")
	}
	return created, nil
}
