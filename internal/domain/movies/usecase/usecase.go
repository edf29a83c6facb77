package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/martinmanurung/cinecatalog/internal/domain/movies"
	"github.com/martinmanurung/cinecatalog/internal/domain/movies/enrichment"
	"github.com/martinmanurung/cinecatalog/internal/platform/omdb"
	"github.com/martinmanurung/cinecatalog/internal/platform/storage"
	"github.com/martinmanurung/cinecatalog/pkg/response"
	"github.com/rs/zerolog/log"
)

type CatalogRepository interface {
	Snapshot() *movies.Catalog
	Mutate(fn func(cat *movies.Catalog) error) error
	Replace(cat *movies.Catalog) error
}

//go:generate mockgen -destination=mock/enricher.go -package=mock . Enricher

type Enricher interface {
	ResolveIDs(ctx context.Context, titles []string, concurrency int) map[string]string
	FetchMetadata(ctx context.Context, imdbIDs []string, concurrency int) map[string]*omdb.Title
}

type MovieUsecase struct {
	repo     CatalogRepository
	enricher Enricher
}

// NewMovieUsecase wires the catalog service. enricher may be nil when no
// metadata API key is configured; enrichment calls then fail with 503.
func NewMovieUsecase(repo CatalogRepository, enricher Enricher) *MovieUsecase {
	return &MovieUsecase{
		repo:     repo,
		enricher: enricher,
	}
}

// ListMovies returns the catalog in insertion order, optionally filtered by a
// case-insensitive title substring.
func (u *MovieUsecase) ListMovies(ctx context.Context, title string) ([]movies.Movie, error) {
	cat := u.repo.Snapshot()
	if strings.TrimSpace(title) != "" {
		found := cat.FindByTitle(title)
		if found == nil {
			found = []movies.Movie{}
		}
		return found, nil
	}
	return cloneList(cat.Movies), nil
}

func (u *MovieUsecase) GetMovie(ctx context.Context, id int64) (*movies.Movie, error) {
	m := u.repo.Snapshot().FindByID(id)
	if m == nil {
		return nil, response.NotFound("Movie not found")
	}
	clone := m.Clone()
	return &clone, nil
}

func (u *MovieUsecase) AddMovie(ctx context.Context, req movies.AddMovieRequest) (*movies.Movie, error) {
	var missing []string
	if req.ID == nil {
		missing = append(missing, "id")
	}
	if req.Title == nil {
		missing = append(missing, "title")
	}
	if req.Year == nil {
		missing = append(missing, "year")
	}
	if len(missing) > 0 {
		return nil, response.Validation("Missing required fields: "+strings.Join(missing, ", "), missing)
	}

	movie, err := movies.NewMovie(*req.ID, *req.Title, *req.Year)
	if err != nil {
		return nil, response.Validation(err.Error(), nil)
	}
	if req.Genres != nil {
		movie.Genres = append([]string{}, req.Genres...)
	}
	if req.Tags != nil {
		movie.Tags = append([]string{}, req.Tags...)
	}
	if req.Rating != nil {
		movie.Rating = *req.Rating
	}
	movie.IMDbID = req.IMDbID
	movie.Poster = req.Poster
	movie.Plot = req.Plot
	movie.Runtime = req.Runtime

	err = u.repo.Mutate(func(cat *movies.Catalog) error {
		if cat.FindByID(movie.ID) != nil {
			return response.Validation(fmt.Sprintf("Movie with id %d already exists", movie.ID), nil)
		}
		cat.Add(*movie)
		return nil
	})
	if err != nil {
		return nil, mutationError(err)
	}

	log.Info().Int64("movie_id", movie.ID).Str("title", movie.Title).Msg("Movie added")
	return movie, nil
}

// UpdateMovie applies an allow-listed partial update. Either every field in
// body is applied or none is.
func (u *MovieUsecase) UpdateMovie(ctx context.Context, id int64, body map[string]json.RawMessage) (*movies.Movie, error) {
	var updated movies.Movie
	err := u.repo.Mutate(func(cat *movies.Catalog) error {
		current := cat.FindByID(id)
		if current == nil {
			return response.NotFound("Movie not found")
		}

		updates, err := movies.ParseUpdate(body)
		if err != nil {
			var notAllowed *movies.FieldNotAllowedError
			if errors.As(err, &notAllowed) {
				return response.Validation(fmt.Sprintf("Field '%s' cannot be updated", notAllowed.Field), []string{notAllowed.Field})
			}
			return response.Validation("Empty payload", nil)
		}

		next, err := movies.ApplyUpdates(*current, updates)
		if err != nil {
			return response.Validation(err.Error(), nil)
		}
		*current = next
		updated = next.Clone()
		return nil
	})
	if err != nil {
		return nil, mutationError(err)
	}

	log.Info().Int64("movie_id", id).Int("fields", len(body)).Msg("Movie updated")
	return &updated, nil
}

func (u *MovieUsecase) DeleteMovie(ctx context.Context, id int64) error {
	err := u.repo.Mutate(func(cat *movies.Catalog) error {
		if !cat.Remove(id) {
			return response.NotFound("Movie not found")
		}
		return nil
	})
	if err != nil {
		return mutationError(err)
	}

	log.Info().Int64("movie_id", id).Msg("Movie deleted")
	return nil
}

// ImportJSON replaces the whole catalog with the uploaded list.
func (u *MovieUsecase) ImportJSON(ctx context.Context, req movies.ImportJSONRequest) (int, error) {
	if req.Movies == nil {
		return 0, response.Validation("Payload must contain a 'movies' list", nil)
	}

	cat, err := movies.CatalogFromRecords(req.Movies)
	if err != nil {
		return 0, response.Validation(err.Error(), nil)
	}
	return u.replace(cat, "json")
}

// ImportCSV replaces the whole catalog with the uploaded CSV file.
func (u *MovieUsecase) ImportCSV(ctx context.Context, r io.Reader, filename string) (int, error) {
	cat, err := storage.DecodeCSV(r, filename)
	if err != nil {
		var fe *storage.FormatError
		if errors.As(err, &fe) && len(fe.Missing) > 0 {
			return 0, response.Validation("CSV missing columns: "+strings.Join(fe.Missing, ", "), fe.Missing)
		}
		return 0, response.Validation(err.Error(), nil)
	}
	return u.replace(cat, "csv")
}

func (u *MovieUsecase) replace(cat *movies.Catalog, source string) (int, error) {
	if dups := cat.DuplicateIDs(); len(dups) > 0 {
		return 0, response.Validation(fmt.Sprintf("Duplicate movie ids: %v", dups), dups)
	}
	if err := u.repo.Replace(cat); err != nil {
		return 0, response.InternalServerError(err)
	}

	log.Info().Str("source", source).Int("movies", cat.Len()).Msg("Catalog imported")
	return cat.Len(), nil
}

func (u *MovieUsecase) ExportJSON(ctx context.Context) ([]movies.Movie, error) {
	return cloneList(u.repo.Snapshot().Movies), nil
}

// ExportCSV writes the catalog to a temporary CSV file. The caller must call
// cleanup once the file has been served.
func (u *MovieUsecase) ExportCSV(ctx context.Context) (path string, cleanup func(), err error) {
	dir, err := os.MkdirTemp("", "catalog-export-")
	if err != nil {
		return "", nil, response.InternalServerError(err)
	}
	cleanup = func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("Failed to remove export directory")
		}
	}

	path, err = storage.SaveFormat(u.repo.Snapshot(), filepath.Join(dir, "movies.csv"), storage.FormatCSV)
	if err != nil {
		cleanup()
		return "", nil, response.InternalServerError(err)
	}
	return path, cleanup, nil
}

func (u *MovieUsecase) Stats(ctx context.Context) movies.StatsResponse {
	cat := u.repo.Snapshot()
	return movies.StatsResponse{
		Genres: cat.GenreIndex(),
		Tags:   cat.TagCounts(),
	}
}

// EnrichIDs resolves IMDb ids for every title and returns how many movies
// received one. The catalog lock is not held while requests are in flight.
func (u *MovieUsecase) EnrichIDs(ctx context.Context, concurrency int) (int, error) {
	if u.enricher == nil {
		return 0, errEnrichmentDisabled
	}

	ids := u.enricher.ResolveIDs(ctx, u.repo.Snapshot().Titles(), concurrency)
	if len(ids) == 0 {
		return 0, nil
	}

	var updated int
	err := u.repo.Mutate(func(cat *movies.Catalog) error {
		updated = enrichment.MergeIDs(cat, ids)
		return nil
	})
	if err != nil {
		return 0, mutationError(err)
	}

	log.Info().Int("updated", updated).Msg("IMDb ids enriched")
	return updated, nil
}

// EnrichMetadata fetches poster, plot and runtime for every movie with an
// IMDb id and returns how many movies were enriched.
func (u *MovieUsecase) EnrichMetadata(ctx context.Context, concurrency int) (int, error) {
	if u.enricher == nil {
		return 0, errEnrichmentDisabled
	}

	meta := u.enricher.FetchMetadata(ctx, enrichment.IMDbIDs(u.repo.Snapshot()), concurrency)
	if len(meta) == 0 {
		return 0, nil
	}

	var enriched int
	err := u.repo.Mutate(func(cat *movies.Catalog) error {
		enriched = enrichment.MergeMetadata(cat, meta)
		return nil
	})
	if err != nil {
		return 0, mutationError(err)
	}

	log.Info().Int("enriched", enriched).Msg("Metadata enriched")
	return enriched, nil
}

// FullEnrich resolves ids and then fetches metadata.
func (u *MovieUsecase) FullEnrich(ctx context.Context, concurrency int) (updated, enriched int, err error) {
	if updated, err = u.EnrichIDs(ctx, concurrency); err != nil {
		return 0, 0, err
	}
	if enriched, err = u.EnrichMetadata(ctx, concurrency); err != nil {
		return updated, 0, err
	}
	return updated, enriched, nil
}

var errEnrichmentDisabled = response.NewError(http.StatusServiceUnavailable, "Enrichment is not configured", nil)

// mutationError passes API errors raised inside a mutation through and turns
// anything else, a failed write, into a 500.
func mutationError(err error) error {
	var apiErr *response.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return response.InternalServerError(err)
}

func cloneList(list []movies.Movie) []movies.Movie {
	out := make([]movies.Movie, len(list))
	for i, m := range list {
		out[i] = m.Clone()
	}
	return out
}
