package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/martinmanurung/cinecatalog/internal/domain/movies"
	"github.com/martinmanurung/cinecatalog/pkg/middleware"
	"github.com/martinmanurung/cinecatalog/pkg/response"
	"github.com/rs/zerolog"
)

type MovieUsecase interface {
	ListMovies(ctx context.Context, title string) ([]movies.Movie, error)
	GetMovie(ctx context.Context, id int64) (*movies.Movie, error)
	AddMovie(ctx context.Context, req movies.AddMovieRequest) (*movies.Movie, error)
	UpdateMovie(ctx context.Context, id int64, body map[string]json.RawMessage) (*movies.Movie, error)
	DeleteMovie(ctx context.Context, id int64) error
	ImportJSON(ctx context.Context, req movies.ImportJSONRequest) (int, error)
	ImportCSV(ctx context.Context, r io.Reader, filename string) (int, error)
	ExportJSON(ctx context.Context) ([]movies.Movie, error)
	ExportCSV(ctx context.Context) (string, func(), error)
	Stats(ctx context.Context) movies.StatsResponse
	EnrichIDs(ctx context.Context, concurrency int) (int, error)
	EnrichMetadata(ctx context.Context, concurrency int) (int, error)
	FullEnrich(ctx context.Context, concurrency int) (int, int, error)
}

// Uploads larger than this are rejected.
const maxUploadSize = 32 << 20

type MovieHandler struct {
	ctx     context.Context
	usecase MovieUsecase
}

func NewMovieHandler(ctx context.Context, usecase MovieUsecase) *MovieHandler {
	return &MovieHandler{
		ctx:     ctx,
		usecase: usecase,
	}
}

// ListMovies returns the catalog in insertion order
// GET /movies?title=matrix
func (h *MovieHandler) ListMovies(c echo.Context) error {
	ctx := h.ctx

	list, err := h.usecase.ListMovies(ctx, c.QueryParam("title"))
	if err != nil {
		return fail(c, middleware.GetLogger(c), err, "Failed to list movies")
	}

	return c.JSON(http.StatusOK, movies.MovieListResponse{Movies: list})
}

// GetMovie returns a single movie
// GET /movies/:id
func (h *MovieHandler) GetMovie(c echo.Context) error {
	ctx := h.ctx

	id, ok := movieID(c)
	if !ok {
		return response.Error(c, http.StatusNotFound, "Movie not found", nil)
	}

	movie, err := h.usecase.GetMovie(ctx, id)
	if err != nil {
		return fail(c, middleware.GetLogger(c), err, "Failed to get movie")
	}

	return c.JSON(http.StatusOK, movies.MovieResponse{Movie: *movie})
}

// AddMovie appends a movie to the catalog
// POST /movies
func (h *MovieHandler) AddMovie(c echo.Context) error {
	logger := middleware.GetLogger(c)
	ctx := h.ctx

	var req movies.AddMovieRequest
	if err := c.Bind(&req); err != nil {
		logger.Warn().Err(err).Msg("Failed to bind request")
		return response.Error(c, http.StatusBadRequest, "Invalid JSON body", nil)
	}

	if err := c.Validate(&req); err != nil {
		logger.Warn().Err(err).Msg("Validation failed")
		return fail(c, logger, err, "Validation failed")
	}

	movie, err := h.usecase.AddMovie(ctx, req)
	if err != nil {
		return fail(c, logger, err, "Failed to add movie")
	}

	return c.JSON(http.StatusCreated, movies.MovieResponse{Movie: *movie})
}

// UpdateMovie applies a partial update
// PUT /movies/:id
func (h *MovieHandler) UpdateMovie(c echo.Context) error {
	logger := middleware.GetLogger(c)
	ctx := h.ctx

	id, ok := movieID(c)
	if !ok {
		return response.Error(c, http.StatusNotFound, "Movie not found", nil)
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		logger.Warn().Err(err).Msg("Failed to decode update body")
		return response.Error(c, http.StatusBadRequest, "Invalid JSON body", nil)
	}

	movie, err := h.usecase.UpdateMovie(ctx, id, body)
	if err != nil {
		return fail(c, logger, err, "Failed to update movie")
	}

	return c.JSON(http.StatusOK, movies.MovieResponse{Movie: *movie})
}

// DeleteMovie removes a movie
// DELETE /movies/:id
func (h *MovieHandler) DeleteMovie(c echo.Context) error {
	ctx := h.ctx

	id, ok := movieID(c)
	if !ok {
		return response.Error(c, http.StatusNotFound, "Movie not found", nil)
	}

	if err := h.usecase.DeleteMovie(ctx, id); err != nil {
		return fail(c, middleware.GetLogger(c), err, "Failed to delete movie")
	}

	return c.NoContent(http.StatusNoContent)
}

// ImportJSON replaces the catalog with the posted list
// POST /movies/import/json
func (h *MovieHandler) ImportJSON(c echo.Context) error {
	logger := middleware.GetLogger(c)
	ctx := h.ctx

	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()

	var req movies.ImportJSONRequest
	if err := dec.Decode(&req); err != nil {
		logger.Warn().Err(err).Msg("Failed to decode import body")
		return response.Error(c, http.StatusBadRequest, "Invalid JSON body", nil)
	}

	count, err := h.usecase.ImportJSON(ctx, req)
	if err != nil {
		return fail(c, logger, err, "Failed to import movies")
	}

	return c.JSON(http.StatusCreated, movies.ImportResponse{Message: "Movies imported", Count: count})
}

// ExportJSON returns the whole catalog
// GET /movies/export/json
func (h *MovieHandler) ExportJSON(c echo.Context) error {
	ctx := h.ctx

	list, err := h.usecase.ExportJSON(ctx)
	if err != nil {
		return fail(c, middleware.GetLogger(c), err, "Failed to export movies")
	}

	return c.JSON(http.StatusOK, movies.MovieListResponse{Movies: list})
}

// ImportCSV replaces the catalog with an uploaded CSV file (form field "file")
// POST /movies/import/csv
func (h *MovieHandler) ImportCSV(c echo.Context) error {
	logger := middleware.GetLogger(c)
	ctx := h.ctx

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, http.StatusBadRequest, "No file uploaded", nil)
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".csv") {
		return response.Error(c, http.StatusBadRequest, "File must be a CSV", nil)
	}
	if fileHeader.Size == 0 {
		return response.Error(c, http.StatusBadRequest, "Uploaded file is empty", nil)
	}
	if fileHeader.Size > maxUploadSize {
		return response.Error(c, http.StatusBadRequest, "File too large", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open uploaded file")
		return response.Error(c, http.StatusBadRequest, "Unable to read uploaded file", nil)
	}
	defer file.Close()

	count, err := h.usecase.ImportCSV(ctx, file, fileHeader.Filename)
	if err != nil {
		return fail(c, logger, err, "Failed to import CSV")
	}

	return c.JSON(http.StatusCreated, movies.ImportResponse{Message: "Movies imported", Count: count})
}

// ExportCSV streams the catalog as a CSV attachment
// GET /movies/export/csv
func (h *MovieHandler) ExportCSV(c echo.Context) error {
	ctx := h.ctx

	path, cleanup, err := h.usecase.ExportCSV(ctx)
	if err != nil {
		return fail(c, middleware.GetLogger(c), err, "Failed to export CSV")
	}
	defer cleanup()

	return c.Attachment(path, "movies.csv")
}

// Stats summarises genres and tags
// GET /movies/stats
func (h *MovieHandler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.usecase.Stats(h.ctx))
}

// EnrichIDs resolves IMDb ids for every title
// POST /movies/enrich/ids
func (h *MovieHandler) EnrichIDs(c echo.Context) error {
	logger := middleware.GetLogger(c)
	ctx := h.ctx

	req, err := bindEnrich(c)
	if err != nil {
		return err
	}

	updated, err := h.usecase.EnrichIDs(ctx, req.MaxConcurrency)
	if err != nil {
		return fail(c, logger, err, "Failed to enrich ids")
	}

	return c.JSON(http.StatusOK, movies.EnrichIDsResponse{Message: "IMDb ids enriched", Updated: updated})
}

// EnrichMetadata fetches poster, plot and runtime for movies with an IMDb id
// POST /movies/enrich/metadata
func (h *MovieHandler) EnrichMetadata(c echo.Context) error {
	logger := middleware.GetLogger(c)
	ctx := h.ctx

	req, err := bindEnrich(c)
	if err != nil {
		return err
	}

	enriched, err := h.usecase.EnrichMetadata(ctx, req.MaxConcurrency)
	if err != nil {
		return fail(c, logger, err, "Failed to enrich metadata")
	}

	return c.JSON(http.StatusOK, movies.EnrichMetadataResponse{Message: "Metadata enriched", Enriched: enriched})
}

// Enrich runs id resolution followed by metadata enrichment
// POST /movies/enrich
func (h *MovieHandler) Enrich(c echo.Context) error {
	logger := middleware.GetLogger(c)
	ctx := h.ctx

	req, err := bindEnrich(c)
	if err != nil {
		return err
	}

	updated, enriched, err := h.usecase.FullEnrich(ctx, req.MaxConcurrency)
	if err != nil {
		return fail(c, logger, err, "Failed to enrich catalog")
	}

	return c.JSON(http.StatusOK, movies.FullEnrichResponse{
		Message:  "Catalog enriched",
		Updated:  updated,
		Enriched: enriched,
	})
}

// bindEnrich reads the optional body; an empty body selects the defaults.
func bindEnrich(c echo.Context) (movies.EnrichRequest, error) {
	var req movies.EnrichRequest
	if err := c.Bind(&req); err != nil {
		return req, response.Validation("Invalid JSON body", nil)
	}
	return req, nil
}

func movieID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil
}

// fail renders err, which is normally an *response.APIError from the use case.
func fail(c echo.Context, logger *zerolog.Logger, err error, msg string) error {
	var apiErr *response.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code >= http.StatusInternalServerError {
			logger.Error().Err(errors.Unwrap(apiErr)).Msg(msg)
		} else {
			logger.Warn().Str("reason", apiErr.Message).Msg(msg)
		}
		return response.Error(c, apiErr.Code, apiErr.Message, apiErr.Details)
	}
	logger.Error().Err(err).Msg(msg)
	return response.Error(c, http.StatusInternalServerError, "Internal Server Error", nil)
}
