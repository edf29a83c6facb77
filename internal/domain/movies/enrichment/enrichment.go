// Package enrichment fans catalog keys out to the metadata service under a
// bounded admission gate and merges the results back by key.
package enrichment

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/martinmanurung/cinecatalog/internal/domain/movies"
	"github.com/martinmanurung/cinecatalog/internal/platform/omdb"
)

const (
	DefaultConcurrency    = 5
	DefaultMaxConcurrency = 20
)

// Result is the settled outcome of one outbound call.
type Result[T any] struct {
	Key   string
	Value T
	Err   error
}

// Fetch calls fn once per key with at most limit calls in flight. It returns
// after every call has settled; results are in key order and a failed call
// never cancels its siblings.
func Fetch[T any](ctx context.Context, keys []string, limit int, fn func(context.Context, string) (T, error)) []Result[T] {
	if limit < 1 {
		limit = 1
	}
	results := make([]Result[T], len(keys))
	p := pool.New().WithMaxGoroutines(limit)
	for i, key := range keys {
		p.Go(func() {
			v, err := fn(ctx, key)
			results[i] = Result[T]{Key: key, Value: v, Err: err}
		})
	}
	p.Wait()
	return results
}

type Enricher struct {
	source         omdb.Lookup
	defaultLimit   int
	maxConcurrency int
}

func New(source omdb.Lookup, defaultConcurrency, maxConcurrency int) *Enricher {
	if defaultConcurrency < 1 {
		defaultConcurrency = DefaultConcurrency
	}
	if maxConcurrency < 1 {
		maxConcurrency = DefaultMaxConcurrency
	}
	if defaultConcurrency > maxConcurrency {
		defaultConcurrency = maxConcurrency
	}
	return &Enricher{
		source:         source,
		defaultLimit:   defaultConcurrency,
		maxConcurrency: maxConcurrency,
	}
}

// Concurrency maps a caller-requested bound onto the configured range. Values
// below one select the default.
func (e *Enricher) Concurrency(requested int) int {
	switch {
	case requested < 1:
		return e.defaultLimit
	case requested > e.maxConcurrency:
		return e.maxConcurrency
	default:
		return requested
	}
}

// ResolveIDs maps titles to IMDb ids. Titles whose lookup failed are absent
// from the result.
func (e *Enricher) ResolveIDs(ctx context.Context, titles []string, concurrency int) map[string]string {
	keys := uniqueKeys(titles)
	limit := e.Concurrency(concurrency)
	log.Info().Int("titles", len(keys)).Int("concurrency", limit).Msg("Resolving IMDb ids")

	ids := make(map[string]string, len(keys))
	for _, r := range Fetch(ctx, keys, limit, e.source.LookupID) {
		if r.Err != nil {
			log.Warn().Err(r.Err).Str("title", r.Key).Msg("IMDb id lookup failed")
			continue
		}
		ids[r.Key] = r.Value
	}
	return ids
}

// FetchMetadata fetches title records for IMDb ids. Ids whose lookup failed
// are absent from the result.
func (e *Enricher) FetchMetadata(ctx context.Context, imdbIDs []string, concurrency int) map[string]*omdb.Title {
	keys := uniqueKeys(imdbIDs)
	limit := e.Concurrency(concurrency)
	log.Info().Int("ids", len(keys)).Int("concurrency", limit).Msg("Fetching metadata")

	meta := make(map[string]*omdb.Title, len(keys))
	for _, r := range Fetch(ctx, keys, limit, e.source.Metadata) {
		if r.Err != nil {
			log.Warn().Err(r.Err).Str("imdb_id", r.Key).Msg("Metadata lookup failed")
			continue
		}
		if r.Value != nil {
			meta[r.Key] = r.Value
		}
	}
	return meta
}

// MergeIDs sets imdb_id on every movie whose title resolved and returns the
// number of movies updated.
func MergeIDs(cat *movies.Catalog, ids map[string]string) int {
	updated := 0
	for i := range cat.Movies {
		id, ok := ids[cat.Movies[i].Title]
		if !ok || id == "" {
			continue
		}
		cat.Movies[i].IMDbID = &id
		updated++
	}
	return updated
}

// MergeMetadata copies poster, plot and runtime onto every movie whose id has
// a record and returns the number of movies updated.
func MergeMetadata(cat *movies.Catalog, meta map[string]*omdb.Title) int {
	updated := 0
	for i := range cat.Movies {
		m := &cat.Movies[i]
		if m.IMDbID == nil {
			continue
		}
		t, ok := meta[*m.IMDbID]
		if !ok {
			continue
		}
		m.Poster = optional(t.PosterURL())
		m.Plot = optional(t.Summary())
		m.Runtime = movies.ParseRuntime(t.Runtime)
		updated++
	}
	return updated
}

// IMDbIDs returns the ids of movies that have one.
func IMDbIDs(cat *movies.Catalog) []string {
	var ids []string
	for _, m := range cat.Movies {
		if m.IMDbID != nil && strings.TrimSpace(*m.IMDbID) != "" {
			ids = append(ids, *m.IMDbID)
		}
	}
	return ids
}

func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.TrimSpace(k) == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
