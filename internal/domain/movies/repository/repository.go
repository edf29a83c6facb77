package repository

import (
	"errors"
	"fmt"
	"sync"

	"github.com/martinmanurung/cinecatalog/internal/domain/movies"
	"github.com/martinmanurung/cinecatalog/internal/platform/storage"
	"github.com/rs/zerolog/log"
)

var ErrClosed = errors.New("catalog repository is closed")

// SaveFunc persists a catalog to path and returns the path written.
type SaveFunc func(cat *movies.Catalog, path string) (string, error)

// CatalogRepository owns the in-memory catalog and its backing file. Readers
// get immutable snapshots; writers are serialized and a mutation only becomes
// visible once it has been written to disk.
type CatalogRepository struct {
	path string
	save SaveFunc

	writeMu sync.Mutex
	mu      sync.RWMutex
	current *movies.Catalog
	closed  bool
}

// Option configures a CatalogRepository.
type Option func(*CatalogRepository)

// WithSaveFunc replaces the persistence function.
func WithSaveFunc(fn SaveFunc) Option {
	return func(r *CatalogRepository) {
		if fn != nil {
			r.save = fn
		}
	}
}

// Open loads the catalog at path. A missing or empty file yields an empty
// catalog; a corrupt one is an error.
func Open(path string, opts ...Option) (*CatalogRepository, error) {
	path = storage.CanonicalPath(path, storage.FormatOf(path))
	cat, err := storage.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	r := &CatalogRepository{
		path:    path,
		save:    storage.Save,
		current: cat,
	}
	for _, opt := range opts {
		opt(r)
	}

	log.Info().Str("path", path).Int("movies", cat.Len()).Msg("Catalog loaded")
	return r, nil
}

// Path is the file the catalog is persisted to.
func (r *CatalogRepository) Path() string {
	return r.path
}

// Snapshot returns the current catalog. Callers must not modify it.
func (r *CatalogRepository) Snapshot() *movies.Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Mutate applies fn to a copy of the catalog, persists the copy and publishes
// it. If fn or the write fails the visible catalog is unchanged.
func (r *CatalogRepository) Mutate(fn func(cat *movies.Catalog) error) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if r.isClosed() {
		return ErrClosed
	}

	next := r.Snapshot().Clone()
	if err := fn(next); err != nil {
		return err
	}
	return r.commit(next)
}

// Replace persists cat and publishes it in place of the current catalog.
func (r *CatalogRepository) Replace(cat *movies.Catalog) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if r.isClosed() {
		return ErrClosed
	}
	return r.commit(cat.Clone())
}

// Close writes the catalog a final time. Further mutations fail with ErrClosed.
func (r *CatalogRepository) Close() error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if r.isClosed() {
		return nil
	}

	r.mu.Lock()
	r.closed = true
	cat := r.current
	r.mu.Unlock()

	if _, err := r.save(cat, r.path); err != nil {
		return fmt.Errorf("flush catalog: %w", err)
	}
	log.Info().Str("path", r.path).Int("movies", cat.Len()).Msg("Catalog flushed")
	return nil
}

// commit runs under writeMu.
func (r *CatalogRepository) commit(next *movies.Catalog) error {
	if _, err := r.save(next, r.path); err != nil {
		return fmt.Errorf("persist catalog: %w", err)
	}

	r.mu.Lock()
	r.current = next
	r.mu.Unlock()
	return nil
}

func (r *CatalogRepository) isClosed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}
