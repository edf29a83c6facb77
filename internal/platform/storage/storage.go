// Package storage persists a movie catalog as a flat JSON or CSV file.
//
// Writes go to a temporary file in the target directory which is then renamed
// over the target, so readers never observe a half-written catalog. A sibling
// "<path>.lock" file guards against concurrent writers in other processes.
package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog/log"

	"github.com/martinmanurung/cinecatalog/internal/domain/movies"
)

// Format selects the on-disk encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Ext returns the canonical file extension of the format.
func (f Format) Ext() string {
	return "." + string(f)
}

// FormatOf infers the format from a path. Anything that is not ".csv" is
// treated as JSON.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), FormatCSV.Ext()) {
		return FormatCSV
	}
	return FormatJSON
}

// CanonicalPath substitutes the canonical extension of f when path carries a
// different one.
func CanonicalPath(path string, f Format) string {
	ext := filepath.Ext(path)
	if strings.EqualFold(ext, f.Ext()) {
		return path
	}
	return strings.TrimSuffix(path, ext) + f.Ext()
}

// Load reads a catalog, choosing the format from the extension.
func Load(path string) (*movies.Catalog, error) {
	return LoadFormat(path, FormatOf(path))
}

// Save writes a catalog, choosing the format from the extension, and returns
// the path actually written.
func Save(cat *movies.Catalog, path string) (string, error) {
	return SaveFormat(cat, path, FormatOf(path))
}

// LoadFormat reads a catalog in the given format. A missing or zero-length file
// yields an empty catalog.
func LoadFormat(path string, f Format) (*movies.Catalog, error) {
	path = CanonicalPath(path, f)

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("path", path).Msg("catalog file missing, starting with an empty catalog")
		return movies.NewCatalog(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat catalog: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("catalog path %s is a directory", path)
	}
	if info.Size() == 0 {
		log.Warn().Str("path", path).Msg("catalog file empty, starting with an empty catalog")
		return movies.NewCatalog(), nil
	}

	lock := flock.New(path + ".lock")
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock catalog: %w", err)
	}
	defer lock.Unlock()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()

	var cat *movies.Catalog
	switch f {
	case FormatCSV:
		cat, err = DecodeCSV(file, path)
	default:
		cat, err = DecodeJSON(file, path)
	}
	if err != nil {
		return nil, err
	}

	log.Debug().Str("path", path).Int("movies", cat.Len()).Msg("catalog loaded")
	return cat, nil
}

// SaveFormat writes the catalog atomically in the given format and returns the
// path written, which carries the canonical extension.
func SaveFormat(cat *movies.Catalog, path string, f Format) (string, error) {
	path = CanonicalPath(path, f)

	err := writeAtomic(path, func(w io.Writer) error {
		if f == FormatCSV {
			return EncodeCSV(w, cat)
		}
		return EncodeJSON(w, cat)
	})
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to save catalog")
		return "", err
	}

	log.Info().Str("path", path).Int("movies", cat.Len()).Str("format", string(f)).Msg("catalog saved")
	return path, nil
}

func writeAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock catalog: %w", err)
	}
	defer lock.Unlock()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	buf := bufio.NewWriter(tmp)
	if err = write(buf); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err = buf.Flush(); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace catalog: %w", err)
	}
	return nil
}
