package movies

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// RequiredFields must be present in every loosely typed movie record.
var RequiredFields = []string{"id", "title", "year"}

// MissingFieldsError reports required keys absent from a record.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing fields: " + strings.Join(e.Fields, ", ")
}

// FromRecord builds a movie from a decoded JSON object. Numeric fields are
// coerced (a year sent as "1999" is accepted), genres and tags default to empty
// and rating defaults to zero.
func FromRecord(rec map[string]interface{}) (Movie, error) {
	var missing []string
	for _, key := range RequiredFields {
		if v, ok := rec[key]; !ok || v == nil {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Movie{}, &MissingFieldsError{Fields: missing}
	}

	id, err := cast.ToInt64E(rec["id"])
	if err != nil {
		return Movie{}, fmt.Errorf("invalid id: %w", err)
	}
	title, err := cast.ToStringE(rec["title"])
	if err != nil {
		return Movie{}, fmt.Errorf("invalid title: %w", err)
	}
	year, err := cast.ToIntE(rec["year"])
	if err != nil {
		return Movie{}, fmt.Errorf("invalid year: %w", err)
	}

	m, err := NewMovie(id, title, year)
	if err != nil {
		return Movie{}, err
	}

	if v := rec["genres"]; v != nil {
		if m.Genres, err = cast.ToStringSliceE(v); err != nil {
			return Movie{}, fmt.Errorf("invalid genres: %w", err)
		}
	}
	if v := rec["tags"]; v != nil {
		if m.Tags, err = cast.ToStringSliceE(v); err != nil {
			return Movie{}, fmt.Errorf("invalid tags: %w", err)
		}
	}
	if v := rec["rating"]; v != nil {
		if m.Rating, err = cast.ToFloat64E(v); err != nil {
			return Movie{}, fmt.Errorf("invalid rating: %w", err)
		}
	}
	if v := rec["runtime"]; v != nil {
		runtime, err := cast.ToIntE(v)
		if err != nil {
			return Movie{}, fmt.Errorf("invalid runtime: %w", err)
		}
		m.Runtime = &runtime
	}
	m.IMDbID = optionalString(rec, "imdb_id")
	m.Poster = optionalString(rec, "poster")
	m.Plot = optionalString(rec, "plot")

	m.Genres = nonNil(m.Genres)
	m.Tags = nonNil(m.Tags)
	return *m, nil
}

func optionalString(rec map[string]interface{}, key string) *string {
	v, ok := rec[key]
	if !ok || v == nil {
		return nil
	}
	s := cast.ToString(v)
	return &s
}

// CatalogFromRecords builds a catalog from decoded JSON objects, failing on the
// first invalid entry.
func CatalogFromRecords(records []map[string]interface{}) (*Catalog, error) {
	cat := NewCatalog()
	for i, rec := range records {
		m, err := FromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		cat.Add(m)
	}
	return cat, nil
}
