package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/martinmanurung/cinecatalog/internal/domain/movies"
)

// ListSeparator joins multi-valued fields in CSV cells.
const ListSeparator = "|"

// RequiredColumns must appear in every CSV header.
var RequiredColumns = []string{"id", "title", "year", "genres", "rating", "tags"}

// OptionalColumns follow the required ones when writing so that enrichment
// data survives a CSV round trip.
var OptionalColumns = []string{"imdb_id", "poster", "plot", "runtime"}

// FormatError reports content that cannot be decoded as a catalog.
type FormatError struct {
	Path    string
	Missing []string
	Err     error
}

func (e *FormatError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: CSV missing columns: %s", e.Path, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// IsFormatError reports whether err carries a FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// EncodeJSON writes the catalog as an indented list of movie objects.
func EncodeJSON(w io.Writer, cat *movies.Catalog) error {
	list := cat.Movies
	if list == nil {
		list = []movies.Movie{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(list)
}

// DecodeJSON reads a JSON list of movie objects. name is used in errors.
func DecodeJSON(r io.Reader, name string) (*movies.Catalog, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, &FormatError{Path: name, Err: fmt.Errorf("not a valid JSON file: %w", err)}
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, &FormatError{Path: name, Err: errors.New("expected a list of movies")}
	}

	records := make([]map[string]interface{}, 0, len(list))
	for i, item := range list {
		rec, ok := item.(map[string]interface{})
		if !ok {
			return nil, &FormatError{Path: name, Err: fmt.Errorf("entry %d is not an object", i)}
		}
		records = append(records, rec)
	}

	cat, err := movies.CatalogFromRecords(records)
	if err != nil {
		return nil, &FormatError{Path: name, Err: err}
	}
	return cat, nil
}

// EncodeCSV writes the header followed by one row per movie. Genres and tags are
// joined with ListSeparator.
func EncodeCSV(w io.Writer, cat *movies.Catalog) error {
	cw := csv.NewWriter(w)
	header := append(append([]string{}, RequiredColumns...), OptionalColumns...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, m := range cat.Movies {
		row := []string{
			strconv.FormatInt(m.ID, 10),
			m.Title,
			strconv.Itoa(m.Year),
			strings.Join(m.Genres, ListSeparator),
			strconv.FormatFloat(m.Rating, 'f', -1, 64),
			strings.Join(m.Tags, ListSeparator),
			deref(m.IMDbID),
			deref(m.Poster),
			deref(m.Plot),
			"",
		}
		if m.Runtime != nil {
			row[9] = strconv.Itoa(*m.Runtime)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodeCSV reads a CSV catalog. The header must contain RequiredColumns; any
// OptionalColumns present are honoured and unknown columns are ignored.
func DecodeCSV(r io.Reader, name string) (*movies.Catalog, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return movies.NewCatalog(), nil
	}
	if err != nil {
		return nil, &FormatError{Path: name, Err: fmt.Errorf("read header: %w", err)}
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &FormatError{Path: name, Missing: missing}
	}

	cat := movies.NewCatalog()
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &FormatError{Path: name, Err: err}
		}
		m, err := movieFromRow(row, cols)
		if err != nil {
			return nil, &FormatError{Path: name, Err: fmt.Errorf("line %d: %w", line, err)}
		}
		cat.Add(m)
	}
	return cat, nil
}

func movieFromRow(row []string, cols map[string]int) (movies.Movie, error) {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	id, err := strconv.ParseInt(strings.TrimSpace(cell("id")), 10, 64)
	if err != nil {
		return movies.Movie{}, fmt.Errorf("invalid id: %w", err)
	}
	year, err := strconv.Atoi(strings.TrimSpace(cell("year")))
	if err != nil {
		return movies.Movie{}, fmt.Errorf("invalid year: %w", err)
	}
	m, err := movies.NewMovie(id, cell("title"), year)
	if err != nil {
		return movies.Movie{}, err
	}

	if raw := strings.TrimSpace(cell("rating")); raw != "" {
		if m.Rating, err = strconv.ParseFloat(raw, 64); err != nil {
			return movies.Movie{}, fmt.Errorf("invalid rating: %w", err)
		}
	}
	m.Genres = splitList(cell("genres"))
	m.Tags = splitList(cell("tags"))
	m.IMDbID = optional(cell("imdb_id"))
	m.Poster = optional(cell("poster"))
	m.Plot = optional(cell("plot"))
	if raw := strings.TrimSpace(cell("runtime")); raw != "" {
		runtime, err := strconv.Atoi(raw)
		if err != nil {
			return movies.Movie{}, fmt.Errorf("invalid runtime: %w", err)
		}
		m.Runtime = &runtime
	}
	return *m, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	return strings.Split(raw, ListSeparator)
}

func optional(raw string) *string {
	if raw == "" {
		return nil
	}
	return &raw
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
