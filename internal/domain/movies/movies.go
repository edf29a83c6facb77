package movies

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// MinYear is the earliest release year a movie may carry.
const MinYear = 1800

var ErrInvalidYear = errors.New("invalid movie year")
var ErrEmptyTitle = errors.New("movie title must not be empty")

// Movie represents a single catalog record
type Movie struct {
	ID      int64    `json:"id"`
	Title   string   `json:"title"`
	Year    int      `json:"year"`
	Genres  []string `json:"genres"`
	Rating  float64  `json:"rating"`
	Tags    []string `json:"tags"`
	IMDbID  *string  `json:"imdb_id"`
	Poster  *string  `json:"poster"`
	Plot    *string  `json:"plot"`
	Runtime *int     `json:"runtime"`
}

// NewMovie builds a movie and enforces the year and title invariants.
func NewMovie(id int64, title string, year int) (*Movie, error) {
	m := &Movie{
		ID:     id,
		Title:  title,
		Year:   year,
		Genres: []string{},
		Tags:   []string{},
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the construction invariants of a movie.
func (m Movie) Validate() error {
	if !ValidYear(m.Year) {
		return fmt.Errorf("%w: %d", ErrInvalidYear, m.Year)
	}
	if strings.TrimSpace(m.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// ValidYear reports whether year is within [MinYear, current year].
func ValidYear(year int) bool {
	return year >= MinYear && year <= time.Now().Year()
}

// SameIdentity compares movies by id only. Two records with the same id and
// different titles are the same movie.
func (m Movie) SameIdentity(other Movie) bool {
	return m.ID == other.ID
}

// Age returns the number of years since release.
func (m Movie) Age() int {
	return time.Now().Year() - m.Year
}

func (m Movie) String() string {
	return fmt.Sprintf("<Movie id: %d, title: %q, year: %d>", m.ID, m.Title, m.Year)
}

// Clone returns a deep copy so that callers can mutate it freely.
func (m Movie) Clone() Movie {
	c := m
	c.Genres = append([]string{}, m.Genres...)
	c.Tags = append([]string{}, m.Tags...)
	c.IMDbID = cloneString(m.IMDbID)
	c.Poster = cloneString(m.Poster)
	c.Plot = cloneString(m.Plot)
	if m.Runtime != nil {
		r := *m.Runtime
		c.Runtime = &r
	}
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// ParseRuntime turns the textual "<N> min" form into minutes.
// Missing, "N/A" or non-numeric values yield nil.
func ParseRuntime(raw string) *int {
	fields := strings.Fields(raw)
	if len(fields) == 0 || fields[0] == "N/A" {
		return nil
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil
	}
	return &n
}

// Catalog is an ordered collection of movies. Insertion order is preserved and
// duplicate ids are permitted at this level; lookups return the first match.
type Catalog struct {
	Movies []Movie
}

// NewCatalog creates a catalog holding the given movies.
func NewCatalog(movies ...Movie) *Catalog {
	return &Catalog{Movies: append([]Movie{}, movies...)}
}

func (c *Catalog) Len() int {
	return len(c.Movies)
}

// Add appends a movie at the end of the catalog.
func (c *Catalog) Add(m Movie) {
	c.Movies = append(c.Movies, m)
}

// FindByID returns a pointer to the first movie with the given id, or nil.
func (c *Catalog) FindByID(id int64) *Movie {
	for i := range c.Movies {
		if c.Movies[i].ID == id {
			return &c.Movies[i]
		}
	}
	return nil
}

// Remove drops the first movie with the given id and reports whether one was found.
func (c *Catalog) Remove(id int64) bool {
	for i := range c.Movies {
		if c.Movies[i].ID == id {
			c.Movies = append(c.Movies[:i], c.Movies[i+1:]...)
			return true
		}
	}
	return false
}

// Titles lists the titles in catalog order.
func (c *Catalog) Titles() []string {
	titles := make([]string, 0, len(c.Movies))
	for _, m := range c.Movies {
		titles = append(titles, m.Title)
	}
	return titles
}

// FindByTitle returns movies whose title contains query, compared case-insensitively.
func (c *Catalog) FindByTitle(query string) []Movie {
	folder := cases.Fold()
	needle := folder.String(query)
	var out []Movie
	for _, m := range c.Movies {
		if strings.Contains(folder.String(m.Title), needle) {
			out = append(out, m.Clone())
		}
	}
	return out
}

// GenreIndex maps each genre to the ids of the movies carrying it, in catalog order.
func (c *Catalog) GenreIndex() map[string][]int64 {
	index := make(map[string][]int64)
	for _, m := range c.Movies {
		for _, g := range m.Genres {
			index[g] = append(index[g], m.ID)
		}
	}
	return index
}

// TagCounts counts tag occurrences across the catalog.
func (c *Catalog) TagCounts() map[string]int {
	counts := make(map[string]int)
	for _, m := range c.Movies {
		for _, t := range m.Tags {
			counts[t]++
		}
	}
	return counts
}

// Clone deep-copies the catalog.
func (c *Catalog) Clone() *Catalog {
	out := &Catalog{Movies: make([]Movie, 0, len(c.Movies))}
	for _, m := range c.Movies {
		out.Movies = append(out.Movies, m.Clone())
	}
	return out
}

// DuplicateIDs returns ids that occur more than once, sorted ascending.
func (c *Catalog) DuplicateIDs() []int64 {
	seen := make(map[int64]int, len(c.Movies))
	for _, m := range c.Movies {
		seen[m.ID]++
	}
	var dups []int64
	for id, n := range seen {
		if n > 1 {
			dups = append(dups, id)
		}
	}
	sort.Slice(dups, func(i, j int) bool { return dups[i] < dups[j] })
	return dups
}

// Request DTOs

// AddMovieRequest is the payload for creating a movie. Pointers distinguish a
// missing field from a zero value.
type AddMovieRequest struct {
	ID      *int64   `json:"id" validate:"required"`
	Title   *string  `json:"title" validate:"required"`
	Year    *int     `json:"year" validate:"required"`
	Genres  []string `json:"genres"`
	Rating  *float64 `json:"rating"`
	Tags    []string `json:"tags"`
	IMDbID  *string  `json:"imdb_id"`
	Poster  *string  `json:"poster"`
	Plot    *string  `json:"plot"`
	Runtime *int     `json:"runtime"`
}

// ImportJSONRequest is the bulk import payload. Entries are kept loosely typed so
// numeric fields sent as strings can be coerced.
type ImportJSONRequest struct {
	Movies []map[string]interface{} `json:"movies"`
}

// EnrichRequest optionally overrides the enrichment concurrency bound. Values
// below one select the configured default.
type EnrichRequest struct {
	MaxConcurrency int `json:"max_concurrency"`
}

// Response DTOs

type MovieListResponse struct {
	Movies []Movie `json:"movies"`
}

type MovieResponse struct {
	Movie Movie `json:"movie"`
}

type ImportResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type EnrichIDsResponse struct {
	Message string `json:"message"`
	Updated int    `json:"updated"`
}

type EnrichMetadataResponse struct {
	Message  string `json:"message"`
	Enriched int    `json:"enriched"`
}

type FullEnrichResponse struct {
	Message  string `json:"message"`
	Updated  int    `json:"updated"`
	Enriched int    `json:"enriched"`
}

// StatsResponse summarises genres and tags across the catalog.
type StatsResponse struct {
	Genres map[string][]int64 `json:"genres"`
	Tags   map[string]int     `json:"tags"`
}
