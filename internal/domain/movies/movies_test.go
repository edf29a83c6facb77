package movies_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martinmanurung/cinecatalog/internal/domain/movies"
)

func mustMovie(t *testing.T, id int64, title string, year int) movies.Movie {
	t.Helper()
	m, err := movies.NewMovie(id, title, year)
	require.NoError(t, err)
	return *m
}

func TestNewMovieYearBounds(t *testing.T) {
	thisYear := time.Now().Year()

	cases := []struct {
		year int
		ok   bool
	}{
		{1799, false},
		{1800, true},
		{1992, true},
		{thisYear, true},
		{thisYear + 1, false},
	}
	for _, tc := range cases {
		_, err := movies.NewMovie(1, "Titanic", tc.year)
		if tc.ok {
			assert.NoError(t, err, "year %d", tc.year)
		} else {
			assert.ErrorIs(t, err, movies.ErrInvalidYear, "year %d", tc.year)
		}
	}
}

func TestNewMovieRejectsEmptyTitle(t *testing.T) {
	_, err := movies.NewMovie(1, "  ", 2000)
	assert.ErrorIs(t, err, movies.ErrEmptyTitle)
}

func TestNewMovieDefaultsEmptySequences(t *testing.T) {
	m := mustMovie(t, 1, "Titanic", 1992)
	assert.NotNil(t, m.Genres)
	assert.NotNil(t, m.Tags)

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"title":"Titanic","year":1992,"genres":[],"rating":0,"tags":[],
		"imdb_id":null,"poster":null,"plot":null,"runtime":null}`, string(raw))
}

func TestSameIdentityIgnoresOtherFields(t *testing.T) {
	a := mustMovie(t, 7, "Alien", 1979)
	b := mustMovie(t, 7, "Aliens", 1986)
	c := mustMovie(t, 8, "Alien", 1979)

	assert.True(t, a.SameIdentity(b))
	assert.False(t, a.SameIdentity(c))
}

func TestParseRuntime(t *testing.T) {
	n := movies.ParseRuntime("123 min")
	require.NotNil(t, n)
	assert.Equal(t, 123, *n)

	for _, raw := range []string{"", "N/A", "abc min", "   "} {
		assert.Nil(t, movies.ParseRuntime(raw), "raw %q", raw)
	}
}

func TestCatalogLookupsReturnFirstMatch(t *testing.T) {
	cat := movies.NewCatalog(
		mustMovie(t, 1, "Titanic", 1992),
		mustMovie(t, 1, "Titanic II", 2010),
		mustMovie(t, 2, "Taxi", 1995),
	)

	found := cat.FindByID(1)
	require.NotNil(t, found)
	assert.Equal(t, "Titanic", found.Title)
	assert.Nil(t, cat.FindByID(99))

	require.True(t, cat.Remove(1))
	assert.Equal(t, 2, cat.Len())
	assert.Equal(t, "Titanic II", cat.FindByID(1).Title)
	assert.False(t, cat.Remove(99))
	assert.Empty(t, cat.DuplicateIDs())
}

func TestCatalogFindByTitleCaseInsensitive(t *testing.T) {
	cat := movies.NewCatalog(
		mustMovie(t, 1, "Titanic", 1992),
		mustMovie(t, 2, "Taxi", 1995),
		mustMovie(t, 3, "TITAN A.E.", 2000),
	)

	found := cat.FindByTitle("titan")
	require.Len(t, found, 2)
	assert.Equal(t, int64(1), found[0].ID)
	assert.Equal(t, int64(3), found[1].ID)
}

func TestCatalogGenreIndexAndTagCounts(t *testing.T) {
	m1 := mustMovie(t, 1, "Titanic", 1990)
	m1.Genres = []string{"action", "drama", "romance"}
	m1.Tags = []string{"ship", "love", "sea"}
	m2 := mustMovie(t, 2, "Taxi", 1995)
	m2.Genres = []string{"action", "comedy", "romance"}
	m2.Tags = []string{"taxi", "love", "sea"}
	cat := movies.NewCatalog(m1, m2)

	assert.Equal(t, map[string][]int64{
		"action":  {1, 2},
		"drama":   {1},
		"romance": {1, 2},
		"comedy":  {2},
	}, cat.GenreIndex())
	assert.Equal(t, map[string]int{"ship": 1, "love": 2, "sea": 2, "taxi": 1}, cat.TagCounts())

	empty := movies.NewCatalog()
	assert.Empty(t, empty.GenreIndex())
	assert.Empty(t, empty.TagCounts())
}

func TestCatalogCloneIsDeep(t *testing.T) {
	m := mustMovie(t, 1, "Titanic", 1992)
	m.Genres = []string{"drama"}
	cat := movies.NewCatalog(m)

	clone := cat.Clone()
	clone.Movies[0].Genres[0] = "comedy"
	clone.Movies[0].Title = "Changed"

	assert.Equal(t, "drama", cat.Movies[0].Genres[0])
	assert.Equal(t, "Titanic", cat.Movies[0].Title)
}

func TestParseUpdateRejectsWholeRequest(t *testing.T) {
	_, err := movies.ParseUpdate(map[string]json.RawMessage{})
	assert.ErrorIs(t, err, movies.ErrEmptyUpdate)

	_, err = movies.ParseUpdate(map[string]json.RawMessage{
		"title":  json.RawMessage(`"New"`),
		"poster": json.RawMessage(`"x.jpg"`),
	})
	var notAllowed *movies.FieldNotAllowedError
	require.True(t, errors.As(err, &notAllowed))
	assert.Equal(t, "poster", notAllowed.Field)
}

func TestApplyUpdatesLeavesOriginalUntouchedOnError(t *testing.T) {
	orig := mustMovie(t, 1, "Titanic", 1992)

	updates, err := movies.ParseUpdate(map[string]json.RawMessage{
		"title": json.RawMessage(`"Titanic (Remastered)"`),
		"year":  json.RawMessage(`1700`),
	})
	require.NoError(t, err)

	_, err = movies.ApplyUpdates(orig, updates)
	assert.ErrorIs(t, err, movies.ErrInvalidYear)
	assert.Equal(t, "Titanic", orig.Title)
}

func TestApplyUpdatesSetsAllowedFields(t *testing.T) {
	orig := mustMovie(t, 1, "Titanic", 1992)

	updates, err := movies.ParseUpdate(map[string]json.RawMessage{
		"title":   json.RawMessage(`"Titanic 3D"`),
		"year":    json.RawMessage(`1997`),
		"genres":  json.RawMessage(`["drama","romance"]`),
		"rating":  json.RawMessage(`7.9`),
		"tags":    json.RawMessage(`null`),
		"imdb_id": json.RawMessage(`"tt0120338"`),
	})
	require.NoError(t, err)

	got, err := movies.ApplyUpdates(orig, updates)
	require.NoError(t, err)
	assert.Equal(t, "Titanic 3D", got.Title)
	assert.Equal(t, 1997, got.Year)
	assert.Equal(t, []string{"drama", "romance"}, got.Genres)
	assert.Equal(t, 7.9, got.Rating)
	assert.Equal(t, []string{}, got.Tags)
	require.NotNil(t, got.IMDbID)
	assert.Equal(t, "tt0120338", *got.IMDbID)
}

func TestApplyUpdatesRejectsWrongType(t *testing.T) {
	orig := mustMovie(t, 1, "Titanic", 1992)
	updates, err := movies.ParseUpdate(map[string]json.RawMessage{"year": json.RawMessage(`"soon"`)})
	require.NoError(t, err)

	_, err = movies.ApplyUpdates(orig, updates)
	assert.Error(t, err)
}

func TestFromRecordAcceptsJSONNumbers(t *testing.T) {
	m, err := movies.FromRecord(map[string]interface{}{
		"id":      json.Number("9007199254740993"),
		"title":   "Bigger",
		"year":    json.Number("2001"),
		"rating":  json.Number("7.5"),
		"runtime": json.Number("121"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(9007199254740993), m.ID)
	assert.Equal(t, 2001, m.Year)
	assert.Equal(t, 7.5, m.Rating)
	require.NotNil(t, m.Runtime)
	assert.Equal(t, 121, *m.Runtime)
}

func TestAge(t *testing.T) {
	m := mustMovie(t, 1, "Heat", 1995)
	assert.Equal(t, time.Now().Year()-1995, m.Age())

	current := mustMovie(t, 2, "New", time.Now().Year())
	assert.Zero(t, current.Age())
}
