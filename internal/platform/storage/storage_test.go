package storage_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martinmanurung/cinecatalog/internal/domain/movies"
	"github.com/martinmanurung/cinecatalog/internal/platform/storage"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func sampleCatalog(t *testing.T) *movies.Catalog {
	t.Helper()
	titanic, err := movies.NewMovie(1, "Titanic", 1997)
	require.NoError(t, err)
	titanic.Genres = []string{"drama", "romance"}
	titanic.Rating = 7.9
	titanic.Tags = []string{"ship", "iceberg"}
	titanic.IMDbID = strPtr("tt0120338")
	titanic.Poster = strPtr("https://example.com/titanic.jpg")
	titanic.Plot = strPtr("A seventeen-year-old aristocrat falls in love, \"quoted\", on a ship.")
	titanic.Runtime = intPtr(194)

	inception, err := movies.NewMovie(2, "Inception, Director's Cut", 2010)
	require.NoError(t, err)
	inception.Rating = 8.8

	return movies.NewCatalog(*titanic, *inception)
}

func TestRoundTrip(t *testing.T) {
	for _, name := range []string{"catalog.json", "catalog.csv"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			want := sampleCatalog(t)

			written, err := storage.Save(want, path)
			require.NoError(t, err)
			assert.Equal(t, path, written)

			got, err := storage.Load(path)
			require.NoError(t, err)
			if diff := cmp.Diff(want.Movies, got.Movies); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRoundTripKeepsLargeIDs(t *testing.T) {
	for _, name := range []string{"catalog.json", "catalog.csv"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			// 2^53 and 2^53+1 collapse to the same float64
			a, err := movies.NewMovie(9007199254740992, "Big", 2000)
			require.NoError(t, err)
			b, err := movies.NewMovie(9007199254740993, "Bigger", 2001)
			require.NoError(t, err)

			_, err = storage.Save(movies.NewCatalog(*a, *b), path)
			require.NoError(t, err)

			got, err := storage.Load(path)
			require.NoError(t, err)
			require.Equal(t, 2, got.Len())
			assert.Equal(t, int64(9007199254740992), got.Movies[0].ID)
			assert.Equal(t, int64(9007199254740993), got.Movies[1].ID)
			assert.Empty(t, got.DuplicateIDs())
		})
	}
}

func TestLoadMissingOrEmptyReturnsEmptyCatalog(t *testing.T) {
	dir := t.TempDir()

	cat, err := storage.Load(filepath.Join(dir, "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, cat.Len())

	cat, err = storage.Load(filepath.Join(dir, "missing", "deep", "nope.csv"))
	require.NoError(t, err)
	assert.Equal(t, 0, cat.Len())

	for _, name := range []string{"empty.json", "empty.csv"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, nil, 0o644))
		cat, err := storage.Load(p)
		require.NoError(t, err)
		assert.Equal(t, 0, cat.Len())
	}
}

func TestSaveCorrectsExtensionAndCreatesParents(t *testing.T) {
	dir := t.TempDir()
	cat := sampleCatalog(t)

	out, err := storage.SaveFormat(cat, filepath.Join(dir, "a", "b", "mydata"), storage.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a", "b", "mydata.csv"), out)

	out, err = storage.SaveFormat(cat, filepath.Join(dir, "mydata.txt"), storage.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mydata.json"), out)

	loaded, err := storage.LoadFormat(filepath.Join(dir, "mydata.txt"), storage.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := storage.Save(sampleCatalog(t), filepath.Join(dir, "catalog.json"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "leftover temp file %s", e.Name())
	}
}

func TestSaveOverwritesPreviousContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	_, err := storage.Save(sampleCatalog(t), path)
	require.NoError(t, err)

	m, err := movies.NewMovie(9, "Heat", 1995)
	require.NoError(t, err)
	_, err = storage.Save(movies.NewCatalog(*m), path)
	require.NoError(t, err)

	got, err := storage.Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "Heat", got.Movies[0].Title)
}

func TestLoadMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"garbage.json":   "not a json list",
		"object.json":    `{"id": 1}`,
		"missing.json":   `[{"id": 1, "title": "Titanic"}]`,
		"badyear.json":   `[{"id": 1, "title": "Titanic", "year": 1200}]`,
		"notobject.json": `[1, 2]`,
	}
	for name, body := range cases {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))

		_, err := storage.Load(p)
		require.Error(t, err, name)
		assert.True(t, storage.IsFormatError(err), "%s: %v", name, err)
	}
}

func TestLoadCSVMissingColumns(t *testing.T) {
	dir := t.TempDir()
	for i, body := range []string{"id,title\n1,Titanic\n", "id,\nTitanic\n"} {
		p := filepath.Join(dir, "bad"+string(rune('a'+i))+".csv")
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))

		_, err := storage.Load(p)
		require.Error(t, err)

		var fe *storage.FormatError
		require.ErrorAs(t, err, &fe)
		assert.Contains(t, fe.Missing, "genres")
		assert.Contains(t, err.Error(), "CSV missing columns")
	}
}

func TestDecodeCSVPipeJoinedLists(t *testing.T) {
	body := "id,title,year,genres,rating,tags\n5,Matrix,1999,action|sci-fi,8.7,neo|reality\n"
	cat, err := storage.DecodeCSV(strings.NewReader(body), "upload.csv")
	require.NoError(t, err)
	require.Equal(t, 1, cat.Len())

	m := cat.Movies[0]
	assert.Equal(t, int64(5), m.ID)
	assert.Equal(t, []string{"action", "sci-fi"}, m.Genres)
	assert.Equal(t, []string{"neo", "reality"}, m.Tags)
	assert.Equal(t, 8.7, m.Rating)
	assert.Nil(t, m.IMDbID)
}

func TestDecodeCSVBadRow(t *testing.T) {
	body := "id,title,year,genres,rating,tags\nx,Matrix,1999,,8.7,\n"
	_, err := storage.DecodeCSV(strings.NewReader(body), "upload.csv")
	assert.True(t, storage.IsFormatError(err))
}

func TestEncodeCSVHeader(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, storage.EncodeCSV(&sb, movies.NewCatalog()))
	assert.Equal(t, "id,title,year,genres,rating,tags,imdb_id,poster,plot,runtime\n", sb.String())
}
