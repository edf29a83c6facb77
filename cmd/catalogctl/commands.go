package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/martinmanurung/cinecatalog/internal/domain/movies"
	"github.com/martinmanurung/cinecatalog/internal/platform/storage"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func loadCatalog(catalogPath func() (string, error)) (*movies.Catalog, error) {
	path, err := catalogPath()
	if err != nil {
		return nil, err
	}
	return storage.Load(path)
}

func newListCommand(catalogPath func() (string, error)) *cobra.Command {
	var title string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List movies in catalog order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}

			list := cat.Movies
			if title != "" {
				list = cat.FindByTitle(title)
			}
			if asJSON {
				if list == nil {
					list = []movies.Movie{}
				}
				return writeJSON(cmd, movies.MovieListResponse{Movies: list})
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No movies")
				return nil
			}

			rows := make([][]string, 0, len(list))
			for _, m := range list {
				imdb := ""
				if m.IMDbID != nil {
					imdb = *m.IMDbID
				}
				rows = append(rows, []string{
					strconv.FormatInt(m.ID, 10),
					m.Title,
					strconv.Itoa(m.Year),
					strconv.Itoa(m.Age()),
					strconv.FormatFloat(m.Rating, 'f', -1, 64),
					strings.Join(m.Genres, ", "),
					imdb,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Title", "Year", "Age", "Rating", "Genres", "IMDb"},
				rows,
				1, 3, 4, 5,
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Case-insensitive title filter")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newStatsCommand(catalogPath func() (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show genre and tag counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Movies: %d\n", cat.Len())

			genres := cat.GenreIndex()
			rows := make([][]string, 0, len(genres))
			for _, g := range sortedKeys(genres) {
				rows = append(rows, []string{g, strconv.Itoa(len(genres[g]))})
			}
			fmt.Fprintln(out, renderTable([]string{"Genre", "Movies"}, rows, 2))

			tags := cat.TagCounts()
			rows = rows[:0]
			for _, tag := range sortedKeys(tags) {
				rows = append(rows, []string{tag, strconv.Itoa(tags[tag])})
			}
			fmt.Fprintln(out, renderTable([]string{"Tag", "Count"}, rows, 2))
			return nil
		},
	}
}

func newConvertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <source> <destination>",
		Short: "Convert a catalog between JSON and CSV",
		Long:  "Reads <source> and writes it to <destination>. Formats are chosen from the file extensions.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, dst := args[0], args[1]
			if storage.FormatOf(src) == storage.FormatOf(dst) {
				return errors.New("source and destination use the same format")
			}

			cat, err := storage.Load(src)
			if err != nil {
				return err
			}
			written, err := storage.Save(cat, dst)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d movies to %s\n", cat.Len(), written)
			return nil
		},
	}
}

func newHashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for auth.users[].password_hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
