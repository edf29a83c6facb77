package movies

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Field names a movie attribute that may be changed by a partial update.
type Field string

const (
	FieldTitle  Field = "title"
	FieldYear   Field = "year"
	FieldGenres Field = "genres"
	FieldRating Field = "rating"
	FieldTags   Field = "tags"
	FieldIMDbID Field = "imdb_id"
)

var updatableFields = map[Field]struct{}{
	FieldTitle:  {},
	FieldYear:   {},
	FieldGenres: {},
	FieldRating: {},
	FieldTags:   {},
	FieldIMDbID: {},
}

var ErrEmptyUpdate = errors.New("empty payload")

// FieldNotAllowedError rejects an update naming a field outside the allow-list.
type FieldNotAllowedError struct {
	Field string
}

func (e *FieldNotAllowedError) Error() string {
	return fmt.Sprintf("field not allowed: %s", e.Field)
}

// FieldUpdate is one decoded assignment of an update request.
type FieldUpdate struct {
	Field Field
	Value json.RawMessage
}

// ParseUpdate validates the raw body of a partial update against the allow-list.
// Either every field is allowed and the full list is returned, or nothing is.
// Fields are returned in name order so application is deterministic.
func ParseUpdate(body map[string]json.RawMessage) ([]FieldUpdate, error) {
	if len(body) == 0 {
		return nil, ErrEmptyUpdate
	}

	names := make([]string, 0, len(body))
	for name := range body {
		names = append(names, name)
	}
	sort.Strings(names)

	updates := make([]FieldUpdate, 0, len(names))
	for _, name := range names {
		if _, ok := updatableFields[Field(name)]; !ok {
			return nil, &FieldNotAllowedError{Field: name}
		}
		updates = append(updates, FieldUpdate{Field: Field(name), Value: body[name]})
	}
	return updates, nil
}

// ApplyUpdates returns a copy of m with all updates applied. m itself is never
// modified, so a failing update leaves no partial state behind.
func ApplyUpdates(m Movie, updates []FieldUpdate) (Movie, error) {
	out := m.Clone()
	for _, u := range updates {
		if err := applyField(&out, u); err != nil {
			return Movie{}, err
		}
	}
	if err := out.Validate(); err != nil {
		return Movie{}, err
	}
	return out, nil
}

func applyField(m *Movie, u FieldUpdate) error {
	var err error
	switch u.Field {
	case FieldTitle:
		err = json.Unmarshal(u.Value, &m.Title)
	case FieldYear:
		err = json.Unmarshal(u.Value, &m.Year)
	case FieldGenres:
		var genres []string
		if err = json.Unmarshal(u.Value, &genres); err == nil {
			m.Genres = nonNil(genres)
		}
	case FieldRating:
		err = json.Unmarshal(u.Value, &m.Rating)
	case FieldTags:
		var tags []string
		if err = json.Unmarshal(u.Value, &tags); err == nil {
			m.Tags = nonNil(tags)
		}
	case FieldIMDbID:
		var id *string
		if err = json.Unmarshal(u.Value, &id); err == nil {
			m.IMDbID = id
		}
	default:
		return &FieldNotAllowedError{Field: string(u.Field)}
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", u.Field, err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
