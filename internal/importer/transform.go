package importer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/narwhalmedia/catalog/internal/legacy"
	pkgerrors "github.com/narwhalmedia/catalog/pkg/errors"
	"github.com/narwhalmedia/catalog/pkg/models"
)

// Namespace seeds every identifier derived from legacy keys.
var Namespace = uuid.MustParse("6f1c2b8e-4f4d-5e55-9a2e-1b0d2c3e7a10")

// Movie is a legacy row in catalog shape, ready to be written.
type Movie struct {
	ID          uuid.UUID
	LegacyID    string
	Title       string
	Description string
	Rating      *float64
	Genres      []string
	Persons     []Person
}

// Person is one credit on a movie. The same name credited twice yields two persons.
type Person struct {
	ID   uuid.UUID
	Name string
	Role string
}

// Options tweaks the transformation.
type Options struct {
	// DedupeActors collapses repeated actor names within one movie.
	DedupeActors bool
}

type writerRef struct {
	ID string `json:"id"`
}

// MovieID returns the catalog id of a legacy movie.
func MovieID(legacyID string) uuid.UUID {
	return uuid.NewSHA1(Namespace, []byte("filmwork:"+legacyID))
}

// PersonID returns the catalog id of the position-th credit of role on a movie.
func PersonID(movieID uuid.UUID, role string, position int, name string) uuid.UUID {
	key := fmt.Sprintf("person:%s:%s:%d:%s", movieID, role, position, name)
	return uuid.NewSHA1(Namespace, []byte(key))
}

// Transform converts a legacy row using the writer lookup. It does no I/O.
func Transform(row legacy.MovieRow, writers legacy.WriterLookup, opts Options) (*Movie, error) {
	rating, err := parseRating(row)
	if err != nil {
		return nil, err
	}

	movie := &Movie{
		ID:          MovieID(row.ID),
		LegacyID:    row.ID,
		Title:       row.Title,
		Description: row.Plot,
		Rating:      rating,
		Genres:      splitGenres(row.Genre),
	}
	if movie.Description == legacy.NotAvailable {
		movie.Description = ""
	}

	writerNames, err := resolveWriters(row, writers)
	if err != nil {
		return nil, err
	}

	movie.addPersons(models.CareerWriter, writerNames)
	movie.addPersons(models.CareerActor, splitActors(row.ActorsNames, opts.DedupeActors))
	movie.addPersons(models.CareerDirector, splitDirectors(row.Director))

	return movie, nil
}

func (m *Movie) addPersons(role string, names []string) {
	for i, name := range names {
		m.Persons = append(m.Persons, Person{
			ID:   PersonID(m.ID, role, i, name),
			Name: name,
			Role: role,
		})
	}
}

func parseRating(row legacy.MovieRow) (*float64, error) {
	if row.IMDBRating == legacy.NotAvailable {
		return nil, nil
	}
	rating, err := strconv.ParseFloat(strings.TrimSpace(row.IMDBRating), 64)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrorTypeInvalidData,
			fmt.Sprintf("movie %s: invalid rating %q", row.ID, row.IMDBRating), err)
	}
	if rating < 0 {
		return nil, pkgerrors.InvalidData(fmt.Sprintf("movie %s: negative rating %v", row.ID, rating))
	}
	return &rating, nil
}

func splitGenres(raw string) []string {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	var genres []string
	for _, name := range strings.Split(compact, ",") {
		if name != "" {
			genres = append(genres, name)
		}
	}
	return genres
}

// resolveWriters decodes the writer references of a row and maps them to
// names, in first-seen order with repeated ids dropped.
func resolveWriters(row legacy.MovieRow, lookup legacy.WriterLookup) ([]string, error) {
	var refs []writerRef
	if row.Writers == "" {
		refs = []writerRef{{ID: row.Writer}}
	} else if err := json.Unmarshal([]byte(row.Writers), &refs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrorTypeInvalidData,
			fmt.Sprintf("movie %s: malformed writers", row.ID), err)
	}

	seen := make(map[string]struct{}, len(refs))
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		if _, ok := seen[ref.ID]; ok {
			continue
		}
		seen[ref.ID] = struct{}{}

		name, ok := lookup[ref.ID]
		if !ok {
			return nil, pkgerrors.InvalidData(fmt.Sprintf("movie %s: unknown writer %q", row.ID, ref.ID))
		}
		if name == legacy.NotAvailable {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

func splitActors(raw *string, dedupe bool) []string {
	if raw == nil || *raw == "" {
		return nil
	}

	var seen map[string]struct{}
	if dedupe {
		seen = make(map[string]struct{})
	}

	var names []string
	for _, name := range strings.Split(*raw, ",") {
		if name == "" || name == legacy.NotAvailable {
			continue
		}
		if seen != nil {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
		}
		names = append(names, name)
	}
	return names
}

func splitDirectors(raw string) []string {
	if raw == legacy.NotAvailable || raw == "" {
		return nil
	}

	var names []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
