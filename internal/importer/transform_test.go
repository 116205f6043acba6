package importer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narwhalmedia/catalog/internal/importer"
	"github.com/narwhalmedia/catalog/internal/legacy"
	pkgerrors "github.com/narwhalmedia/catalog/pkg/errors"
	"github.com/narwhalmedia/catalog/pkg/models"
)

func strPtr(s string) *string { return &s }

type credit struct {
	Name string
	Role string
}

func credits(m *importer.Movie) []credit {
	out := make([]credit, 0, len(m.Persons))
	for _, p := range m.Persons {
		out = append(out, credit{Name: p.Name, Role: p.Role})
	}
	return out
}

func TestTransform_SingleWriterRow(t *testing.T) {
	row := legacy.MovieRow{
		ID:          "tt0000001",
		Title:       "Example",
		Director:    "N/A",
		Writer:      "w1",
		Writers:     "",
		ActorsNames: strPtr("A,B,N/A"),
		Genre:       "Action, Drama",
		IMDBRating:  "7.5",
		Plot:        "N/A",
	}

	movie, err := importer.Transform(row, legacy.WriterLookup{"w1": "Jane Doe"}, importer.Options{})
	require.NoError(t, err)

	assert.Equal(t, "", movie.Description)
	require.NotNil(t, movie.Rating)
	assert.Equal(t, 7.5, *movie.Rating)
	assert.Equal(t, []string{"Action", "Drama"}, movie.Genres)
	assert.Equal(t, []credit{
		{Name: "Jane Doe", Role: models.CareerWriter},
		{Name: "A", Role: models.CareerActor},
		{Name: "B", Role: models.CareerActor},
	}, credits(movie))
}

func TestTransform_WritersDedupedByID(t *testing.T) {
	row := legacy.MovieRow{
		ID:         "tt0000002",
		Title:      "Example",
		Director:   "N/A",
		Writers:    `[{"id":"w1"},{"id":"w1"}]`,
		IMDBRating: "N/A",
	}

	movie, err := importer.Transform(row, legacy.WriterLookup{"w1": "Jane Doe"}, importer.Options{})
	require.NoError(t, err)

	assert.Equal(t, []credit{{Name: "Jane Doe", Role: models.CareerWriter}}, credits(movie))
	assert.Nil(t, movie.Rating)
}

func TestTransform_WritersSkipNotAvailable(t *testing.T) {
	row := legacy.MovieRow{
		ID:         "tt0000003",
		Title:      "Example",
		Director:   "N/A",
		Writers:    `[{"id":"w2"},{"id":"w3"},{"id":"w1"}]`,
		IMDBRating: "5",
	}
	lookup := legacy.WriterLookup{"w1": "Jane Doe", "w2": "John Roe", "w3": "N/A"}

	movie, err := importer.Transform(row, lookup, importer.Options{})
	require.NoError(t, err)

	assert.Equal(t, []credit{
		{Name: "John Roe", Role: models.CareerWriter},
		{Name: "Jane Doe", Role: models.CareerWriter},
	}, credits(movie))
}

func TestTransform_Directors(t *testing.T) {
	tests := []struct {
		name     string
		director string
		want     []credit
	}{
		{name: "not available", director: "N/A", want: []credit{}},
		{name: "single", director: "George Lucas", want: []credit{{"George Lucas", models.CareerDirector}}},
		{
			name:     "several trimmed",
			director: "Lana Wachowski, Lilly Wachowski",
			want: []credit{
				{"Lana Wachowski", models.CareerDirector},
				{"Lilly Wachowski", models.CareerDirector},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := legacy.MovieRow{
				ID:         "tt0000004",
				Title:      "Example",
				Director:   tt.director,
				Writers:    "[]",
				IMDBRating: "N/A",
			}

			movie, err := importer.Transform(row, legacy.WriterLookup{}, importer.Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, credits(movie))
		})
	}
}

func TestTransform_Genres(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{raw: "Action, Adventure, Fantasy", want: []string{"Action", "Adventure", "Fantasy"}},
		{raw: "Sci-Fi,Sci-Fi", want: []string{"Sci-Fi", "Sci-Fi"}},
		{raw: "Film Noir", want: []string{"FilmNoir"}},
		{raw: "", want: nil},
		{raw: "Drama,,", want: []string{"Drama"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			row := legacy.MovieRow{ID: "tt0000005", Title: "Example", Genre: tt.raw, Director: "N/A", Writers: "[]", IMDBRating: "N/A"}

			movie, err := importer.Transform(row, legacy.WriterLookup{}, importer.Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, movie.Genres)
		})
	}
}

func TestTransform_ActorsKeepDuplicates(t *testing.T) {
	row := legacy.MovieRow{
		ID:          "tt0000006",
		Title:       "Example",
		Director:    "N/A",
		Writers:     "[]",
		IMDBRating:  "N/A",
		ActorsNames: strPtr("A,A,B"),
	}

	movie, err := importer.Transform(row, legacy.WriterLookup{}, importer.Options{})
	require.NoError(t, err)
	require.Len(t, movie.Persons, 3)
	assert.NotEqual(t, movie.Persons[0].ID, movie.Persons[1].ID)

	deduped, err := importer.Transform(row, legacy.WriterLookup{}, importer.Options{DedupeActors: true})
	require.NoError(t, err)
	assert.Equal(t, []credit{{"A", models.CareerActor}, {"B", models.CareerActor}}, credits(deduped))
}

func TestTransform_ActorsDropEmptyNames(t *testing.T) {
	row := legacy.MovieRow{
		ID:          "tt0000008",
		Title:       "Example",
		Director:    "N/A",
		Writers:     "[]",
		IMDBRating:  "N/A",
		ActorsNames: strPtr("A,,B,"),
	}

	movie, err := importer.Transform(row, legacy.WriterLookup{}, importer.Options{})
	require.NoError(t, err)
	assert.Equal(t, []credit{{"A", models.CareerActor}, {"B", models.CareerActor}}, credits(movie))
	for _, p := range movie.Persons {
		assert.NotEmpty(t, p.Name)
	}
}

func TestTransform_NoActors(t *testing.T) {
	for _, names := range []*string{nil, strPtr("")} {
		row := legacy.MovieRow{ID: "tt0000007", Title: "Example", Director: "N/A", Writers: "[]", IMDBRating: "N/A", ActorsNames: names}

		movie, err := importer.Transform(row, legacy.WriterLookup{}, importer.Options{})
		require.NoError(t, err)
		assert.Empty(t, movie.Persons)
	}
}

func TestTransform_Errors(t *testing.T) {
	base := legacy.MovieRow{ID: "tt0000008", Title: "Example", Director: "N/A", Writers: "[]", IMDBRating: "N/A"}

	tests := []struct {
		name   string
		mutate func(*legacy.MovieRow)
	}{
		{name: "malformed writers", mutate: func(r *legacy.MovieRow) { r.Writers = `[{"id": "w1"` }},
		{name: "unknown writer", mutate: func(r *legacy.MovieRow) { r.Writers = `[{"id": "missing"}]` }},
		{name: "unknown single writer", mutate: func(r *legacy.MovieRow) { r.Writers = ""; r.Writer = "missing" }},
		{name: "non-numeric rating", mutate: func(r *legacy.MovieRow) { r.IMDBRating = "seven" }},
		{name: "negative rating", mutate: func(r *legacy.MovieRow) { r.IMDBRating = "-1" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := base
			tt.mutate(&row)

			movie, err := importer.Transform(row, legacy.WriterLookup{"w1": "Jane Doe"}, importer.Options{})
			assert.Nil(t, movie)
			assert.True(t, pkgerrors.IsInvalidData(err), "got %v", err)
		})
	}
}

func TestTransform_StableIdentifiers(t *testing.T) {
	row := legacy.MovieRow{
		ID:          "tt0000009",
		Title:       "Example",
		Director:    "Jane Doe",
		Writer:      "w1",
		IMDBRating:  "6.1",
		ActorsNames: strPtr("Jane Doe"),
	}
	lookup := legacy.WriterLookup{"w1": "Jane Doe"}

	first, err := importer.Transform(row, lookup, importer.Options{})
	require.NoError(t, err)
	second, err := importer.Transform(row, lookup, importer.Options{})
	require.NoError(t, err)

	assert.Equal(t, importer.MovieID("tt0000009"), first.ID)
	assert.Equal(t, first.ID, second.ID)
	require.Len(t, first.Persons, 3)
	for i := range first.Persons {
		assert.Equal(t, first.Persons[i].ID, second.Persons[i].ID)
	}

	// Same name in three roles is three distinct persons.
	assert.NotEqual(t, first.Persons[0].ID, first.Persons[1].ID)
	assert.NotEqual(t, first.Persons[1].ID, first.Persons[2].ID)
}
