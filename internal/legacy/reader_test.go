package legacy_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narwhalmedia/catalog/internal/legacy"
	"github.com/narwhalmedia/catalog/internal/legacy/legacytest"
	"github.com/narwhalmedia/catalog/pkg/logger"
)

func openStarWars(t *testing.T) *legacy.Reader {
	t.Helper()
	reader, err := legacy.Open(legacytest.Create(t, legacytest.StarWars()), logger.NewNoop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = reader.Close() })
	return reader
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := legacy.Open("/nonexistent/db.sqlite", logger.NewNoop())
	assert.Error(t, err)
}

func TestReader_Writers(t *testing.T) {
	reader := openStarWars(t)

	writers, err := reader.Writers(context.Background())
	require.NoError(t, err)

	assert.Equal(t, legacy.WriterLookup{
		"w1": "George Lucas",
		"w2": "Lawrence Kasdan",
		"w3": "N/A",
	}, writers)
}

func TestReader_Movies(t *testing.T) {
	reader := openStarWars(t)

	var rows []legacy.MovieRow
	err := reader.Movies(context.Background(), func(row legacy.MovieRow) error {
		rows = append(rows, row)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	hope := rows[0]
	assert.Equal(t, "tt0076759", hope.ID)
	assert.Equal(t, "w1", hope.Writer)
	assert.Equal(t, "", hope.Writers)
	assert.Equal(t, "8.6", hope.IMDBRating)
	require.NotNil(t, hope.ActorsNames)
	names := strings.Split(*hope.ActorsNames, ",")
	sort.Strings(names)
	assert.Equal(t, []string{"Harrison Ford", "Mark Hamill", "N/A"}, names)
	require.NotNil(t, hope.ActorsIDs)
	assert.Len(t, strings.Split(*hope.ActorsIDs, ","), 3)

	empire := rows[1]
	assert.Equal(t, "tt0080684", empire.ID)
	assert.Equal(t, "N/A", empire.Director)
	assert.Nil(t, empire.ActorsNames)
	assert.Nil(t, empire.ActorsIDs)
}

func TestReader_MoviesStopsOnError(t *testing.T) {
	reader := openStarWars(t)
	stop := errors.New("stop")

	calls := 0
	err := reader.Movies(context.Background(), func(legacy.MovieRow) error {
		calls++
		return stop
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestReader_CountMovies(t *testing.T) {
	reader := openStarWars(t)

	count, err := reader.CountMovies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
