// Package legacytest builds small legacy databases for tests.
package legacytest

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const schema = `
CREATE TABLE movies (
	id TEXT PRIMARY KEY,
	genre TEXT,
	director TEXT,
	writer TEXT,
	title TEXT,
	plot TEXT,
	ratings TEXT,
	imdb_rating TEXT,
	writers TEXT
);
CREATE TABLE actors (id INTEGER PRIMARY KEY, name TEXT);
CREATE TABLE movie_actors (movie_id TEXT, actor_id TEXT);
CREATE TABLE writers (id TEXT PRIMARY KEY, name TEXT);
`

// Movie is a legacy movie row plus its cast, by actor id.
type Movie struct {
	ID         string
	Genre      string
	Director   string
	Writer     string
	Writers    string
	Title      string
	Plot       string
	IMDBRating string
	ActorIDs   []int
}

// Fixture describes the content of a legacy database.
type Fixture struct {
	Writers map[string]string
	Actors  map[int]string
	Movies  []Movie
}

// Create writes f to a new SQLite file in a temporary directory and returns its path.
func Create(t *testing.T, f Fixture) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "db.sqlite")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		require.NoError(t, db.Exec(stmt).Error)
	}

	for id, name := range f.Writers {
		require.NoError(t, db.Exec(`INSERT INTO writers (id, name) VALUES (?, ?)`, id, name).Error)
	}
	for id, name := range f.Actors {
		require.NoError(t, db.Exec(`INSERT INTO actors (id, name) VALUES (?, ?)`, id, name).Error)
	}
	for _, m := range f.Movies {
		require.NoError(t, db.Exec(
			`INSERT INTO movies (id, genre, director, writer, title, plot, ratings, imdb_rating, writers) VALUES (?, ?, ?, ?, ?, ?, '', ?, ?)`,
			m.ID, m.Genre, m.Director, m.Writer, m.Title, m.Plot, m.IMDBRating, m.Writers,
		).Error)
		for _, actorID := range m.ActorIDs {
			require.NoError(t, db.Exec(`INSERT INTO movie_actors (movie_id, actor_id) VALUES (?, ?)`, m.ID, actorID).Error)
		}
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	return path
}

// StarWars is a two-movie fixture covering both writer encodings and the N/A marker.
func StarWars() Fixture {
	return Fixture{
		Writers: map[string]string{
			"w1": "George Lucas",
			"w2": "Lawrence Kasdan",
			"w3": "N/A",
		},
		Actors: map[int]string{
			1: "Mark Hamill",
			2: "Harrison Ford",
			3: "N/A",
		},
		Movies: []Movie{
			{
				ID:         "tt0076759",
				Genre:      "Action, Adventure, Fantasy",
				Director:   "George Lucas",
				Writer:     "w1",
				Writers:    "",
				Title:      "Star Wars: Episode IV - A New Hope",
				Plot:       "Luke Skywalker joins forces with a Jedi Knight.",
				IMDBRating: "8.6",
				ActorIDs:   []int{1, 2, 3},
			},
			{
				ID:         "tt0080684",
				Genre:      "Action,Adventure",
				Director:   "N/A",
				Writer:     "",
				Writers:    `[{"id": "w2"}, {"id": "w1"}, {"id": "w2"}, {"id": "w3"}]`,
				Title:      "Star Wars: Episode V - The Empire Strikes Back",
				Plot:       "N/A",
				IMDBRating: "N/A",
			},
		},
	}
}
