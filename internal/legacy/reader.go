// Package legacy reads the single-file SQLite movie database the catalog is
// migrated from. The source is opened read-only and never modified.
package legacy

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/narwhalmedia/catalog/pkg/database"
	"github.com/narwhalmedia/catalog/pkg/interfaces"
)

const writersQuery = `SELECT DISTINCT id, name FROM writers`

// moviesQuery returns one row per movie. Actor names and ids are aggregated
// in the same join order so their positions line up.
const moviesQuery = `
WITH cast_list AS (
	SELECT m.id, group_concat(a.name) AS actors_names, group_concat(a.id) AS actors_ids
	FROM movies m
	LEFT JOIN movie_actors ma ON m.id = ma.movie_id
	LEFT JOIN actors a ON ma.actor_id = a.id
	GROUP BY m.id
)
SELECT m.id, m.genre, m.director, m.writer, m.writers, m.title, m.plot, m.imdb_rating,
	cast_list.actors_ids, cast_list.actors_names
FROM movies m
LEFT JOIN cast_list ON m.id = cast_list.id
ORDER BY m.id`

// NotAvailable is the legacy marker for a missing value.
const NotAvailable = "N/A"

// MovieRow is one movie as stored in the legacy database.
type MovieRow struct {
	ID          string  `gorm:"column:id"`
	Genre       string  `gorm:"column:genre"`
	Director    string  `gorm:"column:director"`
	Writer      string  `gorm:"column:writer"`
	Writers     string  `gorm:"column:writers"`
	Title       string  `gorm:"column:title"`
	Plot        string  `gorm:"column:plot"`
	IMDBRating  string  `gorm:"column:imdb_rating"`
	ActorsIDs   *string `gorm:"column:actors_ids"`
	ActorsNames *string `gorm:"column:actors_names"`
}

// WriterLookup maps a legacy writer id to the writer's name.
type WriterLookup map[string]string

type writerRow struct {
	ID   string `gorm:"column:id"`
	Name string `gorm:"column:name"`
}

// Reader runs the two fixed legacy queries.
type Reader struct {
	db     *gorm.DB
	logger interfaces.Logger
}

// NewReader wraps an already opened legacy connection.
func NewReader(db *gorm.DB, logger interfaces.Logger) *Reader {
	return &Reader{
		db:     db,
		logger: logger.WithFields(interfaces.String("component", "legacy_reader")),
	}
}

// Open opens the legacy file at path read-only.
func Open(path string, logger interfaces.Logger) (*Reader, error) {
	db, err := database.OpenSQLiteReadOnly(path, logger)
	if err != nil {
		return nil, err
	}
	return NewReader(db, logger), nil
}

// Close releases the legacy connection.
func (r *Reader) Close() error {
	return database.Close(r.db)
}

// Writers loads the complete writer id to name lookup.
func (r *Reader) Writers(ctx context.Context) (WriterLookup, error) {
	var rows []writerRow
	if err := r.db.WithContext(ctx).Raw(writersQuery).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load writers: %w", err)
	}

	lookup := make(WriterLookup, len(rows))
	for _, row := range rows {
		lookup[row.ID] = row.Name
	}

	r.logger.Debug("Loaded legacy writers", interfaces.Int("count", len(lookup)))
	return lookup, nil
}

// Movies streams every legacy movie to fn, one row at a time. Iteration stops
// at the first error returned by fn.
func (r *Reader) Movies(ctx context.Context, fn func(MovieRow) error) error {
	rows, err := r.db.WithContext(ctx).Raw(moviesQuery).Rows()
	if err != nil {
		return fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}

		var row MovieRow
		if err := r.db.ScanRows(rows, &row); err != nil {
			return fmt.Errorf("failed to scan movie row: %w", err)
		}
		if err := fn(row); err != nil {
			return err
		}
	}

	return rows.Err()
}

// CountMovies returns the number of legacy movies.
func (r *Reader) CountMovies(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Raw(`SELECT count(*) FROM movies`).Scan(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return count, nil
}
