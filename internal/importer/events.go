package importer

import (
	"github.com/narwhalmedia/catalog/pkg/events"
)

// Event types published by the import.
const (
	EventFilmworkImported = "filmwork.imported"
	EventImportCompleted  = "import.completed"
)

// NewFilmworkImportedEvent announces a filmwork that the import created.
func NewFilmworkImportedEvent(movie *Movie, result *WriteResult) *events.BaseEvent {
	return events.NewAggregateEvent(EventFilmworkImported, movie.ID.String(), map[string]interface{}{
		"legacy_id":        movie.LegacyID,
		"title":            movie.Title,
		"genres_created":   result.GenresCreated,
		"persons_inserted": result.PersonsInserted,
	})
}

// NewImportCompletedEvent summarises a committed import run.
func NewImportCompletedEvent(stats *Stats) *events.BaseEvent {
	return events.NewEvent(EventImportCompleted, map[string]interface{}{
		"rows":        stats.Rows,
		"movies":      stats.Movies,
		"genres":      stats.Genres,
		"persons":     stats.Persons,
		"skipped":     stats.Skipped,
		"duration_ms": stats.Duration.Milliseconds(),
	})
}
