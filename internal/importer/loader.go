// Package importer copies the legacy movie database into the catalog.
//
// A run reads every legacy row, transforms it and writes it inside a single
// transaction on the target store. Any failure rolls the whole run back.
// Re-running against a store that already holds the data adds nothing.
package importer

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/narwhalmedia/catalog/internal/legacy"
	"github.com/narwhalmedia/catalog/internal/metrics"
	"github.com/narwhalmedia/catalog/pkg/interfaces"
	"github.com/narwhalmedia/catalog/pkg/models"
)

var errDryRun = errors.New("dry run")

// Source provides legacy rows.
type Source interface {
	Writers(ctx context.Context) (legacy.WriterLookup, error)
	Movies(ctx context.Context, fn func(legacy.MovieRow) error) error
}

// Stats summarises an import run.
type Stats struct {
	Rows     int
	Movies   int
	Genres   int
	Persons  int
	Skipped  int
	DryRun   bool
	Duration time.Duration
}

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	Schema    models.Schema
	DryRun    bool
	Transform Options
}

// Loader runs the legacy import.
type Loader struct {
	source   Source
	db       *gorm.DB
	eventBus interfaces.EventBus
	logger   interfaces.Logger
	opts     LoaderOptions
}

// NewLoader creates a loader writing to db.
func NewLoader(source Source, db *gorm.DB, eventBus interfaces.EventBus, logger interfaces.Logger, opts LoaderOptions) *Loader {
	return &Loader{
		source:   source,
		db:       db,
		eventBus: eventBus,
		logger:   logger.WithFields(interfaces.String("component", "loader")),
		opts:     opts,
	}
}

// Run performs the import. In dry-run mode every row is transformed and
// written, then the transaction is rolled back.
func (l *Loader) Run(ctx context.Context) (stats *Stats, err error) {
	start := time.Now()
	stats = &Stats{DryRun: l.opts.DryRun}
	defer func() {
		stats.Duration = time.Since(start)
		metrics.RecordImportRun(stats.Duration, err)
	}()

	writers, err := l.source.Writers(ctx)
	if err != nil {
		l.logger.Error("Failed to load writer lookup", interfaces.Error(err))
		return stats, err
	}

	var imported []interfaces.Event
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enums, err := Bootstrap(ctx, tx, l.opts.Schema)
		if err != nil {
			return err
		}

		w := NewWriter(tx, l.opts.Schema, enums, l.logger)
		if err := w.LoadGenres(ctx); err != nil {
			return err
		}

		err = l.source.Movies(ctx, func(row legacy.MovieRow) error {
			stats.Rows++
			metrics.ImportRowsRead.Inc()

			movie, err := Transform(row, writers, l.opts.Transform)
			if err != nil {
				l.logger.Error("Failed to transform legacy row",
					interfaces.String("legacy_id", row.ID),
					interfaces.Error(err))
				return err
			}

			result, err := w.WriteMovie(ctx, movie)
			if err != nil {
				return err
			}

			if result.FilmworkInserted {
				stats.Movies++
				imported = append(imported, NewFilmworkImportedEvent(movie, result))
			} else {
				stats.Skipped++
			}
			stats.Genres += result.GenresCreated
			stats.Persons += result.PersonsInserted
			return nil
		})
		if err != nil {
			return err
		}

		if l.opts.DryRun {
			return errDryRun
		}
		return nil
	})

	stats.Duration = time.Since(start)
	if errors.Is(err, errDryRun) {
		l.logger.Info("Dry run finished, changes rolled back", statsFields(stats)...)
		return stats, nil
	}
	if err != nil {
		l.logger.Error("Import failed, changes rolled back", interfaces.Error(err))
		return stats, err
	}

	l.publish(ctx, imported)
	l.publish(ctx, []interfaces.Event{NewImportCompletedEvent(stats)})

	l.logger.Info("Import completed", statsFields(stats)...)
	return stats, nil
}

func (l *Loader) publish(ctx context.Context, evts []interfaces.Event) {
	if l.eventBus == nil {
		return
	}
	for _, evt := range evts {
		if err := l.eventBus.Publish(ctx, evt); err != nil {
			l.logger.Warn("Failed to publish import event",
				interfaces.String("event_type", evt.EventType()),
				interfaces.Error(err))
		}
	}
}

func statsFields(s *Stats) []interfaces.Field {
	return []interfaces.Field{
		interfaces.Int("rows", s.Rows),
		interfaces.Int("movies", s.Movies),
		interfaces.Int("genres", s.Genres),
		interfaces.Int("persons", s.Persons),
		interfaces.Int("skipped", s.Skipped),
		interfaces.Duration("duration", s.Duration),
	}
}
