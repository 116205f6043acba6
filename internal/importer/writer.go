package importer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/narwhalmedia/catalog/internal/metrics"
	"github.com/narwhalmedia/catalog/pkg/interfaces"
	"github.com/narwhalmedia/catalog/pkg/models"
	"github.com/narwhalmedia/catalog/pkg/repository"
)

// WriteResult counts what one movie added to the store.
type WriteResult struct {
	FilmworkInserted bool
	GenresCreated    int
	PersonsInserted  int
	LinksInserted    int
}

// Writer inserts transformed movies. Every insert skips rows that collide
// with an existing unique key, so writing the same movie twice is a no-op.
type Writer struct {
	db     *gorm.DB
	schema models.Schema
	enums  *Enumerations
	genres map[string]uuid.UUID
	logger interfaces.Logger
}

// NewWriter creates a writer on db, normally an open transaction.
func NewWriter(db *gorm.DB, schema models.Schema, enums *Enumerations, logger interfaces.Logger) *Writer {
	return &Writer{
		db:     db,
		schema: schema,
		enums:  enums,
		genres: make(map[string]uuid.UUID),
		logger: logger,
	}
}

// LoadGenres seeds the genre name index from the store. When several genres
// share a name the oldest one wins.
func (w *Writer) LoadGenres(ctx context.Context) error {
	var genres []models.Genre
	err := w.table(ctx, models.TableGenre).Order("created_at, id").Find(&genres).Error
	if err != nil {
		return fmt.Errorf("failed to load genres: %w", err)
	}
	for _, g := range genres {
		if _, ok := w.genres[g.Name]; !ok {
			w.genres[g.Name] = g.ID
		}
	}
	return nil
}

// WriteMovie inserts the filmwork, its genres and its credits.
func (w *Writer) WriteMovie(ctx context.Context, movie *Movie) (*WriteResult, error) {
	result := &WriteResult{}

	typeID, err := w.enums.TypeID(models.TypeMovie)
	if err != nil {
		return nil, err
	}

	filmwork := &models.Filmwork{
		ID:          movie.ID,
		Title:       movie.Title,
		Description: movie.Description,
		Rating:      movie.Rating,
		TypeID:      &typeID,
	}
	inserted, err := repository.InsertIgnore(w.table(ctx, models.TableFilmwork), filmwork)
	if err != nil {
		return nil, fmt.Errorf("movie %s: failed to insert filmwork: %w", movie.LegacyID, err)
	}
	metrics.RecordImportWrite(models.TableFilmwork, inserted)
	result.FilmworkInserted = inserted

	for _, name := range movie.Genres {
		created, err := w.writeGenre(ctx, movie.ID, name)
		if err != nil {
			return nil, fmt.Errorf("movie %s: genre %s: %w", movie.LegacyID, name, err)
		}
		if created {
			result.GenresCreated++
		}
	}

	for _, person := range movie.Persons {
		personInserted, links, err := w.writePerson(ctx, movie.ID, person)
		if err != nil {
			return nil, fmt.Errorf("movie %s: person %s: %w", movie.LegacyID, person.Name, err)
		}
		if personInserted {
			result.PersonsInserted++
		}
		result.LinksInserted += links
	}

	return result, nil
}

func (w *Writer) writeGenre(ctx context.Context, filmworkID uuid.UUID, name string) (bool, error) {
	genreID, known := w.genres[name]
	created := false
	if !known {
		genre := &models.Genre{ID: uuid.New(), Name: name}
		inserted, err := repository.InsertIgnore(w.table(ctx, models.TableGenre), genre)
		if err != nil {
			return false, err
		}
		metrics.RecordImportWrite(models.TableGenre, inserted)
		genreID, created = genre.ID, inserted
		w.genres[name] = genreID
	}

	link := &models.GenreFilmwork{ID: uuid.New(), FilmworkID: filmworkID, GenreID: genreID}
	inserted, err := repository.InsertIgnore(w.table(ctx, models.TableGenreFilmwork), link)
	if err != nil {
		return false, err
	}
	metrics.RecordImportWrite(models.TableGenreFilmwork, inserted)

	return created, nil
}

func (w *Writer) writePerson(ctx context.Context, filmworkID uuid.UUID, p Person) (bool, int, error) {
	careerID, err := w.enums.CareerID(p.Role)
	if err != nil {
		w.logger.Error("Career lookup failed",
			interfaces.String("career", p.Role),
			interfaces.Error(err))
		return false, 0, err
	}

	person := &models.Person{ID: p.ID, FullName: p.Name}
	inserted, err := repository.InsertIgnore(w.table(ctx, models.TablePerson), person)
	if err != nil {
		return false, 0, err
	}
	metrics.RecordImportWrite(models.TablePerson, inserted)

	links := 0
	careerLink := &models.CareerPerson{ID: uuid.New(), CareerID: careerID, PersonID: p.ID}
	ok, err := repository.InsertIgnore(w.table(ctx, models.TableCareerPerson), careerLink)
	if err != nil {
		return false, 0, err
	}
	metrics.RecordImportWrite(models.TableCareerPerson, ok)
	if ok {
		links++
	}

	credit := &models.PersonFilmwork{ID: uuid.New(), FilmworkID: filmworkID, PersonID: p.ID, RoleID: careerID}
	ok, err = repository.InsertIgnore(w.table(ctx, models.TablePersonFilmwork), credit)
	if err != nil {
		return false, 0, err
	}
	metrics.RecordImportWrite(models.TablePersonFilmwork, ok)
	if ok {
		links++
	}

	return inserted, links, nil
}

func (w *Writer) table(ctx context.Context, name string) *gorm.DB {
	return repository.WithContext(ctx, w.db, w.schema, name)
}
