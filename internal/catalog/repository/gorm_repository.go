package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/narwhalmedia/catalog/internal/catalog/domain"
	pkgerrors "github.com/narwhalmedia/catalog/pkg/errors"
	"github.com/narwhalmedia/catalog/pkg/models"
	"github.com/narwhalmedia/catalog/pkg/repository"
)

// GormRepository implements the repository interfaces using GORM.
type GormRepository struct {
	db     *gorm.DB
	schema models.Schema
}

// NewGormRepository creates a new GORM repository on the tables of schema.
func NewGormRepository(db *gorm.DB, schema string) *GormRepository {
	return &GormRepository{
		db:     db,
		schema: models.Schema(schema),
	}
}

var _ Repository = (*GormRepository)(nil)

func (r *GormRepository) table(ctx context.Context, name string) *gorm.DB {
	return repository.WithContext(ctx, r.db, r.schema, name)
}

func (r *GormRepository) tableAs(ctx context.Context, name, alias string) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.schema.Table(name) + " AS " + alias)
}

// deleteLinks removes the association rows of table whose column equals id.
func (r *GormRepository) deleteLinks(tx *gorm.DB, table string, model interface{}, column string, id uuid.UUID) error {
	if err := tx.Table(r.schema.Table(table)).Where(column+" = ?", id).Delete(model).Error; err != nil {
		return fmt.Errorf("failed to delete %s: %w", table, err)
	}
	return nil
}

// Ping checks the database connection.
func (r *GormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// CreateFilmwork creates a new filmwork.
func (r *GormRepository) CreateFilmwork(ctx context.Context, filmwork *models.Filmwork) error {
	return repository.Create(r.table(ctx, models.TableFilmwork), filmwork)
}

// GetFilmwork retrieves a filmwork by ID.
func (r *GormRepository) GetFilmwork(ctx context.Context, id uuid.UUID) (*models.Filmwork, error) {
	filmwork, err := repository.FindByID[models.Filmwork](r.table(ctx, models.TableFilmwork), id)
	if pkgerrors.IsNotFound(err) {
		return nil, domain.ErrMovieNotFound
	}
	return filmwork, err
}

// UpdateFilmwork updates a filmwork.
func (r *GormRepository) UpdateFilmwork(ctx context.Context, filmwork *models.Filmwork) error {
	return repository.Update(r.table(ctx, models.TableFilmwork), filmwork)
}

// DeleteFilmwork deletes a filmwork together with its genre links and credits.
func (r *GormRepository) DeleteFilmwork(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.deleteLinks(tx, models.TableGenreFilmwork, &models.GenreFilmwork{}, "filmwork_id", id); err != nil {
			return err
		}
		if err := r.deleteLinks(tx, models.TablePersonFilmwork, &models.PersonFilmwork{}, "filmwork_id", id); err != nil {
			return err
		}
		return repository.Delete[models.Filmwork](tx.Table(r.schema.Table(models.TableFilmwork)), id)
	})
}

func (r *GormRepository) filmworkQuery(ctx context.Context, filter domain.MovieFilter) *gorm.DB {
	query := r.table(ctx, models.TableFilmwork)
	if filter.Type != "" {
		types := r.table(ctx, models.TableFilmworkType).Select("id").Where("name = ?", filter.Type)
		query = query.Where("type_id IN (?)", types)
	}
	return query
}

// CountFilmworks counts the filmworks matching filter.
func (r *GormRepository) CountFilmworks(ctx context.Context, filter domain.MovieFilter) (int64, error) {
	var count int64
	if err := r.filmworkQuery(ctx, filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count filmworks: %w", err)
	}
	return count, nil
}

// ListFilmworks lists filmworks matching filter ordered by title.
func (r *GormRepository) ListFilmworks(ctx context.Context, filter domain.MovieFilter, limit, offset int) ([]*models.Filmwork, error) {
	items, err := repository.List[models.Filmwork](r.filmworkQuery(ctx, filter), "title, id", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list filmworks: %w", err)
	}
	return items, nil
}

// AddGenre links a genre to a filmwork. Linking twice is a no-op.
func (r *GormRepository) AddGenre(ctx context.Context, filmworkID, genreID uuid.UUID) error {
	link := &models.GenreFilmwork{ID: uuid.New(), FilmworkID: filmworkID, GenreID: genreID}
	_, err := repository.InsertIgnore(r.table(ctx, models.TableGenreFilmwork), link)
	return err
}

// AddCredit credits a person on a filmwork in a role. Crediting twice is a no-op.
func (r *GormRepository) AddCredit(ctx context.Context, filmworkID, personID, roleID uuid.UUID) error {
	credit := &models.PersonFilmwork{ID: uuid.New(), FilmworkID: filmworkID, PersonID: personID, RoleID: roleID}
	_, err := repository.InsertIgnore(r.table(ctx, models.TablePersonFilmwork), credit)
	return err
}

// GenreNames returns the genre names of each filmwork, ordered by name.
func (r *GormRepository) GenreNames(ctx context.Context, filmworkIDs []uuid.UUID) ([]domain.NameRow, error) {
	if len(filmworkIDs) == 0 {
		return nil, nil
	}

	var rows []domain.NameRow
	err := r.tableAs(ctx, models.TableGenreFilmwork, "gf").
		Select("gf.filmwork_id, g.name").
		Joins("JOIN " + r.schema.Table(models.TableGenre) + " AS g ON g.id = gf.genre_id").
		Where("gf.filmwork_id IN ?", filmworkIDs).
		Order("g.name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load genres: %w", err)
	}
	return rows, nil
}

// Credits returns the credits of the filmworks ordered by person name.
func (r *GormRepository) Credits(ctx context.Context, filmworkIDs []uuid.UUID) ([]domain.CreditRow, error) {
	if len(filmworkIDs) == 0 {
		return nil, nil
	}

	var rows []domain.CreditRow
	err := r.tableAs(ctx, models.TablePersonFilmwork, "pf").
		Select("pf.filmwork_id, pf.person_id, pf.role_id, p.full_name").
		Joins("JOIN " + r.schema.Table(models.TablePerson) + " AS p ON p.id = pf.person_id").
		Where("pf.filmwork_id IN ?", filmworkIDs).
		Order("p.full_name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load credits: %w", err)
	}
	return rows, nil
}

// CreateGenre creates a new genre.
func (r *GormRepository) CreateGenre(ctx context.Context, genre *models.Genre) error {
	return repository.Create(r.table(ctx, models.TableGenre), genre)
}

// UpdateGenre updates a genre.
func (r *GormRepository) UpdateGenre(ctx context.Context, genre *models.Genre) error {
	return repository.Update(r.table(ctx, models.TableGenre), genre)
}

// DeleteGenre deletes a genre and unlinks it from every filmwork.
func (r *GormRepository) DeleteGenre(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.deleteLinks(tx, models.TableGenreFilmwork, &models.GenreFilmwork{}, "genre_id", id); err != nil {
			return err
		}
		return repository.Delete[models.Genre](tx.Table(r.schema.Table(models.TableGenre)), id)
	})
}

// ListGenres lists all genres by name.
func (r *GormRepository) ListGenres(ctx context.Context) ([]*models.Genre, error) {
	var items []*models.Genre
	if err := r.table(ctx, models.TableGenre).Order("name, id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	return items, nil
}

// CreateCareer creates a new career.
func (r *GormRepository) CreateCareer(ctx context.Context, career *models.Career) error {
	return repository.Create(r.table(ctx, models.TableCareer), career)
}

// GetCareerByName retrieves the oldest career with the given name.
func (r *GormRepository) GetCareerByName(ctx context.Context, name string) (*models.Career, error) {
	career, err := repository.FindOneBy[models.Career](r.table(ctx, models.TableCareer), "name = ?", name)
	if pkgerrors.IsNotFound(err) {
		return nil, domain.ErrCareerNotFound
	}
	return career, err
}

// DeleteCareer deletes a career that is not used as a role on any filmwork.
func (r *GormRepository) DeleteCareer(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var credits int64
		err := tx.Table(r.schema.Table(models.TablePersonFilmwork)).Where("role_id = ?", id).Count(&credits).Error
		if err != nil {
			return err
		}
		if credits > 0 {
			return pkgerrors.Conflict("career is still used as a role")
		}

		err = tx.Table(r.schema.Table(models.TableCareerPerson)).Where("career_id = ?", id).Count(&credits).Error
		if err != nil {
			return err
		}
		if credits > 0 {
			return pkgerrors.Conflict("career is still held by a person")
		}

		return repository.Delete[models.Career](tx.Table(r.schema.Table(models.TableCareer)), id)
	})
}

// CreateFilmworkType creates a new filmwork type.
func (r *GormRepository) CreateFilmworkType(ctx context.Context, filmworkType *models.FilmworkType) error {
	return repository.Create(r.table(ctx, models.TableFilmworkType), filmworkType)
}

// DeleteFilmworkType deletes a filmwork type. Filmworks of that type are kept
// with no type.
func (r *GormRepository) DeleteFilmworkType(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Table(r.schema.Table(models.TableFilmwork)).
			Model(&models.Filmwork{}).
			Where("type_id = ?", id).
			Updates(map[string]interface{}{"type_id": nil}).Error
		if err != nil {
			return fmt.Errorf("failed to detach filmworks: %w", err)
		}
		return repository.Delete[models.FilmworkType](tx.Table(r.schema.Table(models.TableFilmworkType)), id)
	})
}

// FilmworkTypeNames maps every filmwork type id to its name.
func (r *GormRepository) FilmworkTypeNames(ctx context.Context) (map[uuid.UUID]string, error) {
	var types []models.FilmworkType
	if err := r.table(ctx, models.TableFilmworkType).Find(&types).Error; err != nil {
		return nil, fmt.Errorf("failed to load filmwork types: %w", err)
	}

	names := make(map[uuid.UUID]string, len(types))
	for _, t := range types {
		names[t.ID] = t.Name
	}
	return names, nil
}

// CreatePerson creates a new person.
func (r *GormRepository) CreatePerson(ctx context.Context, person *models.Person) error {
	return repository.Create(r.table(ctx, models.TablePerson), person)
}

// GetPerson retrieves a person by ID.
func (r *GormRepository) GetPerson(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	return repository.FindByID[models.Person](r.table(ctx, models.TablePerson), id)
}

// UpdatePerson updates a person.
func (r *GormRepository) UpdatePerson(ctx context.Context, person *models.Person) error {
	return repository.Update(r.table(ctx, models.TablePerson), person)
}

// DeletePerson deletes a person with their careers and credits.
func (r *GormRepository) DeletePerson(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.deleteLinks(tx, models.TableCareerPerson, &models.CareerPerson{}, "person_id", id); err != nil {
			return err
		}
		if err := r.deleteLinks(tx, models.TablePersonFilmwork, &models.PersonFilmwork{}, "person_id", id); err != nil {
			return err
		}
		return repository.Delete[models.Person](tx.Table(r.schema.Table(models.TablePerson)), id)
	})
}

// AddCareer records that a person holds a career. Adding twice is a no-op.
func (r *GormRepository) AddCareer(ctx context.Context, personID, careerID uuid.UUID) error {
	link := &models.CareerPerson{ID: uuid.New(), CareerID: careerID, PersonID: personID}
	_, err := repository.InsertIgnore(r.table(ctx, models.TableCareerPerson), link)
	return err
}

func (r *GormRepository) personQuery(ctx context.Context, filter domain.PersonFilter) *gorm.DB {
	query := r.table(ctx, models.TablePerson)
	if filter.CareerID != nil {
		holders := r.table(ctx, models.TableCareerPerson).Select("person_id").Where("career_id = ?", *filter.CareerID)
		query = query.Where("id IN (?)", holders)
	}
	return query
}

// CountPersons counts the persons matching filter.
func (r *GormRepository) CountPersons(ctx context.Context, filter domain.PersonFilter) (int64, error) {
	var count int64
	if err := r.personQuery(ctx, filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count persons: %w", err)
	}
	return count, nil
}

// ListPersons lists persons matching filter ordered by name.
func (r *GormRepository) ListPersons(ctx context.Context, filter domain.PersonFilter, limit, offset int) ([]*models.Person, error) {
	items, err := repository.List[models.Person](r.personQuery(ctx, filter), "full_name, id", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	return items, nil
}

// PersonCredits returns the credits of the persons ordered by filmwork title.
func (r *GormRepository) PersonCredits(ctx context.Context, personIDs []uuid.UUID) ([]domain.CreditRow, error) {
	if len(personIDs) == 0 {
		return nil, nil
	}

	var rows []domain.CreditRow
	err := r.tableAs(ctx, models.TablePersonFilmwork, "pf").
		Select("pf.filmwork_id, pf.person_id, pf.role_id, f.title").
		Joins("JOIN " + r.schema.Table(models.TableFilmwork) + " AS f ON f.id = pf.filmwork_id").
		Where("pf.person_id IN ?", personIDs).
		Order("f.title").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load person credits: %w", err)
	}
	return rows, nil
}
