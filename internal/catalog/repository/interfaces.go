package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/narwhalmedia/catalog/internal/catalog/domain"
	"github.com/narwhalmedia/catalog/pkg/models"
)

// FilmworkRepository defines filmwork data access.
type FilmworkRepository interface {
	CreateFilmwork(ctx context.Context, filmwork *models.Filmwork) error
	GetFilmwork(ctx context.Context, id uuid.UUID) (*models.Filmwork, error)
	UpdateFilmwork(ctx context.Context, filmwork *models.Filmwork) error
	DeleteFilmwork(ctx context.Context, id uuid.UUID) error
	CountFilmworks(ctx context.Context, filter domain.MovieFilter) (int64, error)
	ListFilmworks(ctx context.Context, filter domain.MovieFilter, limit, offset int) ([]*models.Filmwork, error)

	AddGenre(ctx context.Context, filmworkID, genreID uuid.UUID) error
	AddCredit(ctx context.Context, filmworkID, personID, roleID uuid.UUID) error

	// GenreNames returns the genre names of each filmwork.
	GenreNames(ctx context.Context, filmworkIDs []uuid.UUID) ([]domain.NameRow, error)
	// Credits returns every person credited on the filmworks.
	Credits(ctx context.Context, filmworkIDs []uuid.UUID) ([]domain.CreditRow, error)
}

// TaxonomyRepository defines data access for genres, careers and filmwork types.
type TaxonomyRepository interface {
	CreateGenre(ctx context.Context, genre *models.Genre) error
	UpdateGenre(ctx context.Context, genre *models.Genre) error
	DeleteGenre(ctx context.Context, id uuid.UUID) error
	ListGenres(ctx context.Context) ([]*models.Genre, error)

	CreateCareer(ctx context.Context, career *models.Career) error
	GetCareerByName(ctx context.Context, name string) (*models.Career, error)
	DeleteCareer(ctx context.Context, id uuid.UUID) error

	CreateFilmworkType(ctx context.Context, filmworkType *models.FilmworkType) error
	DeleteFilmworkType(ctx context.Context, id uuid.UUID) error
	// FilmworkTypeNames maps every filmwork type id to its name.
	FilmworkTypeNames(ctx context.Context) (map[uuid.UUID]string, error)
}

// PersonRepository defines person data access.
type PersonRepository interface {
	CreatePerson(ctx context.Context, person *models.Person) error
	GetPerson(ctx context.Context, id uuid.UUID) (*models.Person, error)
	UpdatePerson(ctx context.Context, person *models.Person) error
	DeletePerson(ctx context.Context, id uuid.UUID) error
	AddCareer(ctx context.Context, personID, careerID uuid.UUID) error
	CountPersons(ctx context.Context, filter domain.PersonFilter) (int64, error)
	ListPersons(ctx context.Context, filter domain.PersonFilter, limit, offset int) ([]*models.Person, error)
	// PersonCredits returns the credits of the persons with filmwork titles filled in.
	PersonCredits(ctx context.Context, personIDs []uuid.UUID) ([]domain.CreditRow, error)
}

// Repository aggregates all repository interfaces.
type Repository interface {
	FilmworkRepository
	TaxonomyRepository
	PersonRepository

	// Ping checks the store is reachable.
	Ping(ctx context.Context) error
}
