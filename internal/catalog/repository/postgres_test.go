package repository_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/narwhalmedia/catalog/internal/catalog/domain"
	"github.com/narwhalmedia/catalog/internal/catalog/repository"
	pkgerrors "github.com/narwhalmedia/catalog/pkg/errors"
	"github.com/narwhalmedia/catalog/pkg/models"
	pkgrepository "github.com/narwhalmedia/catalog/pkg/repository"
	"github.com/narwhalmedia/catalog/test/testutil"
)

// PostgresRepositoryTestSuite runs against real foreign keys and checks.
type PostgresRepositoryTestSuite struct {
	suite.Suite
	ctx       context.Context
	container *testutil.PostgresContainer
	repo      *repository.GormRepository
}

func (s *PostgresRepositoryTestSuite) SetupSuite() {
	s.ctx = context.Background()
	s.container = testutil.SetupPostgresContainer(s.T())
	s.repo = repository.NewGormRepository(s.container.DB, testutil.Schema)
}

func (s *PostgresRepositoryTestSuite) SetupTest() {
	s.Require().NoError(s.container.TruncateCatalog())
}

func (s *PostgresRepositoryTestSuite) credit() (*models.Filmwork, *models.Person, *models.Career) {
	film := testutil.CreateTestFilmwork("Alien", testutil.Float(8.5))
	person := testutil.CreateTestPerson("Sigourney Weaver")
	career := testutil.CreateTestCareer(models.CareerActor)

	s.Require().NoError(s.repo.CreateFilmwork(s.ctx, film))
	s.Require().NoError(s.repo.CreatePerson(s.ctx, person))
	s.Require().NoError(s.repo.CreateCareer(s.ctx, career))
	s.Require().NoError(s.repo.AddCareer(s.ctx, person.ID, career.ID))
	s.Require().NoError(s.repo.AddCredit(s.ctx, film.ID, person.ID, career.ID))
	return film, person, career
}

func (s *PostgresRepositoryTestSuite) TestRoleForeignKeyRestrictsDelete() {
	_, _, career := s.credit()

	// Bypass the repository check to hit the constraint itself.
	table := pkgrepository.WithContext(s.ctx, s.container.DB, testutil.Schema, models.TableCareer)
	err := pkgrepository.Delete[models.Career](table, career.ID)
	s.True(pkgerrors.IsConflict(err))

	s.True(pkgerrors.IsConflict(s.repo.DeleteCareer(s.ctx, career.ID)))
}

func (s *PostgresRepositoryTestSuite) TestDeleteFilmworkCascades() {
	film, _, _ := s.credit()
	s.Require().NoError(s.repo.AddGenre(s.ctx, film.ID, s.genre("Horror")))

	s.Require().NoError(s.repo.DeleteFilmwork(s.ctx, film.ID))

	s.Zero(s.container.Count(s.T(), models.TablePersonFilmwork))
	s.Zero(s.container.Count(s.T(), models.TableGenreFilmwork))
	s.Equal(int64(1), s.container.Count(s.T(), models.TablePerson))

	_, err := s.repo.GetFilmwork(s.ctx, film.ID)
	s.ErrorIs(err, domain.ErrMovieNotFound)
}

func (s *PostgresRepositoryTestSuite) TestRatingCheckConstraint() {
	film := testutil.CreateTestFilmwork("Broken", testutil.Float(-1))
	table := pkgrepository.WithContext(s.ctx, s.container.DB, testutil.Schema, models.TableFilmwork)
	s.Error(table.Create(film).Error)
}

func (s *PostgresRepositoryTestSuite) TestLongTitleAndNameStored() {
	title := strings.Repeat("Long Title ", 100)
	name := strings.Repeat("Name ", 100)

	film := testutil.CreateTestFilmwork(title, nil)
	person := testutil.CreateTestPerson(name)
	s.Require().NoError(s.repo.CreateFilmwork(s.ctx, film))
	s.Require().NoError(s.repo.CreatePerson(s.ctx, person))

	got, err := s.repo.GetFilmwork(s.ctx, film.ID)
	s.Require().NoError(err)
	s.Equal(title, got.Title)
}

func (s *PostgresRepositoryTestSuite) genre(name string) uuid.UUID {
	genre := testutil.CreateTestGenre(name)
	s.Require().NoError(s.repo.CreateGenre(s.ctx, genre))
	return genre.ID
}

func TestPostgresRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(PostgresRepositoryTestSuite))
}
