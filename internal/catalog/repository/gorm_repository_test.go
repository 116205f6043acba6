package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/narwhalmedia/catalog/internal/catalog/domain"
	"github.com/narwhalmedia/catalog/internal/catalog/repository"
	"github.com/narwhalmedia/catalog/pkg/database"
	pkgerrors "github.com/narwhalmedia/catalog/pkg/errors"
	"github.com/narwhalmedia/catalog/pkg/logger"
	"github.com/narwhalmedia/catalog/pkg/models"
)

func ptr[T any](v T) *T { return &v }

type CatalogRepositoryTestSuite struct {
	suite.Suite
	ctx  context.Context
	db   *gorm.DB
	repo *repository.GormRepository

	movieType  *models.FilmworkType
	showType   *models.FilmworkType
	actor      *models.Career
	director   *models.Career
	drama      *models.Genre
	alien      *models.Filmwork
	brazil     *models.Filmwork
	twinPeaks  *models.Filmwork
	sigourney  *models.Person
	terryGilli *models.Person
}

func (s *CatalogRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()

	db, err := database.OpenSQLiteMemory(logger.NewNoop())
	s.Require().NoError(err)
	s.Require().NoError(database.RunMigrations(db, "", logger.NewNoop()))
	s.db = db
	s.repo = repository.NewGormRepository(db, "")

	s.movieType = &models.FilmworkType{ID: uuid.New(), Name: models.TypeMovie}
	s.showType = &models.FilmworkType{ID: uuid.New(), Name: models.TypeTVShow}
	s.Require().NoError(s.repo.CreateFilmworkType(s.ctx, s.movieType))
	s.Require().NoError(s.repo.CreateFilmworkType(s.ctx, s.showType))

	s.actor = &models.Career{ID: uuid.New(), Name: models.CareerActor}
	s.director = &models.Career{ID: uuid.New(), Name: models.CareerDirector}
	s.Require().NoError(s.repo.CreateCareer(s.ctx, s.actor))
	s.Require().NoError(s.repo.CreateCareer(s.ctx, s.director))

	s.drama = &models.Genre{ID: uuid.New(), Name: "Drama"}
	s.Require().NoError(s.repo.CreateGenre(s.ctx, s.drama))

	s.alien = &models.Filmwork{ID: uuid.New(), Title: "Alien", Rating: ptr(8.5), TypeID: &s.movieType.ID}
	s.brazil = &models.Filmwork{ID: uuid.New(), Title: "Brazil", TypeID: &s.movieType.ID}
	s.twinPeaks = &models.Filmwork{ID: uuid.New(), Title: "Twin Peaks", TypeID: &s.showType.ID}
	for _, f := range []*models.Filmwork{s.twinPeaks, s.brazil, s.alien} {
		s.Require().NoError(s.repo.CreateFilmwork(s.ctx, f))
	}

	s.sigourney = &models.Person{ID: uuid.New(), FullName: "Sigourney Weaver"}
	s.terryGilli = &models.Person{ID: uuid.New(), FullName: "Terry Gilliam"}
	s.Require().NoError(s.repo.CreatePerson(s.ctx, s.sigourney))
	s.Require().NoError(s.repo.CreatePerson(s.ctx, s.terryGilli))

	s.Require().NoError(s.repo.AddCareer(s.ctx, s.sigourney.ID, s.actor.ID))
	s.Require().NoError(s.repo.AddCareer(s.ctx, s.terryGilli.ID, s.director.ID))
	s.Require().NoError(s.repo.AddCredit(s.ctx, s.alien.ID, s.sigourney.ID, s.actor.ID))
	s.Require().NoError(s.repo.AddCredit(s.ctx, s.brazil.ID, s.terryGilli.ID, s.director.ID))
	s.Require().NoError(s.repo.AddGenre(s.ctx, s.alien.ID, s.drama.ID))
}

func (s *CatalogRepositoryTestSuite) TearDownTest() {
	s.NoError(database.Close(s.db))
}

func (s *CatalogRepositoryTestSuite) count(table string) int64 {
	var n int64
	s.Require().NoError(s.db.Table(table).Count(&n).Error)
	return n
}

func (s *CatalogRepositoryTestSuite) TestListFilmworksOrderedByTitle() {
	items, err := s.repo.ListFilmworks(s.ctx, domain.MovieFilter{}, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(items, 3)
	s.Equal("Alien", items[0].Title)
	s.Equal("Brazil", items[1].Title)
	s.Equal("Twin Peaks", items[2].Title)

	page, err := s.repo.ListFilmworks(s.ctx, domain.MovieFilter{}, 1, 1)
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Equal("Brazil", page[0].Title)
}

func (s *CatalogRepositoryTestSuite) TestFilmworkTypeFilter() {
	count, err := s.repo.CountFilmworks(s.ctx, domain.MovieFilter{Type: models.TypeTVShow})
	s.Require().NoError(err)
	s.Equal(int64(1), count)

	items, err := s.repo.ListFilmworks(s.ctx, domain.MovieFilter{Type: models.TypeMovie}, 10, 0)
	s.Require().NoError(err)
	s.Len(items, 2)

	count, err = s.repo.CountFilmworks(s.ctx, domain.MovieFilter{Type: "documentary"})
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *CatalogRepositoryTestSuite) TestGetFilmworkNotFound() {
	_, err := s.repo.GetFilmwork(s.ctx, uuid.New())
	s.ErrorIs(err, domain.ErrMovieNotFound)
}

func (s *CatalogRepositoryTestSuite) TestCreateFilmworkRejectsNegativeRating() {
	err := s.repo.CreateFilmwork(s.ctx, &models.Filmwork{ID: uuid.New(), Title: "Bad", Rating: ptr(-1.0)})
	s.True(pkgerrors.IsBadRequest(err))
}

func (s *CatalogRepositoryTestSuite) TestUpdateFilmwork() {
	s.alien.Description = "In space no one can hear you scream."
	s.Require().NoError(s.repo.UpdateFilmwork(s.ctx, s.alien))

	got, err := s.repo.GetFilmwork(s.ctx, s.alien.ID)
	s.Require().NoError(err)
	s.Equal(s.alien.Description, got.Description)
}

func (s *CatalogRepositoryTestSuite) TestAssociationsAreUnique() {
	s.Require().NoError(s.repo.AddGenre(s.ctx, s.alien.ID, s.drama.ID))
	s.Require().NoError(s.repo.AddCredit(s.ctx, s.alien.ID, s.sigourney.ID, s.actor.ID))
	s.Require().NoError(s.repo.AddCareer(s.ctx, s.sigourney.ID, s.actor.ID))

	s.Equal(int64(1), s.count(models.TableGenreFilmwork))
	s.Equal(int64(2), s.count(models.TablePersonFilmwork))
	s.Equal(int64(2), s.count(models.TableCareerPerson))
}

func (s *CatalogRepositoryTestSuite) TestGenreNamesAndCredits() {
	ids := []uuid.UUID{s.alien.ID, s.brazil.ID}

	genres, err := s.repo.GenreNames(s.ctx, ids)
	s.Require().NoError(err)
	s.Equal([]domain.NameRow{{FilmworkID: s.alien.ID, Name: "Drama"}}, genres)

	credits, err := s.repo.Credits(s.ctx, ids)
	s.Require().NoError(err)
	s.Require().Len(credits, 2)
	s.Equal("Sigourney Weaver", credits[0].FullName)
	s.Equal(s.actor.ID, credits[0].RoleID)
	s.Equal("Terry Gilliam", credits[1].FullName)
	s.Equal(s.brazil.ID, credits[1].FilmworkID)

	empty, err := s.repo.Credits(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(empty)
}

func (s *CatalogRepositoryTestSuite) TestPersonsByCareer() {
	count, err := s.repo.CountPersons(s.ctx, domain.PersonFilter{})
	s.Require().NoError(err)
	s.Equal(int64(2), count)

	actors, err := s.repo.ListPersons(s.ctx, domain.PersonFilter{CareerID: &s.actor.ID}, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(actors, 1)
	s.Equal("Sigourney Weaver", actors[0].FullName)

	credits, err := s.repo.PersonCredits(s.ctx, []uuid.UUID{s.sigourney.ID})
	s.Require().NoError(err)
	s.Require().Len(credits, 1)
	s.Equal("Alien", credits[0].Title)
}

func (s *CatalogRepositoryTestSuite) TestGetCareerByName() {
	career, err := s.repo.GetCareerByName(s.ctx, models.CareerActor)
	s.Require().NoError(err)
	s.Equal(s.actor.ID, career.ID)

	_, err = s.repo.GetCareerByName(s.ctx, models.CareerWriter)
	s.ErrorIs(err, domain.ErrCareerNotFound)
}

func (s *CatalogRepositoryTestSuite) TestDeleteCareerInUseIsRestricted() {
	err := s.repo.DeleteCareer(s.ctx, s.actor.ID)
	s.True(pkgerrors.IsConflict(err))

	unused := &models.Career{ID: uuid.New(), Name: "composer"}
	s.Require().NoError(s.repo.CreateCareer(s.ctx, unused))
	s.NoError(s.repo.DeleteCareer(s.ctx, unused.ID))
}

func (s *CatalogRepositoryTestSuite) TestDeleteFilmworkTypeOrphansFilmworks() {
	s.Require().NoError(s.repo.DeleteFilmworkType(s.ctx, s.showType.ID))

	got, err := s.repo.GetFilmwork(s.ctx, s.twinPeaks.ID)
	s.Require().NoError(err)
	s.Nil(got.TypeID)

	names, err := s.repo.FilmworkTypeNames(s.ctx)
	s.Require().NoError(err)
	s.Equal(map[uuid.UUID]string{s.movieType.ID: models.TypeMovie}, names)
}

func (s *CatalogRepositoryTestSuite) TestDeleteFilmworkCascades() {
	s.Require().NoError(s.repo.DeleteFilmwork(s.ctx, s.alien.ID))

	s.Zero(s.count(models.TableGenreFilmwork))
	s.Equal(int64(1), s.count(models.TablePersonFilmwork))
	s.Equal(int64(2), s.count(models.TablePerson))

	err := s.repo.DeleteFilmwork(s.ctx, s.alien.ID)
	s.True(pkgerrors.IsNotFound(err))
}

func (s *CatalogRepositoryTestSuite) TestDeletePersonCascades() {
	s.Require().NoError(s.repo.DeletePerson(s.ctx, s.sigourney.ID))

	s.Equal(int64(1), s.count(models.TableCareerPerson))
	s.Equal(int64(1), s.count(models.TablePersonFilmwork))
	s.Equal(int64(3), s.count(models.TableFilmwork))
}

func (s *CatalogRepositoryTestSuite) TestGenreCRUD() {
	s.drama.Description = "Serious stuff"
	s.Require().NoError(s.repo.UpdateGenre(s.ctx, s.drama))

	genres, err := s.repo.ListGenres(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(genres, 1)
	s.Equal("Serious stuff", genres[0].Description)

	s.Require().NoError(s.repo.DeleteGenre(s.ctx, s.drama.ID))
	s.Zero(s.count(models.TableGenre))
	s.Zero(s.count(models.TableGenreFilmwork))
}

func (s *CatalogRepositoryTestSuite) TestPing() {
	s.NoError(s.repo.Ping(s.ctx))
}

func TestCatalogRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogRepositoryTestSuite))
}
