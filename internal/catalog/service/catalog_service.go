package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/narwhalmedia/catalog/internal/catalog/domain"
	"github.com/narwhalmedia/catalog/internal/catalog/repository"
	"github.com/narwhalmedia/catalog/internal/metrics"
	"github.com/narwhalmedia/catalog/pkg/interfaces"
	"github.com/narwhalmedia/catalog/pkg/models"
	"github.com/narwhalmedia/catalog/pkg/pagination"
)

// Options tunes the catalog service.
type Options struct {
	PageSize int
	CacheTTL time.Duration
}

// CatalogService builds the read projections of the catalog.
type CatalogService struct {
	repo    repository.Repository
	cache   interfaces.Cache
	storage MediaStorage
	logger  interfaces.Logger
	opts    Options

	rolesMu sync.Mutex
	roles   *domain.Roles
}

// NewCatalogService creates a new catalog service. storage may be nil when
// media files are not served.
func NewCatalogService(
	repo repository.Repository,
	cache interfaces.Cache,
	storage MediaStorage,
	logger interfaces.Logger,
	opts Options,
) *CatalogService {
	return &CatalogService{
		repo:    repo,
		cache:   cache,
		storage: storage,
		logger:  logger,
		opts:    opts,
	}
}

// ListMovies returns one page of movie projections ordered by title,
// optionally restricted to a filmwork type.
func (s *CatalogService) ListMovies(ctx context.Context, page, filmworkType string) (*pagination.Envelope[*domain.Movie], error) {
	if filmworkType != "" && !slices.Contains(models.FilmworkTypes, filmworkType) {
		return nil, domain.ErrUnknownType
	}
	filter := domain.MovieFilter{Type: filmworkType}

	count, err := s.repo.CountFilmworks(ctx, filter)
	if err != nil {
		return nil, err
	}

	p, err := pagination.New(count, s.opts.PageSize).Page(page)
	if err != nil {
		return nil, err
	}

	if p.Beyond() {
		env := pagination.Wrap[*domain.Movie](p, nil)
		return &env, nil
	}

	films, err := s.repo.ListFilmworks(ctx, filter, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}

	movies, err := s.project(ctx, films)
	if err != nil {
		return nil, err
	}

	env := pagination.Wrap(p, movies)
	return &env, nil
}

// GetMovie returns the projection of one filmwork.
func (s *CatalogService) GetMovie(ctx context.Context, id uuid.UUID) (*domain.Movie, error) {
	cacheKey := "movie:" + id.String()
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != nil {
		if movie, ok := cached.(*domain.Movie); ok {
			metrics.RecordCacheLookup(true)
			return movie, nil
		}
	}
	metrics.RecordCacheLookup(false)

	film, err := s.repo.GetFilmwork(ctx, id)
	if err != nil {
		return nil, err
	}

	movies, err := s.project(ctx, []*models.Filmwork{film})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, movies[0], s.opts.CacheTTL); err != nil {
		s.logger.Warn("Failed to cache movie", interfaces.String("id", id.String()), interfaces.Error(err))
	}
	return movies[0], nil
}

// ListPersons returns one page of persons ordered by name, optionally only
// those holding the named career.
func (s *CatalogService) ListPersons(ctx context.Context, page, career string) (*pagination.Envelope[*domain.Person], error) {
	var filter domain.PersonFilter
	if career != "" {
		c, err := s.careerByName(ctx, career)
		if err != nil {
			return nil, err
		}
		filter.CareerID = &c.ID
	}

	count, err := s.repo.CountPersons(ctx, filter)
	if err != nil {
		return nil, err
	}

	p, err := pagination.New(count, s.opts.PageSize).Page(page)
	if err != nil {
		return nil, err
	}

	if p.Beyond() {
		env := pagination.Wrap[*domain.Person](p, nil)
		return &env, nil
	}

	persons, err := s.repo.ListPersons(ctx, filter, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(persons))
	for _, person := range persons {
		ids = append(ids, person.ID)
	}
	credits, err := s.repo.PersonCredits(ctx, ids)
	if err != nil {
		return nil, err
	}

	roles, err := s.Roles(ctx)
	if err != nil {
		return nil, err
	}
	roleNames := map[uuid.UUID]string{
		roles.Actor:    models.CareerActor,
		roles.Writer:   models.CareerWriter,
		roles.Director: models.CareerDirector,
	}

	films := make(map[uuid.UUID][]domain.Credit, len(persons))
	for _, c := range credits {
		films[c.PersonID] = append(films[c.PersonID], domain.Credit{
			FilmworkID: c.FilmworkID,
			Title:      c.Title,
			Role:       roleNames[c.RoleID],
		})
	}

	results := make([]*domain.Person, 0, len(persons))
	for _, person := range persons {
		view := &domain.Person{
			ID:       person.ID,
			FullName: person.FullName,
			BirthDay: person.BirthDay,
			Gender:   person.Gender,
			Films:    films[person.ID],
		}
		if view.Films == nil {
			view.Films = []domain.Credit{}
		}
		results = append(results, view)
	}

	env := pagination.Wrap(p, results)
	return &env, nil
}

// MovieFileURL resolves the media file of a filmwork.
func (s *CatalogService) MovieFileURL(ctx context.Context, id uuid.UUID) (string, error) {
	film, err := s.repo.GetFilmwork(ctx, id)
	if err != nil {
		return "", err
	}
	if film.FilePath == "" || s.storage == nil {
		return "", domain.ErrNoMediaFile
	}
	return s.storage.URL(ctx, film.FilePath)
}

// Ready reports whether the catalog store is reachable.
func (s *CatalogService) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// Roles resolves the actor, writer and director careers by name. A
// successful lookup is kept for the life of the service.
func (s *CatalogService) Roles(ctx context.Context) (*domain.Roles, error) {
	s.rolesMu.Lock()
	defer s.rolesMu.Unlock()

	if s.roles != nil {
		return s.roles, nil
	}

	ids := make(map[string]uuid.UUID, len(models.Careers))
	for _, name := range models.Careers {
		career, err := s.careerByName(ctx, name)
		if err != nil {
			return nil, err
		}
		ids[name] = career.ID
	}

	s.roles = &domain.Roles{
		Actor:    ids[models.CareerActor],
		Writer:   ids[models.CareerWriter],
		Director: ids[models.CareerDirector],
	}
	return s.roles, nil
}

func (s *CatalogService) careerByName(ctx context.Context, name string) (*models.Career, error) {
	career, err := s.repo.GetCareerByName(ctx, name)
	if err != nil {
		s.logger.Error("Career lookup failed",
			interfaces.String("career", name),
			interfaces.Error(err))
		return nil, err
	}
	return career, nil
}

// project turns filmworks into movie projections, preserving their order.
func (s *CatalogService) project(ctx context.Context, films []*models.Filmwork) ([]*domain.Movie, error) {
	if len(films) == 0 {
		return []*domain.Movie{}, nil
	}

	roles, err := s.Roles(ctx)
	if err != nil {
		return nil, err
	}

	typeNames, err := s.repo.FilmworkTypeNames(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(films))
	movies := make([]*domain.Movie, 0, len(films))
	byID := make(map[uuid.UUID]*domain.Movie, len(films))
	for _, f := range films {
		movie := &domain.Movie{
			ID:           f.ID,
			Title:        f.Title,
			Description:  f.Description,
			CreationDate: f.CreationDate,
			Rating:       f.Rating,
			Genres:       []string{},
			Actors:       []string{},
			Writers:      []string{},
			Directors:    []string{},
		}
		if f.TypeID != nil {
			if name, ok := typeNames[*f.TypeID]; ok {
				movie.Type = &name
			}
		}
		ids = append(ids, f.ID)
		movies = append(movies, movie)
		byID[f.ID] = movie
	}

	genres, err := s.repo.GenreNames(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, g := range genres {
		if m, ok := byID[g.FilmworkID]; ok {
			m.Genres = appendDistinct(m.Genres, g.Name)
		}
	}

	credits, err := s.repo.Credits(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range credits {
		m, ok := byID[c.FilmworkID]
		if !ok {
			continue
		}
		switch c.RoleID {
		case roles.Actor:
			m.Actors = appendDistinct(m.Actors, c.FullName)
		case roles.Writer:
			m.Writers = appendDistinct(m.Writers, c.FullName)
		case roles.Director:
			m.Directors = appendDistinct(m.Directors, c.FullName)
		}
	}

	return movies, nil
}

func appendDistinct(names []string, name string) []string {
	if slices.Contains(names, name) {
		return names
	}
	return append(names, name)
}
