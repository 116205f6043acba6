package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/narwhalmedia/catalog/internal/catalog/domain"
	"github.com/narwhalmedia/catalog/internal/catalog/handler"
	"github.com/narwhalmedia/catalog/pkg/logger"
	"github.com/narwhalmedia/catalog/pkg/pagination"
)

// MockCatalogService is a mock for the catalog service
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListMovies(ctx context.Context, page, filmworkType string) (*pagination.Envelope[*domain.Movie], error) {
	args := m.Called(ctx, page, filmworkType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pagination.Envelope[*domain.Movie]), args.Error(1)
}

func (m *MockCatalogService) GetMovie(ctx context.Context, id uuid.UUID) (*domain.Movie, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movie), args.Error(1)
}

func (m *MockCatalogService) ListPersons(ctx context.Context, page, career string) (*pagination.Envelope[*domain.Person], error) {
	args := m.Called(ctx, page, career)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pagination.Envelope[*domain.Person]), args.Error(1)
}

func (m *MockCatalogService) MovieFileURL(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockCatalogService) Ready(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func newServer(t *testing.T, svc *MockCatalogService, cfg handler.RouterConfig) *httptest.Server {
	t.Helper()
	log := logger.NewNoop()
	srv := httptest.NewServer(handler.NewRouter(handler.NewHandler(svc, log), cfg, log))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string) *http.Response {
	t.Helper()
	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	resp, err := client.Get(srv.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestListMovies(t *testing.T) {
	svc := new(MockCatalogService)
	srv := newServer(t, svc, handler.RouterConfig{})

	next := 2
	page, err := pagination.New(3, 2).Page("")
	require.NoError(t, err)
	env := pagination.Wrap(page, []*domain.Movie{{ID: uuid.New(), Title: "Alien", Genres: []string{"Horror"}}})
	svc.On("ListMovies", mock.Anything, "", "movie").Return(&env, nil)

	resp := get(t, srv, "/api/v1/movies/?type=movie")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body map[string]interface{}
	decode(t, resp, &body)
	assert.EqualValues(t, 3, body["count"])
	assert.EqualValues(t, 2, body["total_pages"])
	assert.Nil(t, body["prev"])
	assert.EqualValues(t, next, body["next"])

	results := body["results"].([]interface{})
	require.Len(t, results, 1)
	movie := results[0].(map[string]interface{})
	assert.Equal(t, "Alien", movie["title"])
	for _, key := range []string{"id", "description", "creation_date", "rating", "type", "genres", "actors", "writers", "directors"} {
		assert.Contains(t, movie, key)
	}
}

func TestListMoviesInvalidPage(t *testing.T) {
	svc := new(MockCatalogService)
	srv := newServer(t, svc, handler.RouterConfig{})
	_, pageErr := pagination.New(3, 2).Page("abc")
	svc.On("ListMovies", mock.Anything, "abc", "").Return(nil, pageErr)

	resp := get(t, srv, "/api/v1/movies?page=abc")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body handler.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "NOT_FOUND", body.Error)
}

func TestGetMovie(t *testing.T) {
	svc := new(MockCatalogService)
	srv := newServer(t, svc, handler.RouterConfig{})

	id := uuid.New()
	svc.On("GetMovie", mock.Anything, id).Return(&domain.Movie{ID: id, Title: "Alien"}, nil)
	missing := uuid.New()
	svc.On("GetMovie", mock.Anything, missing).Return(nil, domain.ErrMovieNotFound)

	resp := get(t, srv, "/api/v1/movies/"+id.String())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var movie domain.Movie
	decode(t, resp, &movie)
	assert.Equal(t, id, movie.ID)

	resp = get(t, srv, "/api/v1/movies/"+missing.String())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body handler.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "movie not found", body.Message)

	resp = get(t, srv, "/api/v1/movies/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetMovieInternalErrorIsHidden(t *testing.T) {
	svc := new(MockCatalogService)
	srv := newServer(t, svc, handler.RouterConfig{})

	id := uuid.New()
	svc.On("GetMovie", mock.Anything, id).Return(nil, errors.New("pq: connection refused"))

	resp := get(t, srv, "/api/v1/movies/"+id.String())
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body handler.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "internal server error", body.Message)
}

func TestGetMovieFileRedirects(t *testing.T) {
	svc := new(MockCatalogService)
	srv := newServer(t, svc, handler.RouterConfig{})

	id := uuid.New()
	svc.On("MovieFileURL", mock.Anything, id).Return("/media/films/alien.mp4", nil)

	resp := get(t, srv, "/api/v1/movies/"+id.String()+"/file")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/media/films/alien.mp4", resp.Header.Get("Location"))
}

func TestListPersons(t *testing.T) {
	svc := new(MockCatalogService)
	srv := newServer(t, svc, handler.RouterConfig{})

	page, err := pagination.New(1, 50).Page("1")
	require.NoError(t, err)
	env := pagination.Wrap(page, []*domain.Person{{ID: uuid.New(), FullName: "Sigourney Weaver", Films: []domain.Credit{}}})
	svc.On("ListPersons", mock.Anything, "1", "actor").Return(&env, nil)

	resp := get(t, srv, "/api/v1/persons/?career=actor&page=1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body pagination.Envelope[domain.Person]
	decode(t, resp, &body)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "Sigourney Weaver", body.Results[0].FullName)
}

func TestHealthAndReadiness(t *testing.T) {
	svc := new(MockCatalogService)
	srv := newServer(t, svc, handler.RouterConfig{})
	svc.On("Ready", mock.Anything).Return(errors.New("db down")).Once()
	svc.On("Ready", mock.Anything).Return(nil)

	assert.Equal(t, http.StatusOK, get(t, srv, "/healthz").StatusCode)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, srv, "/readyz").StatusCode)
	assert.Equal(t, http.StatusOK, get(t, srv, "/readyz").StatusCode)
}

func TestStaticFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "site.css"), []byte("body{}"), 0o644))

	srv := newServer(t, new(MockCatalogService), handler.RouterConfig{
		StaticRoot: root,
		MediaRoot:  root,
		MediaURL:   "/media/",
	})

	assert.Equal(t, http.StatusOK, get(t, srv, "/static/site.css").StatusCode)
	assert.Equal(t, http.StatusOK, get(t, srv, "/media/site.css").StatusCode)
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/static/missing.css").StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newServer(t, new(MockCatalogService), handler.RouterConfig{MetricsEnabled: true, MetricsPath: "/metrics"})

	assert.Equal(t, http.StatusOK, get(t, srv, "/healthz").StatusCode)
	assert.Equal(t, http.StatusOK, get(t, srv, "/metrics").StatusCode)
}

func TestRateLimit(t *testing.T) {
	svc := new(MockCatalogService)
	srv := newServer(t, svc, handler.RouterConfig{RateLimitRequests: 1, RateLimitWindow: time.Minute})

	id := uuid.New()
	svc.On("GetMovie", mock.Anything, id).Return(&domain.Movie{ID: id, Title: "Alien"}, nil)

	assert.Equal(t, http.StatusOK, get(t, srv, "/api/v1/movies/"+id.String()).StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, get(t, srv, "/api/v1/movies/"+id.String()).StatusCode)
}
