package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/narwhalmedia/catalog/internal/catalog/domain"
	"github.com/narwhalmedia/catalog/pkg/pagination"
)

// CatalogServiceInterface defines the read operations the HTTP API serves.
type CatalogServiceInterface interface {
	ListMovies(ctx context.Context, page, filmworkType string) (*pagination.Envelope[*domain.Movie], error)
	GetMovie(ctx context.Context, id uuid.UUID) (*domain.Movie, error)
	ListPersons(ctx context.Context, page, career string) (*pagination.Envelope[*domain.Person], error)
	MovieFileURL(ctx context.Context, id uuid.UUID) (string, error)
	Ready(ctx context.Context) error
}

// MediaStorage resolves a stored media file reference to a URL clients can fetch.
type MediaStorage interface {
	URL(ctx context.Context, path string) (string, error)
}

// Ensure CatalogService implements the interface.
var _ CatalogServiceInterface = (*CatalogService)(nil)
