package domain

import (
	"github.com/narwhalmedia/catalog/pkg/errors"
)

// Common domain errors
var (
	// ErrMovieNotFound is returned when a filmwork does not exist
	ErrMovieNotFound = errors.NotFound("movie not found")

	// ErrNoMediaFile is returned when a filmwork has no media file reference
	ErrNoMediaFile = errors.NotFound("movie has no media file")

	// ErrInvalidMovieID is returned when a movie id is not a UUID
	ErrInvalidMovieID = errors.BadRequest("invalid movie id")

	// ErrUnknownType is returned when filtering by a filmwork type that does not exist
	ErrUnknownType = errors.BadRequest("unknown filmwork type")

	// ErrCareerNotFound is returned when a career name cannot be resolved
	ErrCareerNotFound = errors.NotFound("career not found")
)
