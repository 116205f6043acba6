package testutil

import (
	"github.com/google/uuid"

	"github.com/narwhalmedia/catalog/pkg/models"
)

// CreateTestFilmwork creates a filmwork with the given title and rating.
func CreateTestFilmwork(title string, rating *float64) *models.Filmwork {
	return &models.Filmwork{
		ID:     uuid.New(),
		Title:  title,
		Rating: rating,
	}
}

// CreateTestGenre creates a genre.
func CreateTestGenre(name string) *models.Genre {
	return &models.Genre{
		ID:   uuid.New(),
		Name: name,
	}
}

// CreateTestPerson creates a person.
func CreateTestPerson(fullName string) *models.Person {
	return &models.Person{
		ID:       uuid.New(),
		FullName: fullName,
	}
}

// CreateTestCareer creates a career.
func CreateTestCareer(name string) *models.Career {
	return &models.Career{
		ID:   uuid.New(),
		Name: name,
	}
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
