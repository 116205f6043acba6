package domain

import (
	"time"

	"github.com/google/uuid"
)

// Movie is the read projection of a filmwork served by the API.
type Movie struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	CreationDate *time.Time `json:"creation_date"`
	Rating       *float64   `json:"rating"`
	Type         *string    `json:"type"`
	Genres       []string   `json:"genres"`
	Actors       []string   `json:"actors"`
	Writers      []string   `json:"writers"`
	Directors    []string   `json:"directors"`
}

// Person is the read projection of a person with their credits.
type Person struct {
	ID       uuid.UUID  `json:"id"`
	FullName string     `json:"full_name"`
	BirthDay *time.Time `json:"birth_day"`
	Gender   string     `json:"gender"`
	Films    []Credit   `json:"films"`
}

// Credit is one filmwork a person worked on, in one role.
type Credit struct {
	FilmworkID uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Role       string    `json:"role"`
}

// Roles holds the career ids used to split a filmwork's credits.
type Roles struct {
	Actor    uuid.UUID
	Writer   uuid.UUID
	Director uuid.UUID
}

// MovieFilter narrows a filmwork listing.
type MovieFilter struct {
	// Type is a filmwork type name; empty means every type.
	Type string
}

// PersonFilter narrows a person listing.
type PersonFilter struct {
	// CareerID restricts the listing to persons holding that career.
	CareerID *uuid.UUID
}

// NameRow associates a name with the filmwork it was found on.
type NameRow struct {
	FilmworkID uuid.UUID
	Name       string
}

// CreditRow is a raw persons_filmworks row joined with names.
type CreditRow struct {
	FilmworkID uuid.UUID
	PersonID   uuid.UUID
	RoleID     uuid.UUID
	FullName   string
	Title      string
}
