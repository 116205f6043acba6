package models

import (
	"time"

	"github.com/google/uuid"
)

// Gender values accepted for a person.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// FilmworkType classifies a filmwork (movie, tv_show).
type FilmworkType struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;index:idx_filmwork_type_name" json:"name" validate:"required,max=255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Filmwork is a film or a show.
type Filmwork struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string     `gorm:"type:text;not null;index:idx_filmwork_title" json:"title" validate:"required"`
	Description  string     `gorm:"type:text;not null;default:''" json:"description"`
	CreationDate *time.Time `gorm:"type:date" json:"creation_date,omitempty"`
	Certificate  string     `gorm:"type:text;not null;default:''" json:"certificate"`
	FilePath     string     `gorm:"type:varchar(255);not null;default:''" json:"file_path"`
	Rating       *float64   `gorm:"check:chk_filmwork_rating,rating >= 0" json:"rating,omitempty" validate:"omitempty,gte=0"`
	TypeID       *uuid.UUID `gorm:"type:uuid;index:idx_filmwork_type_id" json:"type_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Genre is a film genre, reused across filmworks by name.
type Genre struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null;index:idx_genre_name" json:"name" validate:"required,max=255"`
	Description string    `gorm:"type:text;not null;default:''" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GenreFilmwork links a genre to a filmwork.
type GenreFilmwork struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FilmworkID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_genres_filmworks,priority:1" json:"filmwork_id" validate:"required"`
	GenreID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_genres_filmworks,priority:2;index:idx_genres_filmworks_genre" json:"genre_id" validate:"required"`
	CreatedAt  time.Time `json:"created_at"`
}

// Person is anyone credited on a filmwork.
type Person struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FullName  string     `gorm:"type:text;not null;index:idx_person_full_name" json:"full_name" validate:"required"`
	BirthDay  *time.Time `gorm:"type:date" json:"birth_day,omitempty"`
	Gender    string     `gorm:"type:varchar(16);not null;default:''" json:"gender" validate:"omitempty,oneof=male female"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Career is a profession a person can hold and the role they play on a filmwork.
type Career struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;index:idx_career_name" json:"name" validate:"required,max=255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CareerPerson records that a person holds a career.
type CareerPerson struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CareerID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_careers_persons,priority:2" json:"career_id" validate:"required"`
	PersonID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_careers_persons,priority:1" json:"person_id" validate:"required"`
	DateStart  *time.Time `gorm:"type:date" json:"date_start,omitempty"`
	DateFinish *time.Time `gorm:"type:date" json:"date_finish,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// PersonFilmwork credits a person on a filmwork in a role.
type PersonFilmwork struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FilmworkID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_persons_filmworks,priority:1" json:"filmwork_id" validate:"required"`
	PersonID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_persons_filmworks,priority:2;index:idx_persons_filmworks_person" json:"person_id" validate:"required"`
	RoleID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_persons_filmworks,priority:3" json:"role_id" validate:"required"`
	CreatedAt  time.Time `json:"created_at"`
}
