package models

// Table names inside the catalog schema.
const (
	TableFilmwork        = "filmwork"
	TableFilmworkType    = "filmwork_type"
	TableGenre           = "genre"
	TableGenreFilmwork   = "genres_filmworks"
	TablePerson          = "person"
	TableCareer          = "career"
	TableCareerPerson    = "careers_persons"
	TablePersonFilmwork  = "persons_filmworks"
	TableSchemaMigration = "schema_migrations"
)

// Well-known enumeration values.
const (
	CareerWriter   = "writer"
	CareerActor    = "actor"
	CareerDirector = "director"

	TypeMovie  = "movie"
	TypeTVShow = "tv_show"
)

// Careers lists the careers every catalog is bootstrapped with, in load order.
var Careers = []string{CareerWriter, CareerActor, CareerDirector}

// FilmworkTypes lists the filmwork types every catalog is bootstrapped with.
var FilmworkTypes = []string{TypeMovie, TypeTVShow}

// Schema is a database schema name. The empty schema leaves table names
// unqualified, which is what SQLite needs.
type Schema string

// Table returns the schema-qualified name of table.
func (s Schema) Table(name string) string {
	if s == "" {
		return name
	}
	return string(s) + "." + name
}
