package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/narwhalmedia/catalog/pkg/interfaces"
	"github.com/narwhalmedia/catalog/pkg/models"
)

// Migration represents an applied database migration
type Migration struct {
	ID        uint      `gorm:"primaryKey"`
	Version   string    `gorm:"uniqueIndex:uq_schema_migrations_version;not null"`
	Name      string    `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// MigrationFunc performs a migration inside a transaction.
type MigrationFunc func(tx *gorm.DB, schema models.Schema) error

// MigrationEntry represents a single migration
type MigrationEntry struct {
	Version string
	Name    string
	Up      MigrationFunc
}

// Migrator handles database migrations
type Migrator struct {
	db         *gorm.DB
	schema     models.Schema
	logger     interfaces.Logger
	migrations []MigrationEntry
}

// NewMigrator creates a new migrator instance. An empty schema keeps every
// table unqualified.
func NewMigrator(db *gorm.DB, schema string, logger interfaces.Logger) *Migrator {
	return &Migrator{
		db:         db,
		schema:     models.Schema(schema),
		logger:     logger,
		migrations: getAllMigrations(),
	}
}

func (m *Migrator) table() *gorm.DB {
	return m.db.Table(m.schema.Table(models.TableSchemaMigration))
}

// Migrate runs all pending migrations
func (m *Migrator) Migrate() error {
	if err := createSchema(m.db, m.schema); err != nil {
		return err
	}
	if err := m.table().AutoMigrate(&Migration{}); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	pending, err := m.GetPendingMigrations()
	if err != nil {
		return err
	}

	for _, migration := range pending {
		m.logger.Info("Running migration",
			interfaces.String("version", migration.Version),
			interfaces.String("name", migration.Name))

		err := m.db.Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx, m.schema); err != nil {
				return err
			}

			return tx.Table(m.schema.Table(models.TableSchemaMigration)).Create(&Migration{
				Version:   migration.Version,
				Name:      migration.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to run migration %s: %w", migration.Version, err)
		}

		m.logger.Info("Completed migration", interfaces.String("version", migration.Version))
	}

	return nil
}

// Applied returns the applied migrations, newest first.
func (m *Migrator) Applied() ([]Migration, error) {
	var applied []Migration
	if !m.db.Migrator().HasTable(m.schema.Table(models.TableSchemaMigration)) {
		return applied, nil
	}
	if err := m.table().Order("applied_at DESC").Find(&applied).Error; err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	return applied, nil
}

// GetPendingMigrations returns a list of pending migrations
func (m *Migrator) GetPendingMigrations() ([]MigrationEntry, error) {
	appliedMigrations, err := m.Applied()
	if err != nil {
		return nil, err
	}

	applied := make(map[string]bool, len(appliedMigrations))
	for _, migration := range appliedMigrations {
		applied[migration.Version] = true
	}

	var pending []MigrationEntry
	for _, migration := range m.migrations {
		if !applied[migration.Version] {
			pending = append(pending, migration)
		}
	}

	return pending, nil
}

func getAllMigrations() []MigrationEntry {
	return []MigrationEntry{
		{
			Version: "20240101_001",
			Name:    "Create catalog tables",
			Up:      migration001CreateCatalogTables,
		},
		{
			Version: "20240101_002",
			Name:    "Add foreign keys",
			Up:      migration002AddForeignKeys,
		},
	}
}

func isPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

func createSchema(db *gorm.DB, schema models.Schema) error {
	if schema == "" || !isPostgres(db) {
		return nil
	}
	if err := db.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, string(schema))).Error; err != nil {
		return fmt.Errorf("failed to create schema %s: %w", schema, err)
	}
	return nil
}

// catalogTables lists every catalog table with its model, parents before children.
func catalogTables() []struct {
	name  string
	model interface{}
} {
	return []struct {
		name  string
		model interface{}
	}{
		{models.TableFilmworkType, &models.FilmworkType{}},
		{models.TableFilmwork, &models.Filmwork{}},
		{models.TableGenre, &models.Genre{}},
		{models.TableGenreFilmwork, &models.GenreFilmwork{}},
		{models.TablePerson, &models.Person{}},
		{models.TableCareer, &models.Career{}},
		{models.TableCareerPerson, &models.CareerPerson{}},
		{models.TablePersonFilmwork, &models.PersonFilmwork{}},
	}
}

func migration001CreateCatalogTables(tx *gorm.DB, schema models.Schema) error {
	for _, t := range catalogTables() {
		if err := tx.Table(schema.Table(t.name)).AutoMigrate(t.model); err != nil {
			return fmt.Errorf("failed to create %s: %w", t.name, err)
		}
	}
	return nil
}

// foreignKey describes a constraint added once the tables exist.
type foreignKey struct {
	table, column, parent, onDelete string
}

var catalogForeignKeys = []foreignKey{
	{models.TableFilmwork, "type_id", models.TableFilmworkType, "SET NULL"},
	{models.TableGenreFilmwork, "filmwork_id", models.TableFilmwork, "CASCADE"},
	{models.TableGenreFilmwork, "genre_id", models.TableGenre, "CASCADE"},
	{models.TableCareerPerson, "career_id", models.TableCareer, "RESTRICT"},
	{models.TableCareerPerson, "person_id", models.TablePerson, "CASCADE"},
	{models.TablePersonFilmwork, "filmwork_id", models.TableFilmwork, "CASCADE"},
	{models.TablePersonFilmwork, "person_id", models.TablePerson, "CASCADE"},
	{models.TablePersonFilmwork, "role_id", models.TableCareer, "RESTRICT"},
}

// migration002AddForeignKeys adds the referential rules. SQLite cannot alter
// constraints after creation, so it is left without them.
func migration002AddForeignKeys(tx *gorm.DB, schema models.Schema) error {
	if !isPostgres(tx) {
		return nil
	}

	for _, fk := range catalogForeignKeys {
		name := fmt.Sprintf("fk_%s_%s", fk.table, fk.column)
		stmt := fmt.Sprintf(
			`ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s, ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (id) ON DELETE %s`,
			schema.Table(fk.table), name, name, fk.column, schema.Table(fk.parent), fk.onDelete,
		)
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to add %s: %w", name, err)
		}
	}
	return nil
}
