package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/narwhalmedia/catalog/pkg/database"
	"github.com/narwhalmedia/catalog/pkg/logger"
	"github.com/narwhalmedia/catalog/pkg/models"
)

// Schema is the catalog schema created in every test container.
const Schema = "content"

// PostgresContainer wraps a postgres test container
type PostgresContainer struct {
	*tcpostgres.PostgresContainer
	ConnectionString string
	DB               *gorm.DB
}

// SetupPostgresContainer starts a postgres container with the catalog schema
// migrated. It skips the test in -short mode.
func SetupPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("movies_database"),
		tcpostgres.WithUsername("app"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	log := logger.NewNoop()
	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		Logger: database.NewGormLogger(log, time.Second, false),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := database.RunMigrations(db, Schema, log); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if err := database.Close(db); err != nil {
			t.Logf("Failed to close test database: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate postgres container: %v", err)
		}
	})

	return &PostgresContainer{
		PostgresContainer: pgContainer,
		ConnectionString:  connStr,
		DB:                db,
	}
}

// TruncateCatalog empties every catalog table between tests.
func (pc *PostgresContainer) TruncateCatalog() error {
	s := models.Schema(Schema)
	tables := []string{
		models.TablePersonFilmwork,
		models.TableCareerPerson,
		models.TableGenreFilmwork,
		models.TablePerson,
		models.TableGenre,
		models.TableFilmwork,
		models.TableCareer,
		models.TableFilmworkType,
	}
	for _, table := range tables {
		if err := pc.DB.Exec("TRUNCATE TABLE " + s.Table(table) + " CASCADE").Error; err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of rows in a catalog table.
func (pc *PostgresContainer) Count(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	if err := pc.DB.Table(models.Schema(Schema).Table(table)).Count(&n).Error; err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}
