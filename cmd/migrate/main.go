package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/narwhalmedia/catalog/pkg/config"
	"github.com/narwhalmedia/catalog/pkg/database"
	"github.com/narwhalmedia/catalog/pkg/interfaces"
)

func main() {
	var (
		status = flag.Bool("status", false, "Show migration status")
		dryRun = flag.Bool("dry-run", false, "Show pending migrations without applying them")
	)
	flag.Parse()

	cfg := config.GetDefaultMigrateConfig()
	if err := config.LoadServiceConfig("migrate", cfg, config.WithEnvAliases(config.CatalogEnvAliases)); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	zl, err := cfg.Logger.ToLoggerConfig().Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer zl.Sync()

	db, err := database.NewGormDB(cfg.Database.ToDatabaseConfig(), zl)
	if err != nil {
		zl.Fatal("Failed to connect to database", interfaces.Error(err))
	}
	defer database.Close(db)

	migrator := database.NewMigrator(db, cfg.Database.Schema, zl)

	switch {
	case *status:
		err = showMigrationStatus(migrator)
	case *dryRun:
		err = showPendingMigrations(migrator)
	default:
		fmt.Println("Running database migrations...")
		if err = migrator.Migrate(); err == nil {
			fmt.Println("Migrations completed successfully!")
		}
	}
	if err != nil {
		zl.Fatal("Migration command failed", interfaces.Error(err))
	}
}

// showMigrationStatus displays the current migration status
func showMigrationStatus(m *database.Migrator) error {
	applied, err := m.Applied()
	if err != nil {
		return err
	}

	if len(applied) == 0 {
		fmt.Println("No migrations have been applied yet.")
	} else {
		fmt.Println("Applied migrations:")
		fmt.Println("==================")
		for _, migration := range applied {
			fmt.Printf("%s | %s | Applied at: %s\n", migration.Version, migration.Name, migration.AppliedAt.Format("2006-01-02 15:04:05"))
		}
	}

	pending, err := m.GetPendingMigrations()
	if err != nil {
		return err
	}

	if len(pending) == 0 {
		fmt.Println("\nAll migrations are up to date!")
		return nil
	}

	fmt.Println("\nPending migrations:")
	fmt.Println("==================")
	for _, migration := range pending {
		fmt.Printf("%s | %s\n", migration.Version, migration.Name)
	}
	return nil
}

// showPendingMigrations displays migrations that would be applied
func showPendingMigrations(m *database.Migrator) error {
	pending, err := m.GetPendingMigrations()
	if err != nil {
		return err
	}

	if len(pending) == 0 {
		fmt.Println("No pending migrations.")
		return nil
	}

	fmt.Println("Pending migrations that would be applied:")
	fmt.Println("========================================")
	for _, migration := range pending {
		fmt.Printf("%s | %s\n", migration.Version, migration.Name)
	}
	return nil
}
