package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/narwhalmedia/catalog/internal/importer"
	natsevents "github.com/narwhalmedia/catalog/internal/infrastructure/events/nats"
	"github.com/narwhalmedia/catalog/internal/legacy"
	"github.com/narwhalmedia/catalog/pkg/config"
	"github.com/narwhalmedia/catalog/pkg/database"
	"github.com/narwhalmedia/catalog/pkg/events"
	"github.com/narwhalmedia/catalog/pkg/interfaces"
	"github.com/narwhalmedia/catalog/pkg/models"
)

func main() {
	var (
		dryRun       = flag.Bool("dry-run", false, "Transform and write everything, then roll back")
		dedupeActors = flag.Bool("dedupe-actors", false, "Collapse repeated actor names within a movie")
		legacyPath   = flag.String("legacy", "", "Path to the legacy SQLite file (overrides config)")
	)
	flag.Parse()

	cfg := config.GetDefaultLoaderConfig()
	if err := config.LoadServiceConfig("loaddata", cfg, config.WithEnvAliases(config.LoaderEnvAliases)); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dryRun {
		cfg.Import.DryRun = true
	}
	if *dedupeActors {
		cfg.Import.DedupeActors = true
	}
	if *legacyPath != "" {
		cfg.Legacy.Path = *legacyPath
	}

	zl, err := cfg.Logger.ToLoggerConfig().Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	log := zl.WithFields(interfaces.String("service", cfg.Service.Name))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()

	if err != nil {
		log.Error("Import failed", interfaces.Error(err))
		_ = zl.Sync()
		os.Exit(1)
	}
	_ = zl.Sync()
}

func run(ctx context.Context, cfg *config.LoaderConfig, log interfaces.Logger) error {
	log.Info("Opening legacy database", interfaces.String("path", cfg.Legacy.Path))
	reader, err := legacy.Open(cfg.Legacy.Path, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			log.Warn("Failed to close legacy database", interfaces.Error(err))
		}
	}()

	log.Info("Connecting to database...")
	db, err := database.NewGormDB(cfg.Database.ToDatabaseConfig(), log)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("Failed to close database", interfaces.Error(err))
		}
	}()

	if err := database.RunMigrations(db, cfg.Database.Schema, log); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	eventBus := events.NewInMemoryEventBus(log)
	if err := eventBus.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := eventBus.Stop(); err != nil {
			log.Warn("Failed to stop event bus", interfaces.Error(err))
		}
	}()

	if cfg.NATS.Enabled {
		client, cleanup, err := natsevents.NewClient(ctx, cfg.NATS, log)
		if err != nil {
			return err
		}
		defer cleanup()

		publisher := natsevents.NewPublisher(client.JetStream(), log)
		if err := eventBus.Subscribe(publisher.EventType(), publisher); err != nil {
			return fmt.Errorf("failed to subscribe NATS publisher: %w", err)
		}
	}

	loader := importer.NewLoader(reader, db, eventBus, log, importer.LoaderOptions{
		Schema: models.Schema(cfg.Database.Schema),
		DryRun: cfg.Import.DryRun,
		Transform: importer.Options{
			DedupeActors: cfg.Import.DedupeActors,
		},
	})

	_, err = loader.Run(ctx)
	return err
}
