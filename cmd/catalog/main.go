package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/narwhalmedia/catalog/internal/catalog/handler"
	"github.com/narwhalmedia/catalog/internal/catalog/repository"
	"github.com/narwhalmedia/catalog/internal/catalog/service"
	"github.com/narwhalmedia/catalog/internal/infrastructure/storage"
	"github.com/narwhalmedia/catalog/pkg/config"
	"github.com/narwhalmedia/catalog/pkg/database"
	"github.com/narwhalmedia/catalog/pkg/interfaces"
	"github.com/narwhalmedia/catalog/pkg/logger"
	"github.com/narwhalmedia/catalog/pkg/utils"
)

const healthService = "narwhal.catalog.v1.CatalogService"

func main() {
	cfg := config.GetDefaultCatalogConfig()
	if err := config.LoadServiceConfig("catalog", cfg, config.WithEnvAliases(config.CatalogEnvAliases)); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	zl, err := cfg.Logger.ToLoggerConfig().Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer zl.Sync()

	log := zl.WithFields(interfaces.String("service", cfg.Service.Name))
	log.Info("Catalog service starting",
		interfaces.String("version", config.GetServiceVersion(&cfg.Service)),
		interfaces.String("environment", cfg.Service.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Connecting to database...")
	dbCfg := cfg.Database.ToDatabaseConfig()
	dbCfg.Debug = cfg.Logger.Development
	db, err := database.NewGormDB(dbCfg, log)
	if err != nil {
		log.Fatal("Failed to connect to database", interfaces.Error(err))
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error("Failed to close database", interfaces.Error(err))
		}
	}()

	pending, err := database.GetPendingMigrations(db, cfg.Database.Schema, log)
	if err != nil {
		log.Fatal("Failed to check migrations", interfaces.Error(err))
	}
	if len(pending) > 0 {
		log.Warn("Database has pending migrations", interfaces.Int("pending", len(pending)))
	}

	mediaStorage, err := newStorage(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize media storage", interfaces.Error(err))
	}

	cache := utils.NewInMemoryCache(time.Minute)
	defer cache.Close()

	repo := repository.NewGormRepository(db, cfg.Database.Schema)
	catalogService := service.NewCatalogService(repo, cache, mediaStorage, log, service.Options{
		PageSize: cfg.Pagination.PageSize,
		CacheTTL: cfg.Cache.TTL,
	})

	router := handler.NewRouter(handler.NewHandler(catalogService, log), handler.RouterConfig{
		StaticRoot:         cfg.Storage.StaticRoot,
		MediaRoot:          localMediaRoot(cfg.Storage),
		MediaURL:           cfg.Storage.MediaURL,
		CORSAllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
		RateLimitRequests:  cfg.HTTP.RateLimitRequests,
		RateLimitWindow:    cfg.HTTP.RateLimitWindow,
		MetricsEnabled:     cfg.Metrics.Enabled,
		MetricsPath:        cfg.Metrics.Path,
	}, log)

	httpServer := &http.Server{
		Addr:         config.GetListenAddress(&cfg.Service),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.UnaryRecoveryInterceptor(log),
			logger.UnaryServerInterceptor(log),
		),
		grpc.ChainStreamInterceptor(
			logger.StreamRecoveryInterceptor(log),
		),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(healthService, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(grpcServer)

	grpcAddr := config.GetGRPCListenAddress(&cfg.Service)
	listener, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Fatal("Failed to listen", interfaces.String("address", grpcAddr), interfaces.Error(err))
	}

	go func() {
		log.Info("gRPC server starting", interfaces.String("address", grpcAddr))
		if err := grpcServer.Serve(listener); err != nil {
			log.Error("gRPC server failed", interfaces.Error(err))
			stop()
		}
	}()

	go func() {
		log.Info("HTTP server starting", interfaces.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", interfaces.Error(err))
			stop()
		}
	}()

	go watchReadiness(ctx, catalogService, healthServer, log)

	<-ctx.Done()
	log.Info("Shutting down catalog service...")

	healthServer.SetServingStatus(healthService, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown HTTP server", interfaces.Error(err))
	}

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout exceeded, forcing stop")
		grpcServer.Stop()
	case <-stopped:
	}

	log.Info("Catalog service stopped")
}

func newStorage(ctx context.Context, cfg config.StorageSettings, log interfaces.Logger) (storage.Storage, error) {
	if cfg.Backend == "s3" {
		return storage.NewS3Storage(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region, cfg.S3URLExpiry, log)
	}
	return storage.NewLocalStorage(cfg.MediaRoot, cfg.MediaURL, log)
}

// localMediaRoot is only served by the HTTP router for the local backend.
func localMediaRoot(cfg config.StorageSettings) string {
	if cfg.Backend == "s3" {
		return ""
	}
	return cfg.MediaRoot
}

// watchReadiness mirrors the database ping into the gRPC health status.
func watchReadiness(ctx context.Context, svc *service.CatalogService, hs *health.Server, log interfaces.Logger) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	serving := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := svc.Ready(checkCtx)
			cancel()

			switch {
			case err != nil && serving:
				log.Warn("Catalog store unreachable", interfaces.Error(err))
				hs.SetServingStatus(healthService, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
				serving = false
			case err == nil && !serving:
				log.Info("Catalog store reachable again")
				hs.SetServingStatus(healthService, grpc_health_v1.HealthCheckResponse_SERVING)
				serving = true
			}
		}
	}
}
