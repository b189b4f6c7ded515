package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/manisht21/file-sender/internal/config"
	"github.com/manisht21/file-sender/internal/ingest"
	"github.com/manisht21/file-sender/internal/logger"
	"github.com/manisht21/file-sender/internal/server"
	"github.com/manisht21/file-sender/internal/storage"
)

func main() {
	// A local .env is a development convenience; deployments configure
	// everything through the environment.
	_ = godotenv.Load()

	log, err := logger.Init()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log); err != nil {
		log.Error("api exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := buildObjectStore(ctx, cfg)
	if err != nil {
		return err
	}

	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("object store unreachable: %w", err)
	}

	ingestService := ingest.NewService(store, cfg.Upload.MaxFileSizeBytes(), log)

	router := server.NewRouter(server.Dependencies{
		Config:        cfg,
		ObjectStore:   store,
		IngestService: ingestService,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("file-sender API listening",
			slog.String("addr", cfg.Server.Address()),
			slog.String("provider", cfg.Storage.Provider),
			slog.Int64("max_file_size_mb", cfg.Upload.MaxFileSizeMB))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func buildObjectStore(ctx context.Context, cfg config.Config) (storage.ObjectStore, error) {
	switch cfg.Storage.Provider {
	case config.ProviderMinIO:
		client, err := storage.NewMinIOClient(cfg.MinIO)
		if err != nil {
			return nil, fmt.Errorf("connect minio: %w", err)
		}
		if err := storage.EnsureBucket(ctx, client, cfg.MinIO.Bucket, cfg.MinIO.Region); err != nil {
			return nil, fmt.Errorf("ensure bucket: %w", err)
		}
		return storage.NewMinioStore(client, cfg.MinIO.Bucket, cfg.MinIO.PublicBaseURL), nil
	case config.ProviderSupabase:
		return storage.NewSupabaseStore(cfg.Supabase.ProjectURL, cfg.Supabase.ServiceKey, cfg.Supabase.Bucket), nil
	default:
		// config.Load already rejects unknown providers.
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Storage.Provider)
	}
}
