package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hibiken/asynq"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"podcastit/internal/blob"
	"podcastit/internal/config"
	"podcastit/internal/episodes"
	apphttp "podcastit/internal/http"
	"podcastit/internal/storage"
	"podcastit/migrations"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	if err := run(logger); err != nil {
		logger.Error("startup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := sql.Open("pgx", cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	// ensure DB is reachable
	if err := pingDB(ctx, db); err != nil {
		return err
	}

	if err := storage.RunMigrations(ctx, db, migrations.Files); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		return err
	}

	queue := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer queue.Close()

	repo := storage.NewEpisodeRepository(db)
	service := episodes.NewService(logger, repo, blobs, queue)

	handler := apphttp.NewServer(logger, service, apphttp.Options{
		CreatesPerMinute: cfg.RequestsPerMinute,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("shutdown server: %w", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}

// newBlobStore picks S3 when a bucket is configured, otherwise a local
// directory store.
func newBlobStore(ctx context.Context, cfg config.Config) (episodes.BlobStore, error) {
	if cfg.S3Bucket == "" {
		store, err := blob.NewLocal(cfg.AudioDir)
		if err != nil {
			return nil, fmt.Errorf("local blob store: %w", err)
		}
		return store, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return blob.NewS3(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3Prefix), nil
}

func pingDB(ctx context.Context, db *sql.DB) error {
	const (
		maxAttempts = 10
		baseDelay   = time.Second
	)

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()

		if err == nil {
			return nil
		}

		// allow caller to abort early
		select {
		case <-ctx.Done():
			return fmt.Errorf("ping db: %w", err)
		case <-time.After(time.Duration(attempt) * baseDelay):
		}
	}

	return fmt.Errorf("ping db: %w", err)
}
