package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
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
	"podcastit/internal/llm"
	"podcastit/internal/storage"
	"podcastit/internal/tts"
	"podcastit/internal/worker"
	"podcastit/pkg/tasks"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	if err := run(logger); err != nil {
		logger.Error("worker startup failed", slog.String("error", err.Error()))
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

	if err := pingDB(ctx, db); err != nil {
		return err
	}

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		return err
	}

	var (
		generator   episodes.ScriptGenerator
		synthesizer episodes.SpeechSynthesizer
	)
	if cfg.OpenAIAPIKey != "" {
		generator = llm.NewOpenAIClient(logger, cfg.OpenAIAPIKey, cfg.ScriptModel, nil)
		synthesizer = tts.NewOpenAIClient(logger, cfg.OpenAIAPIKey, cfg.SpeechModel, nil)
	} else {
		logger.Warn("OPENAI_API_KEY not set, using offline stub clients")
		generator = llm.NewStubClient(logger)
		synthesizer = tts.NewStubClient()
	}

	repo := storage.NewEpisodeRepository(db)
	producer := episodes.NewProducer(logger, repo, blobs, generator, synthesizer, cfg.FallbackVoice)
	handler := worker.NewTaskHandler(logger, producer)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		asynq.Config{
			// Generation jobs call paid APIs and are CPU-light; a small
			// worker pool keeps provider rate limits comfortable.
			Concurrency: 4,
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeEpisodeCreate, handler.HandleEpisodeCreateTask)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("worker listening", slog.String("redis", cfg.RedisAddr))
		errCh <- srv.Run(mux)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		srv.Shutdown()
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("run worker: %w", err)
		}
		return nil
	}
}

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

		select {
		case <-ctx.Done():
			return fmt.Errorf("ping db: %w", err)
		case <-time.After(time.Duration(attempt) * baseDelay):
		}
	}

	return fmt.Errorf("ping db: %w", err)
}
