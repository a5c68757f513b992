package episodes

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strings"

	"podcastit/pkg/tasks"
)

// Service handles the request-path episode operations: synchronous CRUD plus
// the hand-off of the asynchronous generation job.
type Service struct {
	logger   *slog.Logger
	repo     Repository
	blobs    BlobStore
	enqueuer tasks.TaskEnqueuer
}

// NewService constructs a Service.
func NewService(logger *slog.Logger, repo Repository, blobs BlobStore, enqueuer tasks.TaskEnqueuer) *Service {
	return &Service{
		logger:   logger,
		repo:     repo,
		blobs:    blobs,
		enqueuer: enqueuer,
	}
}

// Create validates input, inserts a pending record, and enqueues the
// generation job. It returns without waiting for the job to run.
func (s *Service) Create(ctx context.Context, input EpisodeInput) (Episode, error) {
	if err := validateInput(input); err != nil {
		return Episode{}, err
	}

	inserted, err := s.repo.InsertPending(ctx, input.Slug, input.EpisodeTitle, input.ShowTitle)
	if err != nil {
		return Episode{}, fmt.Errorf("insert episode: %w", err)
	}
	if !inserted {
		return Episode{}, ErrConflict
	}

	task, err := tasks.NewEpisodeCreateTask(input)
	if err == nil {
		_, err = s.enqueuer.Enqueue(task)
	}
	if err != nil {
		// The record must not stay pending with no job behind it.
		if markErr := s.repo.MarkError(ctx, input.Slug); markErr != nil {
			s.logger.Error("mark episode error after enqueue failure",
				slog.String("slug", input.Slug),
				slog.String("error", markErr.Error()),
			)
		}
		return Episode{}, fmt.Errorf("enqueue episode job: %w", err)
	}

	return Episode{
		Slug:         input.Slug,
		EpisodeTitle: input.EpisodeTitle,
		ShowTitle:    input.ShowTitle,
		Status:       StatusPending,
	}, nil
}

// Get fetches a single episode by slug.
func (s *Service) Get(ctx context.Context, slug string) (Episode, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// List returns episodes matching the filter, in insertion order.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Episode, error) {
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	return s.repo.List(ctx, filter)
}

// Delete removes an episode's record and its audio blob.
func (s *Service) Delete(ctx context.Context, slug string) (Episode, error) {
	deleted, err := s.repo.DeleteBySlug(ctx, slug)
	if err != nil {
		return Episode{}, err
	}
	if deleted.AudioFile != "" {
		if err := s.blobs.Delete(ctx, deleted.AudioFile); err != nil {
			return Episode{}, fmt.Errorf("delete audio %s: %w", deleted.AudioFile, err)
		}
	}
	return deleted, nil
}

// DeleteAll purges every episode record.
func (s *Service) DeleteAll(ctx context.Context) error {
	return s.repo.DeleteAll(ctx)
}

// Audio fetches a finished audio file by blob key.
func (s *Service) Audio(ctx context.Context, file string) ([]byte, error) {
	data, err := s.blobs.Get(ctx, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: audio %s", ErrNotFound, file)
		}
		return nil, fmt.Errorf("get audio %s: %w", file, err)
	}
	return data, nil
}

func validateInput(input EpisodeInput) error {
	for _, field := range []struct {
		name, value string
	}{
		{"slug", input.Slug},
		{"content", input.Content},
		{"episodeTitle", input.EpisodeTitle},
		{"showTitle", input.ShowTitle},
	} {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, field.name)
		}
	}
	for _, host := range input.Hosts {
		if strings.TrimSpace(host.Name) == "" {
			return fmt.Errorf("%w: host name is required", ErrInvalidInput)
		}
		if !slices.Contains(Voices, host.Voice) {
			return fmt.Errorf("%w: unknown voice %q for host %q", ErrInvalidInput, host.Voice, host.Name)
		}
	}
	return nil
}
