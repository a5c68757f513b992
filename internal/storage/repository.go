package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"podcastit/internal/episodes"
)

// EpisodeRepository persists episode records in PostgreSQL.
type EpisodeRepository struct {
	db *sql.DB
}

// NewEpisodeRepository creates a new repository.
func NewEpisodeRepository(db *sql.DB) *EpisodeRepository {
	return &EpisodeRepository{db: db}
}

const episodeColumns = "slug, episode_title, show_title, status, audio_file, transcript, created_at"

// InsertPending creates a pending record. The slug uniqueness constraint is
// the only guard against concurrent jobs for the same slug, so conflicts are
// reported rather than treated as errors.
func (r *EpisodeRepository) InsertPending(ctx context.Context, slug, episodeTitle, showTitle string) (bool, error) {
	const insert = `
		INSERT INTO episodes (slug, episode_title, show_title, status)
		VALUES ($1, $2, $3, 'pending')
		ON CONFLICT (slug) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, insert, slug, episodeTitle, showTitle)
	if err != nil {
		return false, fmt.Errorf("insert episode: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// MarkComplete sets the terminal complete state together with the transcript
// and audio reference in a single update.
func (r *EpisodeRepository) MarkComplete(ctx context.Context, slug, transcript, audioFile string) error {
	const update = `
		UPDATE episodes
		SET status = 'complete', transcript = $1, audio_file = $2
		WHERE slug = $3
	`
	if _, err := r.db.ExecContext(ctx, update, transcript, audioFile, slug); err != nil {
		return fmt.Errorf("mark complete: %w", err)
	}
	return nil
}

// MarkError sets the terminal error state.
func (r *EpisodeRepository) MarkError(ctx context.Context, slug string) error {
	const update = `UPDATE episodes SET status = 'error' WHERE slug = $1`
	if _, err := r.db.ExecContext(ctx, update, slug); err != nil {
		return fmt.Errorf("mark error: %w", err)
	}
	return nil
}

// GetBySlug fetches a single episode.
func (r *EpisodeRepository) GetBySlug(ctx context.Context, slug string) (episodes.Episode, error) {
	query := fmt.Sprintf("SELECT %s FROM episodes WHERE slug = $1", episodeColumns)
	row := r.db.QueryRowContext(ctx, query, slug)
	ep, err := scanEpisode(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return episodes.Episode{}, episodes.ErrNotFound
		}
		return episodes.Episode{}, fmt.Errorf("select episode: %w", err)
	}
	return ep, nil
}

// List returns episodes in insertion order, optionally filtered by status.
func (r *EpisodeRepository) List(ctx context.Context, filter episodes.ListFilter) ([]episodes.Episode, error) {
	query := strings.Builder{}
	args := []any{}

	query.WriteString(fmt.Sprintf("SELECT %s FROM episodes", episodeColumns))
	if filter.Status != "" {
		args = append(args, filter.Status)
		query.WriteString(fmt.Sprintf(" WHERE status = $%d", len(args)))
	}
	query.WriteString(" ORDER BY id")

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit)
	query.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))
	}

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer rows.Close()

	result := make([]episodes.Episode, 0)
	for rows.Next() {
		ep, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		result = append(result, ep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

// DeleteBySlug removes an episode and returns the deleted row so the caller
// can clean up the associated audio blob.
func (r *EpisodeRepository) DeleteBySlug(ctx context.Context, slug string) (episodes.Episode, error) {
	query := fmt.Sprintf("DELETE FROM episodes WHERE slug = $1 RETURNING %s", episodeColumns)
	row := r.db.QueryRowContext(ctx, query, slug)
	ep, err := scanEpisode(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return episodes.Episode{}, episodes.ErrNotFound
		}
		return episodes.Episode{}, fmt.Errorf("delete episode: %w", err)
	}
	return ep, nil
}

// DeleteAll purges every episode record.
func (r *EpisodeRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM episodes"); err != nil {
		return fmt.Errorf("delete episodes: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEpisode(row rowScanner) (episodes.Episode, error) {
	var ep episodes.Episode
	if err := row.Scan(
		&ep.Slug,
		&ep.EpisodeTitle,
		&ep.ShowTitle,
		&ep.Status,
		&ep.AudioFile,
		&ep.Transcript,
		&ep.CreatedAt,
	); err != nil {
		return episodes.Episode{}, err
	}
	return ep, nil
}
