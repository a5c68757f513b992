// Package episodestest provides in-memory fakes for the episode domain's
// collaborator interfaces, shared by the service, producer, worker, and
// HTTP-handler tests.
package episodestest

import (
	"context"
	"encoding/binary"
	"fmt"
	"io/fs"
	"sync"

	"github.com/hibiken/asynq"

	"podcastit/internal/episodes"
	"podcastit/internal/wav"
)

// Repository is an in-memory episodes.Repository with the same uniqueness
// and transition behavior as the Postgres implementation.
type Repository struct {
	mu      sync.Mutex
	order   []string
	records map[string]episodes.Episode

	// InsertErr, MarkErr force failures when set.
	InsertErr error
	MarkErr   error
}

func NewRepository() *Repository {
	return &Repository{records: make(map[string]episodes.Episode)}
}

func (r *Repository) InsertPending(_ context.Context, slug, episodeTitle, showTitle string) (bool, error) {
	if r.InsertErr != nil {
		return false, r.InsertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[slug]; exists {
		return false, nil
	}
	r.records[slug] = episodes.Episode{
		Slug:         slug,
		EpisodeTitle: episodeTitle,
		ShowTitle:    showTitle,
		Status:       episodes.StatusPending,
	}
	r.order = append(r.order, slug)
	return true, nil
}

func (r *Repository) MarkComplete(_ context.Context, slug, transcript, audioFile string) error {
	if r.MarkErr != nil {
		return r.MarkErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[slug]
	if !ok {
		return fmt.Errorf("mark complete: %w", episodes.ErrNotFound)
	}
	rec.Status = episodes.StatusComplete
	rec.Transcript = transcript
	rec.AudioFile = audioFile
	r.records[slug] = rec
	return nil
}

func (r *Repository) MarkError(_ context.Context, slug string) error {
	if r.MarkErr != nil {
		return r.MarkErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[slug]
	if !ok {
		return fmt.Errorf("mark error: %w", episodes.ErrNotFound)
	}
	rec.Status = episodes.StatusError
	r.records[slug] = rec
	return nil
}

func (r *Repository) GetBySlug(_ context.Context, slug string) (episodes.Episode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[slug]
	if !ok {
		return episodes.Episode{}, episodes.ErrNotFound
	}
	return rec, nil
}

func (r *Repository) List(_ context.Context, filter episodes.ListFilter) ([]episodes.Episode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := make([]episodes.Episode, 0)
	for _, slug := range r.order {
		rec := r.records[slug]
		if filter.Status != "" && string(rec.Status) != filter.Status {
			continue
		}
		matched = append(matched, rec)
	}
	if filter.Offset >= len(matched) {
		return []episodes.Episode{}, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (r *Repository) DeleteBySlug(_ context.Context, slug string) (episodes.Episode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[slug]
	if !ok {
		return episodes.Episode{}, episodes.ErrNotFound
	}
	delete(r.records, slug)
	for i, s := range r.order {
		if s == slug {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return rec, nil
}

func (r *Repository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = make(map[string]episodes.Episode)
	r.order = nil
	return nil
}

// BlobStore is an in-memory episodes.BlobStore.
type BlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte

	PutErr error
}

func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string][]byte)}
}

func (b *BlobStore) Put(_ context.Context, key string, data []byte) error {
	if b.PutErr != nil {
		return b.PutErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (b *BlobStore) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.blobs[key]
	if !ok {
		return nil, fmt.Errorf("blob %s: %w", key, fs.ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

func (b *BlobStore) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.blobs, key)
	return nil
}

// Len reports the number of stored blobs.
func (b *BlobStore) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.blobs)
}

// GeneratorFunc adapts a function to episodes.ScriptGenerator.
type GeneratorFunc func(ctx context.Context, req episodes.ScriptRequest) (episodes.Script, error)

func (f GeneratorFunc) GenerateScript(ctx context.Context, req episodes.ScriptRequest) (episodes.Script, error) {
	return f(ctx, req)
}

// SynthesizerFunc adapts a function to episodes.SpeechSynthesizer.
type SynthesizerFunc func(ctx context.Context, text, voice string) ([]byte, error)

func (f SynthesizerFunc) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	return f(ctx, text, voice)
}

// Enqueuer records enqueued tasks. When Handler is set, each task is handed
// to it inline, which lets HTTP tests run the whole job synchronously.
type Enqueuer struct {
	mu      sync.Mutex
	tasks   []*asynq.Task
	Err     error
	Handler func(task *asynq.Task)
}

func (e *Enqueuer) Enqueue(task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	e.mu.Lock()
	e.tasks = append(e.tasks, task)
	e.mu.Unlock()
	if e.Handler != nil {
		e.Handler(task)
	}
	return &asynq.TaskInfo{ID: "test-task-id", Queue: "default"}, nil
}

// Tasks returns the tasks enqueued so far.
func (e *Enqueuer) Tasks() []*asynq.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*asynq.Task(nil), e.tasks...)
}

// Clip builds a well-formed mono 16-bit PCM WAV clip with n payload bytes.
func Clip(n int) []byte {
	payload := make([]byte, n)
	for i := range payload {
		payload[i] = byte(i)
	}

	header := make([]byte, wav.HeaderSize)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+n))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1)
	binary.LittleEndian.PutUint16(header[22:24], 1)
	binary.LittleEndian.PutUint32(header[24:28], 24000)
	binary.LittleEndian.PutUint32(header[28:32], 48000)
	binary.LittleEndian.PutUint16(header[32:34], 2)
	binary.LittleEndian.PutUint16(header[34:36], 16)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(n))

	return append(header, payload...)
}
