package episodes

import (
	"context"
	"errors"
	"time"

	"podcastit/pkg/tasks"
)

var (
	// ErrNotFound signals a missing episode or audio file.
	ErrNotFound = errors.New("episode not found")

	// ErrConflict signals that an episode with the same slug already exists.
	ErrConflict = errors.New("episode already exists")

	// ErrInvalidInput signals validation errors when creating episodes.
	ErrInvalidInput = errors.New("invalid episode input")

	// ErrEmptyScript signals that generation succeeded but produced no dialogue.
	ErrEmptyScript = errors.New("script contains no dialogue")
)

// Status is the lifecycle state of an episode record.
type Status string

const (
	StatusPending  Status = "pending"
	StatusComplete Status = "complete"
	StatusError    Status = "error"
)

// Voices accepted for a host, matching the synthesis provider's roster.
var Voices = []string{
	"alloy", "ash", "ballad", "coral", "echo", "fable",
	"nova", "onyx", "sage", "shimmer", "verse",
}

// DefaultVoice is used when a dialogue line's host has no mapped voice.
const DefaultVoice = "alloy"

// Host pairs a speaker name with a synthesis voice. It is an alias of the
// task-payload type so the queue package does not import this package back.
type Host = tasks.Host

// Episode is a persisted podcast-generation record.
type Episode struct {
	Slug         string    `json:"slug"`
	EpisodeTitle string    `json:"episodeTitle"`
	ShowTitle    string    `json:"showTitle"`
	Status       Status    `json:"status"`
	AudioFile    string    `json:"audioFile"`
	Transcript   string    `json:"transcript"`
	CreatedAt    time.Time `json:"-"`
}

// EpisodeInput collects user input required to create an episode. Aliased
// for the same import-direction reason as Host.
type EpisodeInput = tasks.EpisodeInput

// Line is a single dialogue line attributed to a host.
type Line struct {
	HostName string `json:"hostName"`
	Text     string `json:"dialogue"`
}

// Script is the ordered dialogue produced for one episode. Its JSON form is
// stored verbatim as the episode transcript.
type Script struct {
	Dialogue []Line `json:"dialogue"`
}

// ScriptRequest describes the request to the script generator.
type ScriptRequest struct {
	Content   string `json:"content"`
	Hosts     []Host `json:"hosts"`
	ShowTitle string `json:"showTitle"`
}

// ListFilter narrows and pages episode listings.
type ListFilter struct {
	Status string
	Limit  int
	Offset int
}

// Repository defines the persistence layer contract.
type Repository interface {
	// InsertPending creates a pending record, reporting false if the slug
	// is already taken.
	InsertPending(ctx context.Context, slug, episodeTitle, showTitle string) (bool, error)
	MarkComplete(ctx context.Context, slug, transcript, audioFile string) error
	MarkError(ctx context.Context, slug string) error
	GetBySlug(ctx context.Context, slug string) (Episode, error)
	List(ctx context.Context, filter ListFilter) ([]Episode, error)
	// DeleteBySlug removes a record and returns it, or ErrNotFound.
	DeleteBySlug(ctx context.Context, slug string) (Episode, error)
	DeleteAll(ctx context.Context) error
}

// BlobStore holds finished audio files keyed by file name.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	// Get returns an error wrapping fs.ErrNotExist for a missing key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete is idempotent: deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// ScriptGenerator turns raw content plus a host roster into a dialogue script.
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, req ScriptRequest) (Script, error)
}

// SpeechSynthesizer turns one dialogue line into a single WAV clip.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}
