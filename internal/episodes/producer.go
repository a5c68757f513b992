package episodes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"podcastit/internal/wav"
)

// Producer runs the asynchronous episode-generation job: script generation,
// per-line speech synthesis, clip merging, blob write, and the final record
// transition. One call drives one episode from pending to complete or error.
type Producer struct {
	logger        *slog.Logger
	repo          Repository
	blobs         BlobStore
	generator     ScriptGenerator
	synthesizer   SpeechSynthesizer
	fallbackVoice string
}

// NewProducer constructs a Producer. fallbackVoice is used for dialogue
// lines whose host has no roster entry; empty means DefaultVoice.
func NewProducer(logger *slog.Logger, repo Repository, blobs BlobStore, generator ScriptGenerator, synthesizer SpeechSynthesizer, fallbackVoice string) *Producer {
	if fallbackVoice == "" {
		fallbackVoice = DefaultVoice
	}
	return &Producer{
		logger:        logger,
		repo:          repo,
		blobs:         blobs,
		generator:     generator,
		synthesizer:   synthesizer,
		fallbackVoice: fallbackVoice,
	}
}

// Produce runs the generation pipeline for one episode. The caller has
// already inserted the record in pending state; Produce guarantees the
// record leaves pending exactly once, no matter how the pipeline fails.
// It never returns an error: the job is fire-and-forget and failures are
// recorded on the episode row and in the log.
func (p *Producer) Produce(ctx context.Context, input EpisodeInput) {
	logger := p.logger.With(
		slog.String("slug", input.Slug),
		slog.String("job_id", uuid.NewString()),
	)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("episode job panicked", slog.Any("panic", r))
			p.markError(ctx, logger, input.Slug)
		}
	}()

	if err := p.run(ctx, logger, input); err != nil {
		logger.Error("episode job failed", slog.String("error", err.Error()))
		p.markError(ctx, logger, input.Slug)
	}
}

func (p *Producer) run(ctx context.Context, logger *slog.Logger, input EpisodeInput) error {
	script, err := p.generator.GenerateScript(ctx, ScriptRequest{
		Content:   input.Content,
		Hosts:     input.Hosts,
		ShowTitle: input.ShowTitle,
	})
	if err != nil {
		return fmt.Errorf("generate script: %w", err)
	}
	logger.Info("script generated", slog.Int("lines", len(script.Dialogue)))

	voices := make(map[string]string, len(input.Hosts))
	for _, host := range input.Hosts {
		voices[strings.ToLower(host.Name)] = host.Voice
	}

	// Clip order is final audio order; synthesis stays strictly sequential.
	clips := make([][]byte, 0, len(script.Dialogue))
	for i, line := range script.Dialogue {
		voice := voices[strings.ToLower(line.HostName)]
		if voice == "" {
			voice = p.fallbackVoice
		}
		clip, err := p.synthesizer.Synthesize(ctx, line.Text, voice)
		if err != nil {
			return fmt.Errorf("synthesize line %d (%s): %w", i, line.HostName, err)
		}
		clips = append(clips, clip)
	}

	merged, err := wav.Assemble(clips)
	if err != nil {
		return fmt.Errorf("assemble audio: %w", err)
	}

	audioFile := input.Slug + ".wav"
	if err := p.blobs.Put(ctx, audioFile, merged); err != nil {
		return fmt.Errorf("store audio: %w", err)
	}

	transcript, err := json.Marshal(script)
	if err != nil {
		return fmt.Errorf("serialize transcript: %w", err)
	}

	if err := p.repo.MarkComplete(ctx, input.Slug, string(transcript), audioFile); err != nil {
		return fmt.Errorf("mark complete: %w", err)
	}

	logger.Info("episode complete",
		slog.String("audio_file", audioFile),
		slog.Int("audio_bytes", len(merged)),
	)
	return nil
}

func (p *Producer) markError(ctx context.Context, logger *slog.Logger, slug string) {
	if err := p.repo.MarkError(ctx, slug); err != nil {
		logger.Error("mark episode error failed", slog.String("error", err.Error()))
	}
}
