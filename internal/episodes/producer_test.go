package episodes_test

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"podcastit/internal/episodes"
	"podcastit/internal/episodes/episodestest"
	"podcastit/internal/wav"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func scriptOf(lines ...episodes.Line) episodes.Script {
	return episodes.Script{Dialogue: lines}
}

func pendingInput() episodes.EpisodeInput {
	return episodes.EpisodeInput{
		Slug:         "test",
		Content:      "This is a simple test",
		Hosts:        []episodes.Host{{Name: "Test Host", Voice: "alloy"}},
		EpisodeTitle: "Episode One",
		ShowTitle:    "The Test Show",
	}
}

func TestProducerCompletesEpisode(t *testing.T) {
	repo := episodestest.NewRepository()
	blobs := episodestest.NewBlobStore()
	input := pendingInput()

	_, err := repo.InsertPending(context.Background(), input.Slug, input.EpisodeTitle, input.ShowTitle)
	require.NoError(t, err)

	script := scriptOf(
		episodes.Line{HostName: "Test Host", Text: "Hello"},
		episodes.Line{HostName: "Test Host", Text: "Goodbye"},
	)
	gen := episodestest.GeneratorFunc(func(_ context.Context, req episodes.ScriptRequest) (episodes.Script, error) {
		require.Equal(t, input.Content, req.Content)
		require.Equal(t, input.ShowTitle, req.ShowTitle)
		return script, nil
	})

	payloadSizes := []int{20, 30}
	var call int
	synth := episodestest.SynthesizerFunc(func(_ context.Context, text, voice string) ([]byte, error) {
		require.Equal(t, "alloy", voice)
		clip := episodestest.Clip(payloadSizes[call])
		call++
		return clip, nil
	})

	producer := episodes.NewProducer(discardLogger(), repo, blobs, gen, synth, "")
	producer.Produce(context.Background(), input)

	rec, err := repo.GetBySlug(context.Background(), "test")
	require.NoError(t, err)
	require.Equal(t, episodes.StatusComplete, rec.Status)
	require.Equal(t, "test.wav", rec.AudioFile)
	require.JSONEq(t, `{"dialogue":[{"hostName":"Test Host","dialogue":"Hello"},{"hostName":"Test Host","dialogue":"Goodbye"}]}`, rec.Transcript)

	audio, err := blobs.Get(context.Background(), "test.wav")
	require.NoError(t, err)
	require.Len(t, audio, wav.HeaderSize+20+30)
	require.Equal(t, uint32(20+30), binary.LittleEndian.Uint32(audio[40:44]))
}

func TestProducerResolvesVoicesCaseInsensitively(t *testing.T) {
	repo := episodestest.NewRepository()
	blobs := episodestest.NewBlobStore()
	input := episodes.EpisodeInput{
		Slug:    "voices",
		Content: "content",
		Hosts: []episodes.Host{
			{Name: "Ada", Voice: "nova"},
			{Name: "Grace", Voice: "onyx"},
		},
		EpisodeTitle: "t",
		ShowTitle:    "s",
	}
	_, err := repo.InsertPending(context.Background(), input.Slug, input.EpisodeTitle, input.ShowTitle)
	require.NoError(t, err)

	gen := episodestest.GeneratorFunc(func(context.Context, episodes.ScriptRequest) (episodes.Script, error) {
		return scriptOf(
			episodes.Line{HostName: "ADA", Text: "one"},
			episodes.Line{HostName: "grace", Text: "two"},
			episodes.Line{HostName: "Narrator", Text: "three"},
		), nil
	})

	var voices []string
	synth := episodestest.SynthesizerFunc(func(_ context.Context, text, voice string) ([]byte, error) {
		voices = append(voices, voice)
		return episodestest.Clip(8), nil
	})

	producer := episodes.NewProducer(discardLogger(), repo, blobs, gen, synth, "")
	producer.Produce(context.Background(), input)

	// Unknown hosts fall back to the default voice.
	require.Equal(t, []string{"nova", "onyx", "alloy"}, voices)

	rec, err := repo.GetBySlug(context.Background(), "voices")
	require.NoError(t, err)
	require.Equal(t, episodes.StatusComplete, rec.Status)
}

func TestProducerGenerationFailure(t *testing.T) {
	repo := episodestest.NewRepository()
	blobs := episodestest.NewBlobStore()
	input := pendingInput()
	_, err := repo.InsertPending(context.Background(), input.Slug, input.EpisodeTitle, input.ShowTitle)
	require.NoError(t, err)

	gen := episodestest.GeneratorFunc(func(context.Context, episodes.ScriptRequest) (episodes.Script, error) {
		return episodes.Script{}, errors.New("provider down")
	})
	synth := episodestest.SynthesizerFunc(func(context.Context, string, string) ([]byte, error) {
		t.Fatal("synthesizer must not be called when generation fails")
		return nil, nil
	})

	producer := episodes.NewProducer(discardLogger(), repo, blobs, gen, synth, "")
	producer.Produce(context.Background(), input)

	rec, err := repo.GetBySlug(context.Background(), "test")
	require.NoError(t, err)
	require.Equal(t, episodes.StatusError, rec.Status)
	require.Empty(t, rec.AudioFile)
	require.Zero(t, blobs.Len())
}

func TestProducerSynthesisFailureKeepsNoPartialAudio(t *testing.T) {
	repo := episodestest.NewRepository()
	blobs := episodestest.NewBlobStore()
	input := pendingInput()
	_, err := repo.InsertPending(context.Background(), input.Slug, input.EpisodeTitle, input.ShowTitle)
	require.NoError(t, err)

	gen := episodestest.GeneratorFunc(func(context.Context, episodes.ScriptRequest) (episodes.Script, error) {
		return scriptOf(
			episodes.Line{HostName: "Test Host", Text: "one"},
			episodes.Line{HostName: "Test Host", Text: "two"},
		), nil
	})
	var calls int
	synth := episodestest.SynthesizerFunc(func(context.Context, string, string) ([]byte, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("tts failure")
		}
		return episodestest.Clip(16), nil
	})

	producer := episodes.NewProducer(discardLogger(), repo, blobs, gen, synth, "")
	producer.Produce(context.Background(), input)

	rec, err := repo.GetBySlug(context.Background(), "test")
	require.NoError(t, err)
	require.Equal(t, episodes.StatusError, rec.Status)
	require.Empty(t, rec.AudioFile)
	require.Empty(t, rec.Transcript)
	require.Zero(t, blobs.Len())
}

func TestProducerEmptyScriptIsFatal(t *testing.T) {
	repo := episodestest.NewRepository()
	blobs := episodestest.NewBlobStore()
	input := pendingInput()
	_, err := repo.InsertPending(context.Background(), input.Slug, input.EpisodeTitle, input.ShowTitle)
	require.NoError(t, err)

	// A script with no dialogue yields no clips, which Assemble rejects.
	gen := episodestest.GeneratorFunc(func(context.Context, episodes.ScriptRequest) (episodes.Script, error) {
		return episodes.Script{}, nil
	})
	synth := episodestest.SynthesizerFunc(func(context.Context, string, string) ([]byte, error) {
		return episodestest.Clip(4), nil
	})

	producer := episodes.NewProducer(discardLogger(), repo, blobs, gen, synth, "")
	producer.Produce(context.Background(), input)

	rec, err := repo.GetBySlug(context.Background(), "test")
	require.NoError(t, err)
	require.Equal(t, episodes.StatusError, rec.Status)
	require.Zero(t, blobs.Len())
}

func TestProducerRecoversFromPanic(t *testing.T) {
	repo := episodestest.NewRepository()
	blobs := episodestest.NewBlobStore()
	input := pendingInput()
	_, err := repo.InsertPending(context.Background(), input.Slug, input.EpisodeTitle, input.ShowTitle)
	require.NoError(t, err)

	gen := episodestest.GeneratorFunc(func(context.Context, episodes.ScriptRequest) (episodes.Script, error) {
		panic("boom")
	})
	synth := episodestest.SynthesizerFunc(func(context.Context, string, string) ([]byte, error) {
		return episodestest.Clip(4), nil
	})

	producer := episodes.NewProducer(discardLogger(), repo, blobs, gen, synth, "")
	require.NotPanics(t, func() {
		producer.Produce(context.Background(), input)
	})

	rec, err := repo.GetBySlug(context.Background(), "test")
	require.NoError(t, err)
	require.Equal(t, episodes.StatusError, rec.Status)
}

func TestProducerBlobFailure(t *testing.T) {
	repo := episodestest.NewRepository()
	blobs := episodestest.NewBlobStore()
	blobs.PutErr = errors.New("bucket unavailable")
	input := pendingInput()
	_, err := repo.InsertPending(context.Background(), input.Slug, input.EpisodeTitle, input.ShowTitle)
	require.NoError(t, err)

	gen := episodestest.GeneratorFunc(func(context.Context, episodes.ScriptRequest) (episodes.Script, error) {
		return scriptOf(episodes.Line{HostName: "Test Host", Text: "Hello"}), nil
	})
	synth := episodestest.SynthesizerFunc(func(context.Context, string, string) ([]byte, error) {
		return episodestest.Clip(16), nil
	})

	producer := episodes.NewProducer(discardLogger(), repo, blobs, gen, synth, "")
	producer.Produce(context.Background(), input)

	rec, err := repo.GetBySlug(context.Background(), "test")
	require.NoError(t, err)
	require.Equal(t, episodes.StatusError, rec.Status)
	require.Empty(t, rec.AudioFile)
}
