package llm

import (
	"context"
	"fmt"
	"log/slog"

	"podcastit/internal/episodes"
)

// StubClient implements episodes.ScriptGenerator with deterministic output
// for development runs without an API key.
type StubClient struct {
	logger *slog.Logger
}

// NewStubClient returns a stubbed script generator.
func NewStubClient(logger *slog.Logger) *StubClient {
	return &StubClient{logger: logger}
}

// GenerateScript creates a short deterministic dialogue that alternates
// between the roster hosts.
func (s *StubClient) GenerateScript(ctx context.Context, req episodes.ScriptRequest) (episodes.Script, error) {
	hosts := req.Hosts
	if len(hosts) == 0 {
		hosts = []episodes.Host{{Name: "Host", Voice: episodes.DefaultVoice}}
	}

	excerpt := req.Content
	if len(excerpt) > 80 {
		excerpt = excerpt[:80] + "…"
	}

	lines := []episodes.Line{
		{
			HostName: hosts[0].Name,
			Text:     fmt.Sprintf("Welcome to %s. Today we are looking at: %s", req.ShowTitle, excerpt),
		},
	}
	for i, host := range hosts {
		lines = append(lines, episodes.Line{
			HostName: host.Name,
			Text:     fmt.Sprintf("That's a great point, let me add thought number %d.", i+1),
		})
	}
	lines = append(lines, episodes.Line{
		HostName: hosts[len(hosts)-1].Name,
		Text:     "That's all we have time for today. Thanks for listening!",
	})

	s.logger.Debug("stub script generated",
		slog.String("show", req.ShowTitle),
		slog.Int("lines", len(lines)),
	)

	return episodes.Script{Dialogue: lines}, nil
}
