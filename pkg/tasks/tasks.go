package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TypeEpisodeCreate = "episode:create"
)

// Host pairs a speaker name with a synthesis voice.
type Host struct {
	Name  string `json:"name"`
	Voice string `json:"voice"`
}

// EpisodeInput collects user input required to create an episode.
type EpisodeInput struct {
	Slug         string `json:"slug"`
	Content      string `json:"content"`
	Hosts        []Host `json:"hosts"`
	EpisodeTitle string `json:"episodeTitle"`
	ShowTitle    string `json:"showTitle"`
}

type EpisodeCreateTaskPayload struct {
	Slug         string
	Content      string
	Hosts        []Host
	EpisodeTitle string
	ShowTitle    string
}

func NewEpisodeCreateTask(input EpisodeInput) (*asynq.Task, error) {
	payload, err := json.Marshal(EpisodeCreateTaskPayload{
		Slug:         input.Slug,
		Content:      input.Content,
		Hosts:        input.Hosts,
		EpisodeTitle: input.EpisodeTitle,
		ShowTitle:    input.ShowTitle,
	})
	if err != nil {
		return nil, err
	}
	// A failed episode job must settle as an error record, never re-run.
	return asynq.NewTask(TypeEpisodeCreate, payload, asynq.MaxRetry(0)), nil
}

// Input converts the payload back into the orchestrator's episode input.
func (p EpisodeCreateTaskPayload) Input() EpisodeInput {
	return EpisodeInput{
		Slug:         p.Slug,
		Content:      p.Content,
		Hosts:        p.Hosts,
		EpisodeTitle: p.EpisodeTitle,
		ShowTitle:    p.ShowTitle,
	}
}
