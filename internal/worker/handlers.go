// Package worker consumes episode generation tasks from the queue.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"podcastit/internal/episodes"
	"podcastit/pkg/tasks"
)

// TaskHandler routes queue tasks to the episode producer.
type TaskHandler struct {
	logger   *slog.Logger
	producer *episodes.Producer
}

// NewTaskHandler constructs a TaskHandler.
func NewTaskHandler(logger *slog.Logger, producer *episodes.Producer) *TaskHandler {
	return &TaskHandler{logger: logger, producer: producer}
}

// HandleEpisodeCreateTask runs one episode generation job. Pipeline failures
// settle as error rows inside the producer, so the task itself only fails on
// a malformed payload, which is never worth retrying.
func (h *TaskHandler) HandleEpisodeCreateTask(ctx context.Context, t *asynq.Task) error {
	var payload tasks.EpisodeCreateTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}

	h.logger.Info("episode task received", slog.String("slug", payload.Slug))
	h.producer.Produce(ctx, payload.Input())
	return nil
}
