package tasks

import "github.com/hibiken/asynq"

// TaskEnqueuer is the slice of asynq.Client the API layer needs to hand an
// episode job to the worker. Kept as an interface so handler tests can swap
// in an in-process fake.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
