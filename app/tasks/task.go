package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeRunPipeline     TaskType = "run_pipeline"
	TaskTypeProcessArticles TaskType = "process_articles"
	TaskTypeCleanup         TaskType = "cleanup"
	TaskTypeReloadProfile   TaskType = "reload_profile"
)

const (
	DefaultMaxRetries = 3
)

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetRunID() string
	GetRetryCount() int
	GetMaxRetries() int
	IncrementRetryCount()
	CanRetry() bool
	Start()
	GetDuration() time.Duration
}

type Task struct {
	ID         string
	Type       TaskType
	RunID      string
	RetryCount int
	MaxRetries int
	StartedAt  *time.Time
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) GetRunID() string {
	return t.RunID
}

func (t *Task) GetRetryCount() int {
	return t.RetryCount
}

func (t *Task) GetMaxRetries() int {
	return t.MaxRetries
}

func (t *Task) IncrementRetryCount() {
	t.RetryCount++
}

func (t *Task) CanRetry() bool {
	return t.RetryCount < t.MaxRetries
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

// NewTask creates a task base. An empty runID gets a fresh one.
func NewTask(taskType TaskType, runID string) Task {
	if runID == "" {
		runID = uuid.NewString()
	}

	return Task{
		ID:         uuid.NewString(),
		Type:       taskType,
		RunID:      runID,
		RetryCount: 0,
		MaxRetries: DefaultMaxRetries,
	}
}
