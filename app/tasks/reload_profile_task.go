package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

// ReloadProfileTask re-reads the fetch profile so edits apply to the next run.
type ReloadProfileTask struct {
	Task
	profiles ProfileLoader
}

func NewReloadProfileTask(profiles ProfileLoader) *ReloadProfileTask {
	return &ReloadProfileTask{
		Task:     NewTask(TaskTypeReloadProfile, ""),
		profiles: profiles,
	}
}

func (t *ReloadProfileTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.profiles.Run(); err != nil {
		slog.Error("Task failed", "type", string(t.Type), "error", err)
		return fmt.Errorf("failed to reload profile: %w", err)
	}

	slog.Debug("Task completed",
		"type", string(t.Type),
		"duration", t.GetDuration())

	return nil
}
