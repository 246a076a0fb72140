package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/news-comb/app/database"
)

type CleanupTask struct {
	Task
	days  int
	store database.ArticleWriter
}

func NewCleanupTask(days int, store database.ArticleWriter) *CleanupTask {
	return &CleanupTask{
		Task:  NewTask(TaskTypeCleanup, ""),
		days:  days,
		store: store,
	}
}

func (t *CleanupTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result, err := t.store.CleanupOldData(ctx, t.days)
	if err != nil {
		slog.Error("Task failed", "type", string(t.Type), "error", err)
		return fmt.Errorf("failed to clean up old data: %w", err)
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"retention_days", t.days,
		"articles_deleted", result.ArticlesDeleted,
		"logs_deleted", result.LogsDeleted,
		"metrics_deleted", result.MetricsDeleted,
		"duration", t.GetDuration())

	return nil
}
