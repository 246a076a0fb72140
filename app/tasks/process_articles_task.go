package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/news-comb/app/news"
)

const loggedTrendingTopics = 5

type ProcessArticlesTask struct {
	Task
	articles []news.ArticleRaw
	pipeline *Pipeline
}

func NewProcessArticlesTask(runID string, articles []news.ArticleRaw, pipeline *Pipeline) *ProcessArticlesTask {
	return &ProcessArticlesTask{
		Task:     NewTask(TaskTypeProcessArticles, runID),
		articles: articles,
		pipeline: pipeline,
	}
}

func (t *ProcessArticlesTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	saved, err := processAndStore(ctx, t.pipeline, t.RunID, t.articles)
	if err != nil {
		slog.Error("Task failed", "type", string(t.Type), "run_id", t.RunID, "error", err)
		return err
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"run_id", t.RunID,
		"fetched", len(t.articles),
		"saved", saved,
		"duration", t.GetDuration())

	return nil
}

// processAndStore enriches raw articles, saves the accepted ones and logs the
// strongest trending topics of the run.
func processAndStore(ctx context.Context, p *Pipeline, runID string, raw []news.ArticleRaw) (int, error) {
	processed := p.Processor.ProcessBatch(ctx, raw, p.BatchSize)
	if len(processed) == 0 {
		slog.Warn("No articles passed processing", "run_id", runID, "fetched", len(raw))
		return 0, nil
	}

	saved, err := p.Store.SaveBatch(ctx, processed, runID)
	if err != nil {
		return saved, fmt.Errorf("failed to save articles: %w", err)
	}

	topics := p.Processor.DetectTrendingTopics(processed, p.TrendWindowHours)
	for i, topic := range topics[:min(len(topics), loggedTrendingTopics)] {
		slog.Info("Trending topic",
			"run_id", runID,
			"rank", i+1,
			"keyword", topic.Keyword,
			"mentions", topic.TotalMentions,
			"score", topic.TrendingScore)
	}

	return saved, nil
}
