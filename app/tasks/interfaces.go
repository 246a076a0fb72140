package tasks

import (
	"context"

	"github.com/lysyi3m/news-comb/app/database"
	"github.com/lysyi3m/news-comb/app/news"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API to queue pipeline work.
// Example usage:
//
//	scheduler := NewScheduler(pipeline, profiles, cfg.MaxWorkers, cfg.CleanupInterval)
//	scheduler.Start()
//	defer scheduler.Stop()
//	runID, err := scheduler.EnqueueRun()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	EnqueueRun() (string, error)
	EnqueueArticles(runID string, articles []news.ArticleRaw) error
	EnqueueCleanup(days int) error
}

type ArticleFetcher interface {
	RunFullFetch(ctx context.Context, runID string) []news.ArticleRaw
}

type ArticleProcessor interface {
	ProcessBatch(ctx context.Context, articles []news.ArticleRaw, batchSize int) []news.Article
	DetectTrendingTopics(articles []news.Article, windowHours int) []news.TrendingTopic
}

type ProfileLoader interface {
	Run() error
}

// Pipeline bundles the collaborators a run needs.
type Pipeline struct {
	Fetcher          ArticleFetcher
	Processor        ArticleProcessor
	Store            database.ArticleWriter
	BatchSize        int
	TrendWindowHours int
	RetentionDays    int
}
