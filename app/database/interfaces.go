package database

import (
	"context"

	"github.com/lysyi3m/news-comb/app/news"
)

// ArticleWriter is the write side used by pipeline runs.
type ArticleWriter interface {
	SaveBatch(ctx context.Context, articles []news.Article, runID string) (int, error)
	CleanupOldData(ctx context.Context, days int) (CleanupResult, error)
}

// ArticleReader is the read side served to the dashboard.
type ArticleReader interface {
	GetArticles(ctx context.Context, q ArticleQuery) ([]StoredArticle, error)
	SearchArticles(ctx context.Context, term string, limit int) ([]StoredArticle, error)
	GetPerformanceMetrics(ctx context.Context, hours int) ([]MetricSummary, error)
	GetDataQualityReport(ctx context.Context, days int) (*QualityReport, error)
	GetDatabaseHealth(ctx context.Context) Health
	GetSentimentStats(ctx context.Context) (SentimentStats, error)
	GetTopSources(ctx context.Context, limit int) ([]SourceCount, error)
}
