package api

import (
	"github.com/lysyi3m/news-comb/app/database"
	"github.com/lysyi3m/news-comb/app/ingest"
	"github.com/lysyi3m/news-comb/app/news"
	"github.com/lysyi3m/news-comb/app/processor"
	"github.com/lysyi3m/news-comb/app/tasks"
)

type ProcessorInterface interface {
	Health() processor.Health
	Metrics() processor.Metrics
	DetectTrendingTopics(articles []news.Article, windowHours int) []news.TrendingTopic
}

type FetcherInterface interface {
	Metrics() ingest.Metrics
}

var _ ProcessorInterface = (*processor.Processor)(nil)
var _ FetcherInterface = (*ingest.Fetcher)(nil)
var _ database.ArticleReader = (*database.Store)(nil)

type Handler struct {
	store            database.ArticleReader
	processor        ProcessorInterface
	fetcher          FetcherInterface
	scheduler        tasks.TaskSchedulerInterface
	trendWindowHours int
	version          string
}

const (
	maxArticleLimit  = 1000
	trendArticleScan = 1000
	maxTrendHours    = 168
)
