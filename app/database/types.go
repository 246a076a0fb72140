package database

import (
	"time"
)

// timeLayout is how every timestamp column is stored, always in UTC.
const timeLayout = "2006-01-02 15:04:05"

const keywordSeparator = ", "

// StoredArticle is an articles row as returned by the read queries.
type StoredArticle struct {
	ID                  int64     `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	URL                 string    `json:"url"`
	Source              string    `json:"source"`
	PublishedAt         time.Time `json:"published_at"`
	SentimentScore      float64   `json:"sentiment_score"`
	SentimentLabel      string    `json:"sentiment_label"`
	SentimentConfidence float64   `json:"sentiment_confidence"`
	Keywords            []string  `json:"keywords"`
	Category            string    `json:"category"`
	CategoryConfidence  float64   `json:"category_confidence"`
	QualityScore        float64   `json:"quality_score"`
	ReadabilityScore    float64   `json:"readability_score"`
	Language            string    `json:"language,omitempty"`
	ImageURL            string    `json:"image_url,omitempty"`
	Tag                 string    `json:"tag,omitempty"`
	ProcessingTime      float64   `json:"processing_time"`
	CreatedAt           time.Time `json:"created_at"`
}

type ArticleQuery struct {
	Limit      int
	Category   string
	Source     string
	Sentiment  string
	MinQuality float64
}

const (
	DefaultArticleLimit  = 100
	DefaultMinQuality    = 0.7
	DefaultSearchLimit   = 50
	SearchMinQuality     = 0.5
	DefaultTopSources    = 10
	DefaultMetricsHours  = 24
	DefaultQualityDays   = 7
	DefaultRetentionDays = 30
)

type MetricSummary struct {
	MetricName string  `json:"metric_name"`
	AvgValue   float64 `json:"avg_value"`
	MaxValue   float64 `json:"max_value"`
	MinValue   float64 `json:"min_value"`
	Count      int     `json:"count"`
}

type QualityLogEntry struct {
	RunID             string     `json:"run_id"`
	Timestamp         time.Time  `json:"timestamp"`
	TotalArticles     int        `json:"total_articles"`
	ValidArticles     int        `json:"valid_articles"`
	DuplicateArticles int        `json:"duplicate_articles"`
	QualityFailures   int        `json:"quality_failures"`
	ProcessingTime    float64    `json:"processing_time"`
	ErrorDetails      ErrorRates `json:"error_details"`
}

// ErrorRates is stored as JSON in data_quality_log.error_details.
type ErrorRates struct {
	SuccessRate        float64 `json:"success_rate"`
	DuplicateRate      float64 `json:"duplicate_rate"`
	QualityFailureRate float64 `json:"quality_failure_rate"`
}

type QualityReport struct {
	QualityLogs         []QualityLogEntry `json:"quality_logs"`
	QualityDistribution map[string]int    `json:"quality_distribution"`
	Metrics             Metrics           `json:"metrics"`
}

type Health struct {
	Status          string  `json:"status"`
	TotalArticles   int     `json:"total_articles"`
	Articles24h     int     `json:"articles_24h"`
	AvgQualityScore float64 `json:"avg_quality_score"`
	UniqueSources   int     `json:"unique_sources"`
	DatabaseSizeMB  float64 `json:"database_size_mb"`
	Metrics         Metrics `json:"metrics"`
	Error           string  `json:"error,omitempty"`
}

type CleanupResult struct {
	ArticlesDeleted int64 `json:"articles_deleted"`
	LogsDeleted     int64 `json:"logs_deleted"`
	MetricsDeleted  int64 `json:"metrics_deleted"`
}

type SentimentStats struct {
	SentimentCounts map[string]int `json:"sentiment_counts"`
	AvgSentiment    float64        `json:"avg_sentiment"`
	TotalArticles   int            `json:"total_articles"`
}

type SourceCount struct {
	Source       string  `json:"source"`
	ArticleCount int     `json:"article_count"`
	AvgQuality   float64 `json:"avg_quality"`
}
