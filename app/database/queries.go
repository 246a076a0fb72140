package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

var articleColumns = []string{
	"id", "title", "COALESCE(description, '')", "url", "COALESCE(source, '')",
	"COALESCE(published_at, '')", "COALESCE(sentiment_score, 0)", "COALESCE(sentiment_label, '')",
	"COALESCE(sentiment_confidence, 0)", "COALESCE(keywords, '')", "COALESCE(category, '')",
	"COALESCE(category_confidence, 0)", "COALESCE(quality_score, 0)", "COALESCE(readability_score, 0)",
	"COALESCE(language, '')", "COALESCE(image_url, '')", "COALESCE(tag, '')",
	"COALESCE(processing_time, 0)", "COALESCE(created_at, '')",
}

// GetArticles lists articles at or above the quality floor, newest first.
func (s *Store) GetArticles(ctx context.Context, q ArticleQuery) ([]StoredArticle, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultArticleLimit
	}

	query := sq.Select(articleColumns...).
		From("articles").
		Where(sq.GtOrEq{"quality_score": q.MinQuality}).
		OrderBy("published_at DESC").
		Limit(uint64(q.Limit))

	if q.Category != "" {
		query = query.Where(sq.Eq{"category": q.Category})
	}
	if q.Source != "" {
		query = query.Where(sq.Eq{"source": q.Source})
	}
	if q.Sentiment != "" {
		query = query.Where(sq.Eq{"sentiment_label": q.Sentiment})
	}

	return s.queryArticles(ctx, query)
}

// SearchArticles matches term against titles and descriptions.
func (s *Store) SearchArticles(ctx context.Context, term string, limit int) ([]StoredArticle, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	pattern := "%" + term + "%"
	query := sq.Select(articleColumns...).
		From("articles").
		Where(sq.Or{
			sq.Like{"title": pattern},
			sq.Like{"description": pattern},
		}).
		Where(sq.GtOrEq{"quality_score": SearchMinQuality}).
		OrderBy("published_at DESC").
		Limit(uint64(limit))

	return s.queryArticles(ctx, query)
}

func (s *Store) queryArticles(ctx context.Context, query sq.SelectBuilder) ([]StoredArticle, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	articles := []StoredArticle{}
	for rows.Next() {
		var a StoredArticle
		var publishedAt, keywords, createdAt string

		err := rows.Scan(
			&a.ID, &a.Title, &a.Description, &a.URL, &a.Source,
			&publishedAt, &a.SentimentScore, &a.SentimentLabel,
			&a.SentimentConfidence, &keywords, &a.Category,
			&a.CategoryConfidence, &a.QualityScore, &a.ReadabilityScore,
			&a.Language, &a.ImageURL, &a.Tag,
			&a.ProcessingTime, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}

		a.PublishedAt = parseTime(publishedAt)
		a.CreatedAt = parseTime(createdAt)
		a.Keywords = splitKeywords(keywords)
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}

	return articles, nil
}

// GetPerformanceMetrics aggregates metric samples recorded in the last hours.
func (s *Store) GetPerformanceMetrics(ctx context.Context, hours int) ([]MetricSummary, error) {
	if hours <= 0 {
		hours = DefaultMetricsHours
	}
	cutoff := formatTime(s.now().Add(-time.Duration(hours) * time.Hour))

	rows, err := s.db.QueryContext(ctx, `
		SELECT metric_name, AVG(metric_value), MAX(metric_value), MIN(metric_value), COUNT(*)
		FROM processing_metrics
		WHERE timestamp >= ?
		GROUP BY metric_name
		ORDER BY metric_name
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query performance metrics: %w", err)
	}
	defer rows.Close()

	summaries := []MetricSummary{}
	for rows.Next() {
		var m MetricSummary
		if err := rows.Scan(&m.MetricName, &m.AvgValue, &m.MaxValue, &m.MinValue, &m.Count); err != nil {
			return nil, fmt.Errorf("failed to scan metric: %w", err)
		}
		summaries = append(summaries, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate metrics: %w", err)
	}

	return summaries, nil
}

// GetDataQualityReport returns recent batch logs and the quality distribution
// of articles stored in the last days.
func (s *Store) GetDataQualityReport(ctx context.Context, days int) (*QualityReport, error) {
	if days <= 0 {
		days = DefaultQualityDays
	}
	cutoff := formatTime(s.now().AddDate(0, 0, -days))

	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(run_id, ''), timestamp, total_articles, valid_articles,
		       duplicate_articles, quality_failures, processing_time, COALESCE(error_details, '')
		FROM data_quality_log
		WHERE timestamp >= ?
		ORDER BY timestamp DESC, id DESC
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query quality logs: %w", err)
	}
	defer rows.Close()

	report := &QualityReport{
		QualityLogs:         []QualityLogEntry{},
		QualityDistribution: map[string]int{},
		Metrics:             s.Metrics(),
	}

	for rows.Next() {
		var entry QualityLogEntry
		var timestamp, details string
		err := rows.Scan(&entry.RunID, &timestamp, &entry.TotalArticles, &entry.ValidArticles,
			&entry.DuplicateArticles, &entry.QualityFailures, &entry.ProcessingTime, &details)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quality log: %w", err)
		}
		entry.Timestamp = parseTime(timestamp)
		if details != "" {
			_ = json.Unmarshal([]byte(details), &entry.ErrorDetails)
		}
		report.QualityLogs = append(report.QualityLogs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quality logs: %w", err)
	}

	distRows, err := s.db.QueryContext(ctx, `
		SELECT
			CASE
				WHEN quality_score >= 0.9 THEN 'Excellent'
				WHEN quality_score >= 0.7 THEN 'Good'
				WHEN quality_score >= 0.5 THEN 'Fair'
				ELSE 'Poor'
			END AS quality_category,
			COUNT(*)
		FROM articles
		WHERE created_at >= ?
		GROUP BY quality_category
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query quality distribution: %w", err)
	}
	defer distRows.Close()

	for distRows.Next() {
		var category string
		var count int
		if err := distRows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan quality distribution: %w", err)
		}
		report.QualityDistribution[category] = count
	}
	if err := distRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quality distribution: %w", err)
	}

	return report, nil
}

// GetDatabaseHealth never fails; query errors are reported as an unhealthy status.
func (s *Store) GetDatabaseHealth(ctx context.Context) Health {
	health := Health{Status: "healthy", Metrics: s.Metrics()}

	dayAgo := formatTime(s.now().Add(-24 * time.Hour))
	var avgQuality sql.NullFloat64
	var size int64

	checks := []struct {
		query string
		args  []any
		dest  any
	}{
		{`SELECT COUNT(*) FROM articles`, nil, &health.TotalArticles},
		{`SELECT COUNT(*) FROM articles WHERE created_at >= ?`, []any{dayAgo}, &health.Articles24h},
		{`SELECT AVG(quality_score) FROM articles`, nil, &avgQuality},
		{`SELECT COUNT(DISTINCT source) FROM articles`, nil, &health.UniqueSources},
		{`SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()`, nil, &size},
	}

	for _, check := range checks {
		if err := s.db.QueryRowContext(ctx, check.query, check.args...).Scan(check.dest); err != nil {
			return Health{Status: "unhealthy", Error: err.Error(), Metrics: health.Metrics}
		}
	}

	health.AvgQualityScore = round(avgQuality.Float64, 3)
	health.DatabaseSizeMB = round(float64(size)/(1024*1024), 2)

	return health
}

// CleanupOldData deletes rows older than days from all three tables.
func (s *Store) CleanupOldData(ctx context.Context, days int) (CleanupResult, error) {
	if days <= 0 {
		days = DefaultRetentionDays
	}
	cutoff := formatTime(s.now().AddDate(0, 0, -days))

	var result CleanupResult
	deletes := []struct {
		query string
		count *int64
	}{
		{`DELETE FROM articles WHERE created_at < ?`, &result.ArticlesDeleted},
		{`DELETE FROM data_quality_log WHERE timestamp < ?`, &result.LogsDeleted},
		{`DELETE FROM processing_metrics WHERE timestamp < ?`, &result.MetricsDeleted},
	}

	for _, d := range deletes {
		res, err := s.db.ExecContext(ctx, d.query, cutoff)
		if err != nil {
			return result, fmt.Errorf("failed to clean up old data: %w", err)
		}
		if *d.count, err = res.RowsAffected(); err != nil {
			return result, fmt.Errorf("failed to count deleted rows: %w", err)
		}
	}

	return result, nil
}

func (s *Store) GetSentimentStats(ctx context.Context) (SentimentStats, error) {
	stats := SentimentStats{SentimentCounts: map[string]int{}}

	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(sentiment_label, ''), COUNT(*)
		FROM articles
		GROUP BY sentiment_label
	`)
	if err != nil {
		return stats, fmt.Errorf("failed to query sentiment counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return stats, fmt.Errorf("failed to scan sentiment count: %w", err)
		}
		stats.SentimentCounts[label] = count
		stats.TotalArticles += count
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("failed to iterate sentiment counts: %w", err)
	}

	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, `SELECT AVG(sentiment_score) FROM articles`).Scan(&avg); err != nil {
		return stats, fmt.Errorf("failed to query average sentiment: %w", err)
	}
	stats.AvgSentiment = avg.Float64

	return stats, nil
}

// GetTopSources returns the most active sources by article count.
func (s *Store) GetTopSources(ctx context.Context, limit int) ([]SourceCount, error) {
	if limit <= 0 {
		limit = DefaultTopSources
	}

	sqlStr, args, err := sq.Select("COALESCE(source, '')", "COUNT(*) AS article_count", "AVG(quality_score)").
		From("articles").
		GroupBy("source").
		OrderBy("article_count DESC", "source").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query top sources: %w", err)
	}
	defer rows.Close()

	sources := []SourceCount{}
	for rows.Next() {
		var sc SourceCount
		if err := rows.Scan(&sc.Source, &sc.ArticleCount, &sc.AvgQuality); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, sc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sources: %w", err)
	}

	return sources, nil
}

func splitKeywords(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, keywordSeparator)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
