package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lysyi3m/news-comb/app/news"
	"github.com/lysyi3m/news-comb/app/quality"
)

const (
	metricProcessingTime = "article_processing_time"
	metricQualityScore   = "article_quality_score"
)

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA temp_store = MEMORY",
}

// Store persists enriched articles in SQLite and answers the dashboard's read queries.
type Store struct {
	db        *sql.DB
	path      string
	validator *quality.Validator
	metrics   *metricsRecorder
	now       func() time.Time
}

// Open opens or creates the database at path and applies pending migrations.
func Open(path string, validator *quality.Validator) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	version, dirty, err := RunMigrations(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	slog.Info("Database ready", "path", path, "migration_version", version, "dirty", dirty)

	return &Store{
		db:        db,
		path:      path,
		validator: validator,
		metrics:   &metricsRecorder{},
		now:       time.Now,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Metrics() Metrics {
	return s.metrics.snapshot()
}

// Save persists one article. It returns false without error when the article
// fails the persistence quality gate or its URL is already stored.
func (s *Store) Save(ctx context.Context, article news.Article, runID string) (bool, error) {
	start := time.Now()

	score, issues := s.validator.Gate(article.QualityFields())
	if article.QualityScore > 0 {
		score = math.Min(score, article.QualityScore)
	}
	if !quality.IsValid(score) {
		s.metrics.update(func(m *Metrics) { m.QualityFailures++ })
		slog.Warn("Article quality too low", "url", article.URL, "score", score, "issues", issues)
		return false, nil
	}

	var existing int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM articles WHERE url = ?`, article.URL).Scan(&existing)
	switch {
	case err == nil:
		s.metrics.update(func(m *Metrics) { m.DuplicateSkips++ })
		slog.Debug("Duplicate article skipped", "url", article.URL)
		return false, nil
	case !errors.Is(err, sql.ErrNoRows):
		s.metrics.update(func(m *Metrics) {
			m.FailedInserts++
			m.TotalInserts++
		})
		return false, fmt.Errorf("failed to check duplicate: %w", err)
	}

	processingTime := time.Since(start).Seconds() + article.ProcessingTime
	now := formatTime(s.now())

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO articles (
			title, description, url, source, published_at,
			sentiment_score, sentiment_label, sentiment_confidence, keywords,
			category, category_confidence, quality_score, readability_score,
			language, image_url, tag, processing_time, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO NOTHING
	`, article.Title, article.Description, article.URL, article.Source, formatTime(article.PublishedAt),
		article.SentimentScore, string(article.SentimentLabel), article.SentimentConfidence, strings.Join(article.Keywords, keywordSeparator),
		string(article.Category), article.CategoryConfidence, score, article.ReadabilityScore,
		article.Language, article.ImageURL, article.Tag, processingTime, now, now)
	if err != nil {
		s.metrics.update(func(m *Metrics) {
			m.FailedInserts++
			m.TotalInserts++
		})
		return false, fmt.Errorf("failed to insert article: %w", err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		s.metrics.update(func(m *Metrics) { m.DuplicateSkips++ })
		slog.Debug("Duplicate article skipped on conflict", "url", article.URL)
		return false, nil
	}

	s.metrics.update(func(m *Metrics) {
		m.SuccessfulInserts++
		m.TotalInserts++
	})

	s.logMetric(ctx, metricProcessingTime, processingTime, runID)
	s.logMetric(ctx, metricQualityScore, score, runID)

	return true, nil
}

// SaveBatch saves articles one by one and records a data quality log entry
// for the batch. An empty runID is replaced with batch_<unix seconds>.
func (s *Store) SaveBatch(ctx context.Context, articles []news.Article, runID string) (int, error) {
	if runID == "" {
		runID = fmt.Sprintf("batch_%d", s.now().Unix())
	}

	start := time.Now()
	before := s.metrics.snapshot()

	slog.Info("Batch save started", "run_id", runID, "articles", len(articles))

	saved := 0
	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			return saved, err
		}

		ok, err := s.Save(ctx, article, runID)
		if err != nil {
			slog.Error("Database error", "operation", "save_article", "url", article.URL, "error", err)
			continue
		}
		if ok {
			saved++
		}
	}

	after := s.metrics.snapshot()
	elapsed := time.Since(start).Seconds()

	entry := QualityLogEntry{
		RunID:             runID,
		TotalArticles:     len(articles),
		ValidArticles:     saved,
		DuplicateArticles: after.DuplicateSkips - before.DuplicateSkips,
		QualityFailures:   after.QualityFailures - before.QualityFailures,
		ProcessingTime:    elapsed,
	}
	if err := s.logDataQuality(ctx, entry); err != nil {
		return saved, err
	}

	slog.Info("Batch save completed",
		"run_id", runID,
		"saved", saved,
		"total", len(articles),
		"duplicates", entry.DuplicateArticles,
		"quality_failures", entry.QualityFailures,
		"duration", time.Since(start).String())

	return saved, nil
}

func (s *Store) logMetric(ctx context.Context, name string, value float64, runID string) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO processing_metrics (metric_name, metric_value, timestamp, run_id)
		VALUES (?, ?, ?, ?)
	`, name, value, formatTime(s.now()), nullString(runID))
	if err != nil {
		slog.Error("Database error", "operation", "log_metric", "metric", name, "error", err)
	}
}

func (s *Store) logDataQuality(ctx context.Context, entry QualityLogEntry) error {
	details, err := json.Marshal(errorRates(entry))
	if err != nil {
		return fmt.Errorf("failed to encode error details: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO data_quality_log (
			run_id, timestamp, total_articles, valid_articles,
			duplicate_articles, quality_failures, processing_time, error_details
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.RunID, formatTime(s.now()), entry.TotalArticles, entry.ValidArticles,
		entry.DuplicateArticles, entry.QualityFailures, entry.ProcessingTime, string(details))
	if err != nil {
		return fmt.Errorf("failed to log data quality: %w", err)
	}

	return nil
}

func errorRates(entry QualityLogEntry) ErrorRates {
	if entry.TotalArticles == 0 {
		return ErrorRates{}
	}
	total := float64(entry.TotalArticles)
	return ErrorRates{
		SuccessRate:        float64(entry.ValidArticles) / total,
		DuplicateRate:      float64(entry.DuplicateArticles) / total,
		QualityFailureRate: float64(entry.QualityFailures) / total,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
