package api

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/news-comb/app/database"
	"github.com/lysyi3m/news-comb/app/news"
	"github.com/lysyi3m/news-comb/app/tasks"
)

func NewHandler(store database.ArticleReader, proc ProcessorInterface, fetcher FetcherInterface,
	scheduler tasks.TaskSchedulerInterface, trendWindowHours int, version string) *Handler {
	if trendWindowHours <= 0 {
		trendWindowHours = 24
	}
	return &Handler{
		store:            store,
		processor:        proc,
		fetcher:          fetcher,
		scheduler:        scheduler,
		trendWindowHours: trendWindowHours,
		version:          version,
	}
}

// GetHealth reports database, processor and ingestion health. An unhealthy
// database turns the response into a 503.
func (h *Handler) GetHealth(c *gin.Context) {
	db := h.store.GetDatabaseHealth(c.Request.Context())

	status := http.StatusOK
	if db.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":    db.Status,
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
		"database":  db,
		"processor": h.processor.Health(),
		"ingestion": h.fetcher.Metrics(),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	db := h.store.GetDatabaseHealth(ctx)
	stats := gin.H{
		"timestamp":        time.Now().In(time.Local).Format(time.RFC3339),
		"total_articles":   db.TotalArticles,
		"articles_24h":     db.Articles24h,
		"unique_sources":   db.UniqueSources,
		"avg_quality":      db.AvgQualityScore,
		"database_size_mb": db.DatabaseSizeMB,
	}

	if sentiment, err := h.store.GetSentimentStats(ctx); err == nil {
		stats["sentiment"] = sentiment
	} else {
		slog.Error("Database error", "operation", "get_sentiment_stats", "error", err)
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) ListArticles(c *gin.Context) {
	limit, err := intQuery(c, "limit", database.DefaultArticleLimit, 1, maxArticleLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	minQuality, err := floatQuery(c, "min_quality", database.DefaultMinQuality, 0, 1)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := strings.ToLower(c.Query("category"))
	if category != "" && !news.IsCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown category %q", category)})
		return
	}

	sentiment := strings.ToLower(c.Query("sentiment"))
	if sentiment != "" && !isSentimentLabel(sentiment) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown sentiment %q", sentiment)})
		return
	}

	articles, err := h.store.GetArticles(c.Request.Context(), database.ArticleQuery{
		Limit:      limit,
		Category:   category,
		Source:     c.Query("source"),
		Sentiment:  sentiment,
		MinQuality: minQuality,
	})
	if err != nil {
		slog.Error("Database error", "operation", "get_articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": articles,
		"total":    len(articles),
	})
}

func (h *Handler) SearchArticles(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing search query parameter q"})
		return
	}

	limit, err := intQuery(c, "limit", database.DefaultSearchLimit, 1, maxArticleLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	articles, err := h.store.SearchArticles(c.Request.Context(), term, limit)
	if err != nil {
		slog.Error("Database error", "operation", "search_articles", "query", term, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":    term,
		"articles": articles,
		"total":    len(articles),
	})
}

// GetTrends ranks keywords over the most recent stored articles.
func (h *Handler) GetTrends(c *gin.Context) {
	hours, err := intQuery(c, "hours", h.trendWindowHours, 1, maxTrendHours)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stored, err := h.store.GetArticles(c.Request.Context(), database.ArticleQuery{Limit: trendArticleScan})
	if err != nil {
		slog.Error("Database error", "operation", "get_articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	articles := make([]news.Article, 0, len(stored))
	for _, s := range stored {
		articles = append(articles, toArticle(s))
	}

	topics := h.processor.DetectTrendingTopics(articles, hours)

	c.JSON(http.StatusOK, gin.H{
		"window_hours":      hours,
		"articles_analyzed": len(articles),
		"trending_topics":   topics,
	})
}

func (h *Handler) GetPerformanceMetrics(c *gin.Context) {
	hours, err := intQuery(c, "hours", database.DefaultMetricsHours, 1, maxTrendHours*4)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	metrics, err := h.store.GetPerformanceMetrics(c.Request.Context(), hours)
	if err != nil {
		slog.Error("Database error", "operation", "get_performance_metrics", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hours":   hours,
		"metrics": metrics,
	})
}

func (h *Handler) GetIngestionMetrics(c *gin.Context) {
	m := h.fetcher.Metrics()
	c.JSON(http.StatusOK, gin.H{
		"metrics":      m,
		"success_rate": m.SuccessRate(),
	})
}

func (h *Handler) GetProcessingMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.processor.Health())
}

func (h *Handler) GetQualityReport(c *gin.Context) {
	days, err := intQuery(c, "days", database.DefaultQualityDays, 1, 365)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.store.GetDataQualityReport(c.Request.Context(), days)
	if err != nil {
		slog.Error("Database error", "operation", "get_quality_report", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *Handler) GetTopSources(c *gin.Context) {
	limit, err := intQuery(c, "limit", database.DefaultTopSources, 1, 100)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sources, err := h.store.GetTopSources(c.Request.Context(), limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_top_sources", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sources": sources,
		"total":   len(sources),
	})
}

func (h *Handler) GetSentiment(c *gin.Context) {
	stats, err := h.store.GetSentimentStats(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "get_sentiment_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) TriggerRun(c *gin.Context) {
	runID, err := h.scheduler.EnqueueRun()
	if err != nil {
		slog.Error("Error enqueueing pipeline run", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to enqueue pipeline run",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Pipeline run enqueued",
		"run_id":  runID,
	})
}

func (h *Handler) TriggerCleanup(c *gin.Context) {
	days, err := intQuery(c, "days", 0, 1, 3650)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.scheduler.EnqueueCleanup(days); err != nil {
		slog.Error("Error enqueueing cleanup task", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to enqueue cleanup task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Cleanup task enqueued",
	})
}

// intQuery parses an optional integer parameter bounded to [lo, hi].
func intQuery(c *gin.Context, name string, fallback, lo, hi int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", name, lo, hi)
	}
	return v, nil
}

func floatQuery(c *gin.Context, name string, fallback, lo, hi float64) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || v < lo || v > hi {
		return 0, fmt.Errorf("%s must be a number between %g and %g", name, lo, hi)
	}
	return v, nil
}

func isSentimentLabel(s string) bool {
	switch news.SentimentLabel(s) {
	case news.SentimentPositive, news.SentimentNegative, news.SentimentNeutral:
		return true
	}
	return false
}

func toArticle(s database.StoredArticle) news.Article {
	return news.Article{
		ArticleRaw: news.ArticleRaw{
			Title:       s.Title,
			Description: s.Description,
			URL:         s.URL,
			Source:      s.Source,
			PublishedAt: s.PublishedAt,
			Tag:         s.Tag,
			ImageURL:    s.ImageURL,
		},
		SentimentScore:      s.SentimentScore,
		SentimentLabel:      news.SentimentLabel(s.SentimentLabel),
		SentimentConfidence: s.SentimentConfidence,
		Keywords:            s.Keywords,
		Category:            news.Category(s.Category),
		CategoryConfidence:  s.CategoryConfidence,
		QualityScore:        s.QualityScore,
		ReadabilityScore:    s.ReadabilityScore,
		Language:            s.Language,
		ProcessingTime:      s.ProcessingTime,
	}
}
