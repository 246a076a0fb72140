package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/lysyi3m/news-comb/app/analyzer"
	"github.com/lysyi3m/news-comb/app/news"
	"github.com/lysyi3m/news-comb/app/pool"
	"github.com/lysyi3m/news-comb/app/quality"
	"github.com/lysyi3m/news-comb/app/trends"
)

// ErrRejected is returned for articles that fail the quality check.
var ErrRejected = errors.New("article rejected by quality check")

const DefaultBatchSize = 100

type Processor struct {
	validator *quality.Validator
	analyzer  *analyzer.Analyzer
	detector  *trends.Detector
	workers   int
	metrics   *metricsRecorder
	now       func() time.Time

	// runMu serializes batches so one batch never resets another's counters.
	runMu sync.Mutex
}

func NewProcessor(validator *quality.Validator, a *analyzer.Analyzer, detector *trends.Detector, workers int) *Processor {
	if workers <= 0 {
		workers = 1
	}
	return &Processor{
		validator: validator,
		analyzer:  a,
		detector:  detector,
		workers:   workers,
		metrics:   &metricsRecorder{},
		now:       time.Now,
	}
}

// ProcessOne scores one article and enriches it when it passes the quality check.
func (p *Processor) ProcessOne(raw news.ArticleRaw) (article news.Article, err error) {
	start := time.Now()
	p.metrics.update(func(m *Metrics) { m.TotalProcessed++ })

	defer func() {
		if r := recover(); r != nil {
			p.metrics.update(func(m *Metrics) { m.FailedProcessed++ })
			slog.Error("Article processing panicked", "url", raw.URL, "panic", r)
			article, err = news.Article{}, fmt.Errorf("failed to process article %s: %v", raw.URL, r)
		}
	}()

	score, issues := p.validator.Score(raw.QualityFields())
	if !quality.IsValid(score) {
		p.metrics.update(func(m *Metrics) { m.QualityFailed++ })
		slog.Debug("Article failed quality check", "url", raw.URL, "score", score, "issues", issues)
		return news.Article{}, fmt.Errorf("%w: score %.2f", ErrRejected, score)
	}

	text := raw.Title + " " + raw.Description

	sentimentStart := time.Now()
	polarity, label, confidence := p.analyzer.Sentiment(text)
	sentimentTime := time.Since(sentimentStart)

	keywordStart := time.Now()
	keywords := p.analyzer.Keywords(text, p.analyzer.MaxKeywords())
	keywordTime := time.Since(keywordStart)

	category, categoryConfidence := p.analyzer.Categorize(raw.Title, raw.Description, raw.Tag)

	article = news.Article{
		ArticleRaw:          raw,
		SentimentScore:      polarity,
		SentimentLabel:      label,
		SentimentConfidence: confidence,
		Keywords:            keywords,
		Category:            category,
		CategoryConfidence:  categoryConfidence,
		QualityScore:        score,
		ReadabilityScore:    p.analyzer.Readability(text),
		Language:            p.analyzer.Language(text),
		ProcessedAt:         p.now().UTC(),
	}
	article.Title = analyzer.Clean(raw.Title)
	article.Description = analyzer.Clean(raw.Description)
	article.ProcessingTime = roundTo(time.Since(start).Seconds(), 4)

	p.metrics.addTimings(sentimentTime, keywordTime)
	p.metrics.update(func(m *Metrics) {
		m.SuccessfulProcessed++
		m.QualityPassed++
	})

	return article, nil
}

// ProcessBatch resets the metrics and processes articles in chunks of
// batchSize on the worker pool. Each chunk completes before the next starts.
// Rejected and failed articles are dropped; input order is preserved.
// Concurrent calls run one after another.
func (p *Processor) ProcessBatch(ctx context.Context, articles []news.ArticleRaw, batchSize int) []news.Article {
	if len(articles) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	p.runMu.Lock()
	defer p.runMu.Unlock()

	start := time.Now()
	p.metrics.reset()

	slog.Info("Batch processing started", "articles", len(articles), "batch_size", batchSize)

	chunks := (len(articles) + batchSize - 1) / batchSize
	processed := make([]news.Article, 0, len(articles))

	for i := 0; i < len(articles); i += batchSize {
		chunk := articles[i:min(i+batchSize, len(articles))]

		results := pool.Map(ctx, p.workers, chunk, func(ctx context.Context, raw news.ArticleRaw) (news.Article, error) {
			return p.ProcessOne(raw)
		})

		for _, r := range results {
			if r.Err != nil {
				if !errors.Is(r.Err, ErrRejected) && !errors.Is(r.Err, context.Canceled) {
					slog.Warn("Article processing failed", "url", chunk[r.Index].URL, "error", r.Err)
				}
				continue
			}
			processed = append(processed, r.Value)
		}

		slog.Debug("Batch chunk processed", "chunk", i/batchSize+1, "chunks", chunks)

		if ctx.Err() != nil {
			slog.Warn("Batch processing cancelled", "processed", len(processed))
			break
		}
	}

	p.metrics.update(func(m *Metrics) { m.ProcessingTime = time.Since(start).Seconds() })
	m := p.metrics.snapshot()

	slog.Info("Batch processing completed",
		"total", m.TotalProcessed,
		"successful", m.SuccessfulProcessed,
		"quality_passed", m.QualityPassed,
		"success_rate", m.SuccessRate(),
		"quality_rate", m.QualityRate(),
		"duration", time.Since(start).String(),
		"articles_per_second", m.ArticlesPerSecond())

	return processed
}

func (p *Processor) DetectTrendingTopics(articles []news.Article, windowHours int) []news.TrendingTopic {
	return p.detector.Detect(articles, windowHours, p.now())
}

func (p *Processor) Metrics() Metrics {
	return p.metrics.snapshot()
}

type Health struct {
	Status                string  `json:"status"`
	Metrics               Summary `json:"metrics"`
	StopWordsCount        int     `json:"stop_words_count"`
	CategoryPatternsCount int     `json:"category_patterns_count"`
	LastProcessingTime    float64 `json:"last_processing_time"`
	PerformanceScore      float64 `json:"performance_score"`
}

func (p *Processor) Health() Health {
	m := p.metrics.snapshot()
	return Health{
		Status:                "healthy",
		Metrics:               m.Summary(),
		StopWordsCount:        p.analyzer.StopWordCount(),
		CategoryPatternsCount: p.analyzer.CategoryPatternCount(),
		LastProcessingTime:    m.ProcessingTime,
		PerformanceScore:      math.Min(1, m.ArticlesPerSecond()/10),
	}
}

func roundTo(v float64, places int) float64 {
	f := math.Pow(10, float64(places))
	return math.Round(v*f) / f
}
