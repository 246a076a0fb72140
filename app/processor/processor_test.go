package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/news-comb/app/analyzer"
	"github.com/lysyi3m/news-comb/app/news"
	"github.com/lysyi3m/news-comb/app/quality"
	"github.com/lysyi3m/news-comb/app/trends"
)

func newTestProcessor(workers int) *Processor {
	return NewProcessor(
		quality.NewValidator(quality.DefaultRules()),
		analyzer.NewAnalyzer(analyzer.DefaultOptions()),
		trends.NewDetector(trends.DefaultLimit),
		workers,
	)
}

func goodArticle(i int) news.ArticleRaw {
	return news.ArticleRaw{
		Title:       fmt.Sprintf("Scientists report excellent progress on battery research %d", i),
		Description: "A research team published results showing a wonderful improvement in storage capacity for electric vehicles.",
		URL:         fmt.Sprintf("https://example.com/articles/%d", i),
		Source:      "Science Daily",
		PublishedAt: time.Now().Add(-time.Hour).UTC(),
		Tag:         "science",
	}
}

func TestProcessOneEnriches(t *testing.T) {
	p := newTestProcessor(2)

	article, err := p.ProcessOne(goodArticle(1))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if article.QualityScore < quality.ValidThreshold {
		t.Errorf("Expected valid quality score, got %f", article.QualityScore)
	}
	if article.SentimentScore < -1 || article.SentimentScore > 1 {
		t.Errorf("Expected sentiment in range, got %f", article.SentimentScore)
	}
	if len(article.Keywords) == 0 {
		t.Errorf("Expected keywords")
	}
	if !news.IsCategory(string(article.Category)) {
		t.Errorf("Expected known category, got %s", article.Category)
	}
	if article.ProcessedAt.IsZero() {
		t.Errorf("Expected processed timestamp")
	}
	if article.URL != "https://example.com/articles/1" {
		t.Errorf("Expected URL preserved, got %s", article.URL)
	}

	m := p.Metrics()
	if m.TotalProcessed != 1 || m.SuccessfulProcessed != 1 || m.QualityPassed != 1 {
		t.Errorf("Expected 1/1/1 counters, got %d/%d/%d", m.TotalProcessed, m.SuccessfulProcessed, m.QualityPassed)
	}
}

func TestProcessOneRejects(t *testing.T) {
	p := newTestProcessor(2)

	raw := news.ArticleRaw{Title: "Hi", URL: "ftp://bad"}
	_, err := p.ProcessOne(raw)
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("Expected ErrRejected, got %v", err)
	}

	m := p.Metrics()
	if m.QualityFailed != 1 || m.SuccessfulProcessed != 0 {
		t.Errorf("Expected 1 quality failure and no successes, got %d/%d", m.QualityFailed, m.SuccessfulProcessed)
	}
}

func TestProcessOneCleansText(t *testing.T) {
	p := newTestProcessor(1)

	raw := goodArticle(2)
	raw.Title = "<b>Scientists</b> report progress on   battery research"

	article, err := p.ProcessOne(raw)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if article.Title != "Scientists report progress on battery research" {
		t.Errorf("Expected cleaned title, got %q", article.Title)
	}
}

func TestProcessBatch(t *testing.T) {
	p := newTestProcessor(3)

	var raws []news.ArticleRaw
	for i := 0; i < 7; i++ {
		raws = append(raws, goodArticle(i))
	}
	raws = append(raws, news.ArticleRaw{Title: "bad", URL: "nope"})

	articles := p.ProcessBatch(context.Background(), raws, 3)
	if len(articles) != 7 {
		t.Fatalf("Expected 7 processed articles, got %d", len(articles))
	}
	for i, a := range articles {
		expected := fmt.Sprintf("https://example.com/articles/%d", i)
		if a.URL != expected {
			t.Errorf("Expected order preserved at %d: %s, got %s", i, expected, a.URL)
		}
	}

	m := p.Metrics()
	if m.TotalProcessed != 8 {
		t.Errorf("Expected 8 total processed, got %d", m.TotalProcessed)
	}
	if m.QualityFailed != 1 {
		t.Errorf("Expected 1 quality failure, got %d", m.QualityFailed)
	}
	if m.ProcessingTime <= 0 {
		t.Errorf("Expected processing time recorded")
	}
	if rate := m.SuccessRate(); rate != 7.0/8.0 {
		t.Errorf("Expected success rate 0.875, got %f", rate)
	}
}

func TestProcessBatchResetsMetrics(t *testing.T) {
	p := newTestProcessor(2)

	p.ProcessBatch(context.Background(), []news.ArticleRaw{goodArticle(1), goodArticle(2)}, 10)
	p.ProcessBatch(context.Background(), []news.ArticleRaw{goodArticle(3)}, 10)

	if m := p.Metrics(); m.TotalProcessed != 1 {
		t.Errorf("Expected metrics reset between batches, got %d", m.TotalProcessed)
	}
}

func TestProcessBatchOverlappingRuns(t *testing.T) {
	p := newTestProcessor(4)

	var large []news.ArticleRaw
	for i := 0; i < 2000; i++ {
		large = append(large, goodArticle(i))
	}
	var small []news.ArticleRaw
	for i := 0; i < 5; i++ {
		small = append(small, goodArticle(10000+i))
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.ProcessBatch(context.Background(), large, 50)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for p.Metrics().TotalProcessed == 0 {
		if time.Now().After(deadline) {
			t.Fatal("First batch never started")
		}
		time.Sleep(time.Millisecond)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.ProcessBatch(context.Background(), small, 50)
	}()
	wg.Wait()

	m := p.Metrics()
	if m.TotalProcessed != len(small) || m.SuccessfulProcessed != len(small) {
		t.Errorf("Expected metrics of the later batch only (5/5), got %d/%d", m.SuccessfulProcessed, m.TotalProcessed)
	}
	if rate := m.SuccessRate(); rate > 1 {
		t.Errorf("Expected success rate at most 1, got %f", rate)
	}
}

func TestProcessBatchEmpty(t *testing.T) {
	p := newTestProcessor(2)
	if articles := p.ProcessBatch(context.Background(), nil, 10); len(articles) != 0 {
		t.Errorf("Expected no articles, got %d", len(articles))
	}
}

func TestProcessBatchCancelled(t *testing.T) {
	p := newTestProcessor(2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	raws := []news.ArticleRaw{goodArticle(1), goodArticle(2), goodArticle(3)}
	if articles := p.ProcessBatch(ctx, raws, 1); len(articles) != 0 {
		t.Errorf("Expected no articles after cancel, got %d", len(articles))
	}
}

func TestQualityReport(t *testing.T) {
	p := newTestProcessor(1)

	articles := []news.Article{
		{ArticleRaw: news.ArticleRaw{Source: "A"}, QualityScore: 0.95, SentimentScore: 0.5, SentimentLabel: news.SentimentPositive, Category: news.CategoryTechnology},
		{ArticleRaw: news.ArticleRaw{Source: "A"}, QualityScore: 0.75, SentimentScore: -0.5, SentimentLabel: news.SentimentNegative, Category: news.CategoryTechnology},
		{ArticleRaw: news.ArticleRaw{Source: "B"}, QualityScore: 0.55, SentimentLabel: news.SentimentNeutral, Category: news.CategoryBusiness},
		{ArticleRaw: news.ArticleRaw{Source: "C"}, QualityScore: 0.3},
	}

	report := p.QualityReport(articles)
	if report == nil {
		t.Fatal("Expected report")
	}

	if report.TotalArticles != 4 {
		t.Errorf("Expected 4 articles, got %d", report.TotalArticles)
	}
	expected := QualityDistribution{Excellent: 1, Good: 1, Fair: 1, Poor: 1}
	if report.QualityDistribution != expected {
		t.Errorf("Expected distribution %+v, got %+v", expected, report.QualityDistribution)
	}
	if report.SentimentDistribution["neutral"] != 2 {
		t.Errorf("Expected 2 neutral, got %d", report.SentimentDistribution["neutral"])
	}
	if report.CategoryDistribution["technology"] != 2 || report.CategoryDistribution["general"] != 1 {
		t.Errorf("Unexpected category distribution %v", report.CategoryDistribution)
	}
	if len(report.SourceStatistics) != 3 || report.SourceStatistics[0].Source != "A" {
		t.Fatalf("Expected source A first, got %+v", report.SourceStatistics)
	}
	if report.SourceStatistics[0].MinQuality != 0.75 || report.SourceStatistics[0].MaxQuality != 0.95 {
		t.Errorf("Unexpected min/max for A: %+v", report.SourceStatistics[0])
	}
	if report.AvgSentimentScore != 0 {
		t.Errorf("Expected avg sentiment 0, got %f", report.AvgSentimentScore)
	}

	if p.QualityReport(nil) != nil {
		t.Errorf("Expected nil report for no articles")
	}
}

func TestHealth(t *testing.T) {
	p := newTestProcessor(1)
	p.ProcessBatch(context.Background(), []news.ArticleRaw{goodArticle(1)}, 10)

	h := p.Health()
	if h.Status != "healthy" {
		t.Errorf("Expected healthy, got %s", h.Status)
	}
	if h.CategoryPatternsCount != 7 {
		t.Errorf("Expected 7 category patterns, got %d", h.CategoryPatternsCount)
	}
	if h.StopWordsCount == 0 {
		t.Errorf("Expected stop words")
	}
	if h.PerformanceScore < 0 || h.PerformanceScore > 1 {
		t.Errorf("Expected performance score in [0,1], got %f", h.PerformanceScore)
	}
}

func TestDetectTrendingTopics(t *testing.T) {
	p := newTestProcessor(1)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	articles := []news.Article{
		{ArticleRaw: news.ArticleRaw{Source: "a", PublishedAt: now.Add(-30 * time.Minute)}, Keywords: []string{"vote"}},
		{ArticleRaw: news.ArticleRaw{Source: "b", PublishedAt: now.Add(-90 * time.Minute)}, Keywords: []string{"vote"}},
	}

	topics := p.DetectTrendingTopics(articles, 24)
	if len(topics) != 1 || topics[0].Keyword != "vote" {
		t.Errorf("Expected vote trending, got %+v", topics)
	}
}
