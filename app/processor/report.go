package processor

import (
	"cmp"
	"slices"

	"github.com/lysyi3m/news-comb/app/news"
)

const topSourceLimit = 10

type QualityDistribution struct {
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Fair      int `json:"fair"`
	Poor      int `json:"poor"`
}

// Add counts a score into its bucket: excellent from 0.9, good from 0.7, fair from 0.5.
func (d *QualityDistribution) Add(score float64) {
	switch {
	case score >= 0.9:
		d.Excellent++
	case score >= 0.7:
		d.Good++
	case score >= 0.5:
		d.Fair++
	default:
		d.Poor++
	}
}

type SourceStats struct {
	Source       string  `json:"source"`
	ArticleCount int     `json:"article_count"`
	AvgQuality   float64 `json:"avg_quality"`
	MinQuality   float64 `json:"min_quality"`
	MaxQuality   float64 `json:"max_quality"`
}

type QualityReport struct {
	TotalArticles         int                 `json:"total_articles"`
	AvgQualityScore       float64             `json:"avg_quality_score"`
	AvgSentimentScore     float64             `json:"avg_sentiment_score"`
	QualityDistribution   QualityDistribution `json:"quality_distribution"`
	SentimentDistribution map[string]int      `json:"sentiment_distribution"`
	CategoryDistribution  map[string]int      `json:"category_distribution"`
	SourceStatistics      []SourceStats       `json:"source_statistics"`
	ProcessingMetrics     Summary             `json:"processing_metrics"`
}

// QualityReport summarizes a set of enriched articles. It returns nil for an empty set.
func (p *Processor) QualityReport(articles []news.Article) *QualityReport {
	if len(articles) == 0 {
		return nil
	}

	report := &QualityReport{
		TotalArticles:         len(articles),
		SentimentDistribution: make(map[string]int),
		CategoryDistribution:  make(map[string]int),
		ProcessingMetrics:     p.Metrics().Summary(),
	}

	var qualitySum, sentimentSum float64
	bySource := make(map[string]*SourceStats)
	var sources []string

	for _, a := range articles {
		qualitySum += a.QualityScore
		sentimentSum += a.SentimentScore
		report.QualityDistribution.Add(a.QualityScore)

		report.SentimentDistribution[string(cmp.Or(a.SentimentLabel, news.SentimentNeutral))]++
		report.CategoryDistribution[string(cmp.Or(a.Category, news.CategoryGeneral))]++

		source := cmp.Or(a.Source, "Unknown")
		stats, ok := bySource[source]
		if !ok {
			stats = &SourceStats{Source: source, MinQuality: a.QualityScore, MaxQuality: a.QualityScore}
			bySource[source] = stats
			sources = append(sources, source)
		}
		stats.ArticleCount++
		stats.AvgQuality += a.QualityScore
		stats.MinQuality = min(stats.MinQuality, a.QualityScore)
		stats.MaxQuality = max(stats.MaxQuality, a.QualityScore)
	}

	report.AvgQualityScore = qualitySum / float64(len(articles))
	report.AvgSentimentScore = sentimentSum / float64(len(articles))

	for _, source := range sources {
		stats := bySource[source]
		stats.AvgQuality /= float64(stats.ArticleCount)
		report.SourceStatistics = append(report.SourceStatistics, *stats)
	}

	slices.SortStableFunc(report.SourceStatistics, func(a, b SourceStats) int {
		return cmp.Compare(b.AvgQuality, a.AvgQuality)
	})
	if len(report.SourceStatistics) > topSourceLimit {
		report.SourceStatistics = report.SourceStatistics[:topSourceLimit]
	}

	return report
}
