package processor

import (
	"sync"
	"time"
)

type Metrics struct {
	TotalProcessed        int     `json:"total_processed"`
	SuccessfulProcessed   int     `json:"successful_processed"`
	FailedProcessed       int     `json:"failed_processed"`
	QualityPassed         int     `json:"quality_passed"`
	QualityFailed         int     `json:"quality_failed"`
	ProcessingTime        float64 `json:"processing_time"`
	SentimentAnalysisTime float64 `json:"sentiment_analysis_time"`
	KeywordExtractionTime float64 `json:"keyword_extraction_time"`
}

func (m Metrics) SuccessRate() float64 {
	if m.TotalProcessed == 0 {
		return 0
	}
	return float64(m.SuccessfulProcessed) / float64(m.TotalProcessed)
}

func (m Metrics) QualityRate() float64 {
	if m.TotalProcessed == 0 {
		return 0
	}
	return float64(m.QualityPassed) / float64(m.TotalProcessed)
}

func (m Metrics) ArticlesPerSecond() float64 {
	if m.ProcessingTime <= 0 {
		return 0
	}
	return float64(m.TotalProcessed) / m.ProcessingTime
}

func (m Metrics) AvgProcessingTime() float64 {
	if m.TotalProcessed == 0 {
		return 0
	}
	return m.ProcessingTime / float64(m.TotalProcessed)
}

// Summary is the metrics snapshot with derived rates, as reported over the API.
type Summary struct {
	Metrics
	SuccessRate       float64 `json:"success_rate"`
	QualityRate       float64 `json:"quality_rate"`
	ArticlesPerSecond float64 `json:"articles_per_second"`
	AvgProcessingTime float64 `json:"avg_processing_time_per_article"`
}

func (m Metrics) Summary() Summary {
	return Summary{
		Metrics:           m,
		SuccessRate:       m.SuccessRate(),
		QualityRate:       m.QualityRate(),
		ArticlesPerSecond: m.ArticlesPerSecond(),
		AvgProcessingTime: m.AvgProcessingTime(),
	}
}

type metricsRecorder struct {
	mu sync.Mutex
	m  Metrics
}

func (r *metricsRecorder) update(fn func(m *Metrics)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.m)
}

func (r *metricsRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m = Metrics{}
}

func (r *metricsRecorder) snapshot() Metrics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m
}

func (r *metricsRecorder) addTimings(sentiment, keywords time.Duration) {
	r.update(func(m *Metrics) {
		m.SentimentAnalysisTime += sentiment.Seconds()
		m.KeywordExtractionTime += keywords.Seconds()
	})
}
