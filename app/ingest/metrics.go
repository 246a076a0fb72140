package ingest

import (
	"sync"
	"time"
)

type Metrics struct {
	TotalRequests      int     `json:"total_requests"`
	SuccessfulRequests int     `json:"successful_requests"`
	FailedRequests     int     `json:"failed_requests"`
	TotalArticles      int     `json:"total_articles"`
	ProcessingTime     float64 `json:"processing_time"`
	RateLimitHits      int     `json:"rate_limit_hits"`
	RetriesAttempted   int     `json:"retries_attempted"`
	RealtimeRunning    bool    `json:"realtime_running"`
}

func (m Metrics) SuccessRate() float64 {
	if m.TotalRequests == 0 {
		return 0
	}
	return float64(m.SuccessfulRequests) / float64(m.TotalRequests)
}

func (m Metrics) ArticlesPerSecond() float64 {
	if m.ProcessingTime <= 0 {
		return 0
	}
	return float64(m.TotalArticles) / m.ProcessingTime
}

// metricsRecorder guards the per-run counters shared by concurrent fetch tasks.
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

func (r *metricsRecorder) setElapsed(d time.Duration) {
	r.update(func(m *Metrics) { m.ProcessingTime = d.Seconds() })
}

func (r *metricsRecorder) snapshot() Metrics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m
}
