package database

import (
	"sync"
)

// Metrics counts save outcomes since the store was opened.
type Metrics struct {
	TotalInserts      int `json:"total_inserts"`
	SuccessfulInserts int `json:"successful_inserts"`
	FailedInserts     int `json:"failed_inserts"`
	DuplicateSkips    int `json:"duplicate_skips"`
	QualityFailures   int `json:"quality_failures"`
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

func (r *metricsRecorder) snapshot() Metrics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m
}
