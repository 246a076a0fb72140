package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lysyi3m/news-comb/app/news"
)

const realtimeCooldown = 60 * time.Second

// Callback receives the articles of one realtime cycle.
type Callback func(ctx context.Context, runID string, articles []news.ArticleRaw) error

// RunRealtime fetches every interval until ctx is cancelled. A failing or
// panicking cycle is followed by a cooldown before the next attempt.
func (f *Fetcher) RunRealtime(ctx context.Context, interval time.Duration, callback Callback) {
	if !f.realtimeRunning.CompareAndSwap(false, true) {
		slog.Warn("Realtime fetching already running")
		return
	}
	defer f.realtimeRunning.Store(false)

	slog.Info("Realtime fetching started", "interval", interval.String())

	for {
		wait := interval
		if err := f.realtimeCycle(ctx, callback); err != nil {
			slog.Error("Realtime cycle failed", "error", err, "cooldown", f.cooldown.String())
			wait = f.cooldown
		}

		if err := sleepContext(ctx, wait); err != nil {
			slog.Info("Realtime fetching stopped")
			return
		}
	}
}

func (f *Fetcher) realtimeCycle(ctx context.Context, callback Callback) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("realtime cycle panicked: %v", r)
		}
	}()

	runID := uuid.NewString()
	articles := f.RunFullFetch(ctx, runID)
	if len(articles) == 0 || callback == nil {
		return nil
	}

	if err := callback(ctx, runID, articles); err != nil {
		return fmt.Errorf("failed to handle realtime articles: %w", err)
	}
	return nil
}

// RealtimeRunning reports whether the realtime loop is active.
func (f *Fetcher) RealtimeRunning() bool {
	return f.realtimeRunning.Load()
}
