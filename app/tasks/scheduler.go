package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/news-comb/app/news"
)

const (
	queueSize       = 300
	taskTimeout     = 5 * time.Minute
	maxRetryDelay   = 30 * time.Second
	defaultInterval = time.Hour
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	pipeline    *Pipeline
	profiles    ProfileLoader
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
	retryDelay  func(retryCount int) time.Duration
}

// NewScheduler creates a scheduler whose ticker enqueues a profile reload and
// a retention cleanup every interval.
func NewScheduler(pipeline *Pipeline, profiles ProfileLoader, workerCount int, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	if workerCount <= 0 {
		workerCount = 1
	}
	if interval <= 0 {
		interval = defaultInterval
	}

	return &Scheduler{
		pipeline:    pipeline,
		profiles:    profiles,
		interval:    interval,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, queueSize),
		retryDelay:  backoff,
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueMaintenanceTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueMaintenanceTasks()
			}
		}
	}()

	slog.Debug("Scheduler started", "workers", s.workerCount, "interval", s.interval.String())
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// EnqueueRun queues a full pipeline run and returns its run ID.
func (s *Scheduler) EnqueueRun() (string, error) {
	task := NewRunPipelineTask("", s.pipeline)
	if err := s.EnqueueTask(task); err != nil {
		return "", err
	}
	return task.RunID, nil
}

// EnqueueArticles queues processing of articles fetched by the realtime loop.
func (s *Scheduler) EnqueueArticles(runID string, articles []news.ArticleRaw) error {
	return s.EnqueueTask(NewProcessArticlesTask(runID, articles, s.pipeline))
}

func (s *Scheduler) EnqueueCleanup(days int) error {
	if days <= 0 {
		days = s.pipeline.RetentionDays
	}
	return s.EnqueueTask(NewCleanupTask(days, s.pipeline.Store))
}

func (s *Scheduler) enqueueMaintenanceTasks() {
	if s.profiles != nil {
		if err := s.EnqueueTask(NewReloadProfileTask(s.profiles)); err != nil {
			slog.Warn("Failed to enqueue ReloadProfileTask", "error", err)
		}
	}

	if err := s.EnqueueCleanup(s.pipeline.RetentionDays); err != nil {
		slog.Warn("Failed to enqueue CleanupTask", "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "run_id", task.GetRunID(), "retry_count", task.GetRetryCount(), "error", err)

		if s.ctx.Err() != nil {
			return
		}

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := s.retryDelay(task.GetRetryCount())

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "run_id", task.GetRunID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()

				timer := time.NewTimer(retryDelay)
				defer timer.Stop()

				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
				case <-timer.C:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}

// backoff doubles from one second per retry, capped at 30 seconds.
func backoff(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	if retryCount > 6 {
		return maxRetryDelay
	}
	return min(time.Duration(1<<uint(retryCount-1))*time.Second, maxRetryDelay)
}
