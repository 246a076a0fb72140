package tasks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lysyi3m/news-comb/app/database"
	"github.com/lysyi3m/news-comb/app/news"
)

type mockFetcher struct {
	articles []news.ArticleRaw
	runIDs   []string
	mu       sync.Mutex
}

func (m *mockFetcher) RunFullFetch(ctx context.Context, runID string) []news.ArticleRaw {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runIDs = append(m.runIDs, runID)
	return m.articles
}

type mockProcessor struct {
	batchSize   int
	trendWindow int
	drop        bool
}

func (m *mockProcessor) ProcessBatch(ctx context.Context, articles []news.ArticleRaw, batchSize int) []news.Article {
	m.batchSize = batchSize
	if m.drop {
		return nil
	}
	processed := make([]news.Article, 0, len(articles))
	for _, a := range articles {
		processed = append(processed, news.Article{ArticleRaw: a, Keywords: []string{"go"}})
	}
	return processed
}

func (m *mockProcessor) DetectTrendingTopics(articles []news.Article, windowHours int) []news.TrendingTopic {
	m.trendWindow = windowHours
	return []news.TrendingTopic{{Keyword: "go", TotalMentions: len(articles)}}
}

type mockStore struct {
	mu          sync.Mutex
	saved       map[string][]news.Article
	saveErrs    int
	cleanupDays []int
	cleanups    atomic.Int32
}

func newMockStore() *mockStore {
	return &mockStore{saved: map[string][]news.Article{}}
}

func (m *mockStore) SaveBatch(ctx context.Context, articles []news.Article, runID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErrs > 0 {
		m.saveErrs--
		return 0, errors.New("disk full")
	}
	m.saved[runID] = append(m.saved[runID], articles...)
	return len(articles), nil
}

func (m *mockStore) CleanupOldData(ctx context.Context, days int) (database.CleanupResult, error) {
	m.mu.Lock()
	m.cleanupDays = append(m.cleanupDays, days)
	m.mu.Unlock()
	m.cleanups.Add(1)
	return database.CleanupResult{ArticlesDeleted: 1}, nil
}

func (m *mockStore) savedFor(runID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved[runID])
}

type mockProfiles struct {
	loads atomic.Int32
}

func (m *mockProfiles) Run() error {
	m.loads.Add(1)
	return nil
}

func rawArticles(n int) []news.ArticleRaw {
	articles := make([]news.ArticleRaw, n)
	for i := range articles {
		articles[i] = news.ArticleRaw{Title: "Title", URL: "https://example.com/" + string(rune('a'+i))}
	}
	return articles
}

func newTestPipeline(fetcher *mockFetcher, processor *mockProcessor, store *mockStore) *Pipeline {
	return &Pipeline{
		Fetcher:          fetcher,
		Processor:        processor,
		Store:            store,
		BatchSize:        25,
		TrendWindowHours: 12,
		RetentionDays:    30,
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Condition not met before timeout")
}

func TestRunPipelineTask(t *testing.T) {
	fetcher := &mockFetcher{articles: rawArticles(3)}
	processor := &mockProcessor{}
	store := newMockStore()

	task := NewRunPipelineTask("run-1", newTestPipeline(fetcher, processor, store))
	task.Start()

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(fetcher.runIDs) != 1 || fetcher.runIDs[0] != "run-1" {
		t.Errorf("Expected fetch with run-1, got %v", fetcher.runIDs)
	}
	if store.savedFor("run-1") != 3 {
		t.Errorf("Expected 3 saved articles, got %d", store.savedFor("run-1"))
	}
	if processor.batchSize != 25 {
		t.Errorf("Expected batch size 25, got %d", processor.batchSize)
	}
	if processor.trendWindow != 12 {
		t.Errorf("Expected trend window 12, got %d", processor.trendWindow)
	}
}

func TestRunPipelineTaskEmptyFetch(t *testing.T) {
	store := newMockStore()
	task := NewRunPipelineTask("", newTestPipeline(&mockFetcher{}, &mockProcessor{}, store))

	if task.RunID == "" {
		t.Error("Expected generated run ID")
	}
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(store.saved) != 0 {
		t.Errorf("Expected nothing saved, got %v", store.saved)
	}
}

func TestProcessArticlesTaskSaveError(t *testing.T) {
	store := newMockStore()
	store.saveErrs = 1

	task := NewProcessArticlesTask("run-2", rawArticles(2), newTestPipeline(&mockFetcher{}, &mockProcessor{}, store))
	if err := task.Execute(context.Background()); err == nil {
		t.Fatal("Expected error when saving fails")
	}

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected retry to succeed, got %v", err)
	}
	if store.savedFor("run-2") != 2 {
		t.Errorf("Expected 2 saved, got %d", store.savedFor("run-2"))
	}
}

func TestProcessArticlesTaskAllRejected(t *testing.T) {
	store := newMockStore()
	task := NewProcessArticlesTask("run-3", rawArticles(2), newTestPipeline(&mockFetcher{}, &mockProcessor{drop: true}, store))

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(store.saved) != 0 {
		t.Errorf("Expected nothing saved")
	}
}

func TestTaskCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task := NewCleanupTask(30, newMockStore())
	if err := task.Execute(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestSchedulerRunsMaintenanceOnStart(t *testing.T) {
	store := newMockStore()
	profiles := &mockProfiles{}

	s := NewScheduler(newTestPipeline(&mockFetcher{}, &mockProcessor{}, store), profiles, 2, time.Hour)
	s.Start()
	defer s.Stop()

	waitFor(t, func() bool { return store.cleanups.Load() == 1 && profiles.loads.Load() == 1 })

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.cleanupDays[0] != 30 {
		t.Errorf("Expected retention 30 days, got %d", store.cleanupDays[0])
	}
}

func TestSchedulerEnqueueRun(t *testing.T) {
	fetcher := &mockFetcher{articles: rawArticles(2)}
	store := newMockStore()

	s := NewScheduler(newTestPipeline(fetcher, &mockProcessor{}, store), nil, 2, time.Hour)
	s.Start()
	defer s.Stop()

	runID, err := s.EnqueueRun()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if runID == "" {
		t.Fatal("Expected run ID")
	}

	waitFor(t, func() bool { return store.savedFor(runID) == 2 })
}

func TestSchedulerRetriesFailedTask(t *testing.T) {
	store := newMockStore()
	store.saveErrs = 2

	s := NewScheduler(newTestPipeline(&mockFetcher{}, &mockProcessor{}, store), nil, 1, time.Hour)
	s.retryDelay = func(int) time.Duration { return time.Millisecond }
	s.Start()
	defer s.Stop()

	if err := s.EnqueueArticles("run-retry", rawArticles(1)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	waitFor(t, func() bool { return store.savedFor("run-retry") == 1 })
}

func TestSchedulerEnqueueAfterStop(t *testing.T) {
	s := NewScheduler(newTestPipeline(&mockFetcher{}, &mockProcessor{}, newMockStore()), nil, 1, time.Hour)
	s.Start()
	s.Stop()

	if err := s.EnqueueCleanup(0); err == nil {
		t.Error("Expected error after stop")
	}
}

func TestSchedulerQueueFull(t *testing.T) {
	s := NewScheduler(newTestPipeline(&mockFetcher{}, &mockProcessor{}, newMockStore()), nil, 1, time.Hour)

	for i := 0; i < queueSize; i++ {
		if err := s.EnqueueCleanup(1); err != nil {
			t.Fatalf("Expected no error at %d, got %v", i, err)
		}
	}
	if err := s.EnqueueCleanup(1); err == nil {
		t.Error("Expected queue full error")
	}
}

func TestBackoff(t *testing.T) {
	cases := map[int]time.Duration{
		1:  time.Second,
		2:  2 * time.Second,
		3:  4 * time.Second,
		5:  16 * time.Second,
		6:  30 * time.Second,
		10: 30 * time.Second,
	}
	for retry, expected := range cases {
		if got := backoff(retry); got != expected {
			t.Errorf("Expected backoff(%d) = %s, got %s", retry, expected, got)
		}
	}
}

func TestTaskRetryCounting(t *testing.T) {
	task := NewTask(TaskTypeCleanup, "run")
	if task.GetRunID() != "run" || task.GetID() == "" {
		t.Errorf("Unexpected task identity: %+v", task)
	}
	for i := 0; i < DefaultMaxRetries; i++ {
		if !task.CanRetry() {
			t.Fatalf("Expected retry allowed at %d", i)
		}
		task.IncrementRetryCount()
	}
	if task.CanRetry() {
		t.Error("Expected retries exhausted")
	}
	if task.GetDuration() != 0 {
		t.Error("Expected zero duration before start")
	}
}
