package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lysyi3m/news-comb/app/feed"
	"github.com/lysyi3m/news-comb/app/news"
	"github.com/lysyi3m/news-comb/app/pool"
	"github.com/lysyi3m/news-comb/app/profile"
)

const (
	headlinesEndpoint = "/top-headlines"
	searchEndpoint    = "/search"
)

type Limits struct {
	MaxArticlesPerRun      int
	MaxArticlesPerCategory int
	MaxArticlesPerTopic    int
	MinTitleLength         int
	MaxTitleLength         int
	MaxDescriptionLength   int
	Workers                int
	Language               string
	Country                string
}

func DefaultLimits() Limits {
	return Limits{
		MaxArticlesPerRun:      500,
		MaxArticlesPerCategory: 50,
		MaxArticlesPerTopic:    30,
		MinTitleLength:         10,
		MaxTitleLength:         200,
		MaxDescriptionLength:   500,
		Workers:                4,
		Language:               "en",
		Country:                "us",
	}
}

// ProfileSource supplies the active fetch profile.
type ProfileSource interface {
	Get() *profile.Profile
}

type apiResponse struct {
	TotalArticles int          `json:"totalArticles"`
	Articles      []apiArticle `json:"articles"`
}

type apiArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"source"`
}

type Fetcher struct {
	client     *Client
	profiles   ProfileSource
	limits     Limits
	normalizer normalizer
	parser     *feed.Parser
	filterer   *feed.Filterer
	extractor  *feed.ContentExtractor

	realtimeRunning atomic.Bool
	cooldown        time.Duration

	// runMu keeps full fetches from resetting each other's client metrics.
	runMu sync.Mutex
}

func NewFetcher(client *Client, profiles ProfileSource, limits Limits) *Fetcher {
	return &Fetcher{
		client:   client,
		profiles: profiles,
		limits:   limits,
		normalizer: normalizer{
			minTitleLength:       limits.MinTitleLength,
			maxTitleLength:       limits.MaxTitleLength,
			maxDescriptionLength: limits.MaxDescriptionLength,
			now:                  time.Now,
		},
		parser:    feed.NewParser(),
		filterer:  feed.NewFilterer(),
		extractor: feed.NewContentExtractor(),
		cooldown:  realtimeCooldown,
	}
}

// FetchCategory fetches top headlines for one category.
func (f *Fetcher) FetchCategory(ctx context.Context, category string, maxArticles int) ([]news.ArticleRaw, error) {
	params := url.Values{}
	params.Set("category", category)
	params.Set("lang", f.limits.Language)
	params.Set("country", f.limits.Country)
	params.Set("max", strconv.Itoa(min(maxArticles, f.limits.MaxArticlesPerCategory)))

	articles, err := f.fetchEndpoint(ctx, headlinesEndpoint, params, category)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category %s: %w", category, err)
	}

	slog.Debug("Category fetched", "category", category, "articles", len(articles))
	return articles, nil
}

// SearchTopic searches articles matching query, newest first.
func (f *Fetcher) SearchTopic(ctx context.Context, query string, maxArticles int) ([]news.ArticleRaw, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("lang", f.limits.Language)
	params.Set("country", f.limits.Country)
	params.Set("max", strconv.Itoa(min(maxArticles, f.limits.MaxArticlesPerTopic)))
	params.Set("sortby", "publishedAt")

	articles, err := f.fetchEndpoint(ctx, searchEndpoint, params, news.TagSearch)
	if err != nil {
		return nil, fmt.Errorf("failed to search topic %q: %w", query, err)
	}

	slog.Debug("Topic searched", "query", query, "articles", len(articles))
	return articles, nil
}

func (f *Fetcher) fetchEndpoint(ctx context.Context, endpoint string, params url.Values, tag string) ([]news.ArticleRaw, error) {
	var resp apiResponse
	if err := f.client.GetJSON(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}

	articles := make([]news.ArticleRaw, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		article, ok := f.normalizer.normalize(candidate{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
			ImageURL:    a.Image,
		}, tag)
		if !ok {
			slog.Debug("Article rejected by normalizer", "url", a.URL, "title", a.Title)
			continue
		}
		articles = append(articles, article)
	}

	f.client.metrics.update(func(m *Metrics) { m.TotalArticles += len(articles) })
	return articles, nil
}

// FetchAllCategories fetches every category on the worker pool. A failed
// category is logged and contributes no articles.
func (f *Fetcher) FetchAllCategories(ctx context.Context, categories []string) []news.ArticleRaw {
	results := pool.Map(ctx, f.limits.Workers, categories, func(ctx context.Context, category string) ([]news.ArticleRaw, error) {
		return f.FetchCategory(ctx, category, f.limits.MaxArticlesPerCategory)
	})

	var articles []news.ArticleRaw
	for _, r := range results {
		if r.Err != nil {
			slog.Warn("Category fetch failed", "category", categories[r.Index], "error", r.Err)
			continue
		}
		articles = append(articles, r.Value...)
	}
	return articles
}

// SearchAllTopics searches every topic on the worker pool and removes URL duplicates.
func (f *Fetcher) SearchAllTopics(ctx context.Context, topics []string) []news.ArticleRaw {
	results := pool.Map(ctx, f.limits.Workers, topics, func(ctx context.Context, topic string) ([]news.ArticleRaw, error) {
		return f.SearchTopic(ctx, topic, f.limits.MaxArticlesPerTopic)
	})

	var articles []news.ArticleRaw
	for _, r := range results {
		if r.Err != nil {
			slog.Warn("Topic search failed", "topic", topics[r.Index], "error", r.Err)
			continue
		}
		articles = append(articles, r.Value...)
	}
	return dedupByURL(articles)
}

// RunFullFetch runs categories, then topics, then feeds, and returns the
// deduplicated, capped union. It never fails; errors degrade to fewer articles.
// Overlapping calls are serialized.
func (f *Fetcher) RunFullFetch(ctx context.Context, runID string) []news.ArticleRaw {
	f.runMu.Lock()
	defer f.runMu.Unlock()

	start := time.Now()
	f.client.ResetMetrics()

	p := f.profiles.Get()
	slog.Info("Full fetch started", "run_id", runID, "categories", len(p.Categories), "topics", len(p.SearchTopics), "feeds", len(p.EnabledFeeds()))

	categoryArticles := f.FetchAllCategories(ctx, p.Categories)
	topicArticles := f.SearchAllTopics(ctx, p.SearchTopics)
	feedArticles := f.FetchAllFeeds(ctx, p.EnabledFeeds())

	all := make([]news.ArticleRaw, 0, len(categoryArticles)+len(topicArticles)+len(feedArticles))
	all = append(all, categoryArticles...)
	all = append(all, topicArticles...)
	all = append(all, feedArticles...)

	unique := dedupByURL(all)
	if len(unique) > f.limits.MaxArticlesPerRun {
		unique = unique[:f.limits.MaxArticlesPerRun]
		slog.Debug("Fetch capped", "run_id", runID, "max_articles", f.limits.MaxArticlesPerRun)
	}

	f.client.metrics.setElapsed(time.Since(start))
	m := f.Metrics()

	slog.Info("Full fetch completed",
		"run_id", runID,
		"articles", len(unique),
		"duration", time.Since(start).String(),
		"requests", m.TotalRequests,
		"success_rate", m.SuccessRate(),
		"retries", m.RetriesAttempted,
		"rate_limit_hits", m.RateLimitHits)

	return unique
}

// TestConnection issues a minimal search to check upstream reachability.
func (f *Fetcher) TestConnection(ctx context.Context) error {
	params := url.Values{}
	params.Set("q", "test")
	params.Set("max", "1")

	var resp apiResponse
	if err := f.client.GetJSON(ctx, searchEndpoint, params, &resp); err != nil {
		return fmt.Errorf("failed to reach news API: %w", err)
	}
	return nil
}

func (f *Fetcher) Metrics() Metrics {
	m := f.client.Metrics()
	m.RealtimeRunning = f.realtimeRunning.Load()
	return m
}

// dedupByURL keeps the first article seen for each URL, preserving order.
func dedupByURL(articles []news.ArticleRaw) []news.ArticleRaw {
	seen := make(map[string]bool, len(articles))
	unique := make([]news.ArticleRaw, 0, len(articles))
	for _, a := range articles {
		if seen[a.URL] {
			continue
		}
		seen[a.URL] = true
		unique = append(unique, a)
	}
	return unique
}
