package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/news-comb/app/news"
	"github.com/lysyi3m/news-comb/app/pool"
	"github.com/lysyi3m/news-comb/app/profile"
)

// FetchFeed downloads and parses one RSS/Atom feed through the rate-limited client.
func (f *Fetcher) FetchFeed(ctx context.Context, source profile.Feed) ([]news.ArticleRaw, error) {
	data, err := f.client.Fetch(ctx, source.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", source.Name, err)
	}

	metadata, items, err := f.parser.Run(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", source.Name, err)
	}

	items = f.filterer.Run(items, source.Filters)

	maxItems := source.MaxItems
	if maxItems == 0 {
		maxItems = f.limits.MaxArticlesPerCategory
	}
	if len(items) > maxItems {
		items = items[:maxItems]
	}

	sourceName := source.Name
	if metadata.Title != "" {
		sourceName = metadata.Title
	}

	articles := make([]news.ArticleRaw, 0, len(items))
	for _, item := range items {
		description := item.Description
		if description == "" && source.ExtractContent {
			description = f.extractDescription(ctx, item.Link)
		}

		article, ok := f.normalizer.normalize(candidate{
			Title:       item.Title,
			Description: description,
			URL:         item.Link,
			Source:      sourceName,
			Published:   item.PublishedAt,
			ImageURL:    item.ImageURL,
		}, source.Tag)
		if !ok {
			slog.Debug("Feed item rejected by normalizer", "feed", source.Name, "link", item.Link)
			continue
		}
		articles = append(articles, article)
	}

	f.client.metrics.update(func(m *Metrics) { m.TotalArticles += len(articles) })
	slog.Debug("Feed fetched", "feed", source.Name, "articles", len(articles))

	return articles, nil
}

// FetchAllFeeds fetches every feed on the worker pool; failed feeds contribute nothing.
func (f *Fetcher) FetchAllFeeds(ctx context.Context, sources []profile.Feed) []news.ArticleRaw {
	results := pool.Map(ctx, f.limits.Workers, sources, f.FetchFeed)

	var articles []news.ArticleRaw
	for _, r := range results {
		if r.Err != nil {
			slog.Warn("Feed fetch failed", "feed", sources[r.Index].Name, "error", r.Err)
			continue
		}
		articles = append(articles, r.Value...)
	}
	return articles
}

func (f *Fetcher) extractDescription(ctx context.Context, link string) string {
	if link == "" {
		return ""
	}

	page, err := f.client.Fetch(ctx, link)
	if err != nil {
		slog.Debug("Article page fetch failed", "link", link, "error", err)
		return ""
	}

	text, err := f.extractor.Run(page, link)
	if err != nil {
		slog.Debug("Content extraction failed", "link", link, "error", err)
		return ""
	}
	return text
}
