package ingest

import (
	"cmp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"

	"github.com/lysyi3m/news-comb/app/news"
)

const unknownSource = "Unknown"

// candidate is an upstream article before normalization, whatever its origin.
type candidate struct {
	Title       string
	Description string
	URL         string
	Source      string
	PublishedAt string
	Published   *time.Time
	ImageURL    string
}

type normalizer struct {
	minTitleLength       int
	maxTitleLength       int
	maxDescriptionLength int
	now                  func() time.Time
}

// normalize returns false when the article lacks a title or URL, or its title is too short.
func (n normalizer) normalize(c candidate, tag string) (news.ArticleRaw, bool) {
	title := strings.TrimSpace(c.Title)
	link := strings.TrimSpace(c.URL)
	if title == "" || link == "" {
		return news.ArticleRaw{}, false
	}

	title = truncate(title, n.maxTitleLength)
	if utf8.RuneCountInString(title) < n.minTitleLength {
		return news.ArticleRaw{}, false
	}

	now := n.now().UTC()
	return news.ArticleRaw{
		Title:       title,
		Description: truncate(strings.TrimSpace(c.Description), n.maxDescriptionLength),
		URL:         link,
		Source:      cmp.Or(strings.TrimSpace(c.Source), unknownSource),
		PublishedAt: n.publishedAt(c, now),
		Tag:         tag,
		ImageURL:    strings.TrimSpace(c.ImageURL),
		FetchedAt:   now,
	}, true
}

func (n normalizer) publishedAt(c candidate, now time.Time) time.Time {
	if c.Published != nil && !c.Published.IsZero() {
		return c.Published.UTC().Truncate(time.Second)
	}

	raw := strings.TrimSpace(c.PublishedAt)
	if raw == "" {
		return now.Truncate(time.Second)
	}

	parsed, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return now.Truncate(time.Second)
	}
	return parsed.UTC().Truncate(time.Second)
}

func truncate(s string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxRunes])
}
