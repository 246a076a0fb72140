package trends

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/lysyi3m/news-comb/app/news"
)

const DefaultLimit = 20

// Detector ranks keywords by how strongly they trend across hourly buckets.
type Detector struct {
	limit int
}

func NewDetector(limit int) *Detector {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Detector{limit: limit}
}

type bucket struct {
	hour       int
	counts     map[string]int
	sentiments map[string][]float64
}

type keywordTrend struct {
	counts     []int
	sentiments []float64
	sources    map[string]bool
}

// Detect buckets articles by whole hours before now. Articles published more
// than windowHours ago are ignored. Only keywords seen in at least two buckets
// are ranked.
func (d *Detector) Detect(articles []news.Article, windowHours int, now time.Time) []news.TrendingTopic {
	buckets, sources := bucketize(articles, windowHours, now)

	trends := make(map[string]*keywordTrend)
	var order []string

	for _, b := range buckets {
		for _, keyword := range b.keywords() {
			t, ok := trends[keyword]
			if !ok {
				t = &keywordTrend{sources: sources[keyword]}
				trends[keyword] = t
				order = append(order, keyword)
			}
			t.counts = append(t.counts, b.counts[keyword])
			t.sentiments = append(t.sentiments, mean(b.sentiments[keyword]))
		}
	}

	var topics []news.TrendingTopic
	for _, keyword := range order {
		t := trends[keyword]
		if len(t.counts) < 2 {
			continue
		}
		topics = append(topics, score(keyword, t))
	}

	slices.SortStableFunc(topics, func(a, b news.TrendingTopic) int {
		return cmp.Compare(b.TrendingScore, a.TrendingScore)
	})

	if len(topics) > d.limit {
		topics = topics[:d.limit]
	}
	return topics
}

func score(keyword string, t *keywordTrend) news.TrendingTopic {
	half := len(t.counts) / 2
	recent := meanInts(t.counts[:half])
	older := meanInts(t.counts[half:])
	velocity := recent - older

	total := 0
	for _, c := range t.counts {
		total += c
	}

	std := stddev(t.sentiments)
	trendingScore := float64(total)*0.4 + velocity*0.3 + float64(len(t.sources))*0.2 + (1-std)*0.1

	return news.TrendingTopic{
		Keyword:              keyword,
		TotalMentions:        total,
		TrendVelocity:        round(velocity, 2),
		SourceDiversity:      len(t.sources),
		AvgSentiment:         round(mean(t.sentiments), 3),
		SentimentConsistency: round(1-std, 3),
		TrendingScore:        round(trendingScore, 2),
		TimePeriods:          len(t.counts),
	}
}

// bucketize groups keyword tallies by hours ago, sorted from the most recent
// hour, and collects the distinct sources mentioning each keyword.
func bucketize(articles []news.Article, windowHours int, now time.Time) ([]*bucket, map[string]map[string]bool) {
	byHour := make(map[int]*bucket)
	sources := make(map[string]map[string]bool)

	for _, a := range articles {
		if !inWindow(a, windowHours, now) {
			continue
		}

		hour := int(now.Sub(a.PublishedAt).Hours())
		b, ok := byHour[hour]
		if !ok {
			b = &bucket{
				hour:       hour,
				counts:     make(map[string]int),
				sentiments: make(map[string][]float64),
			}
			byHour[hour] = b
		}

		for _, keyword := range normalizeKeywords(a.Keywords) {
			b.counts[keyword]++
			b.sentiments[keyword] = append(b.sentiments[keyword], a.SentimentScore)

			if sources[keyword] == nil {
				sources[keyword] = make(map[string]bool)
			}
			sources[keyword][a.Source] = true
		}
	}

	buckets := make([]*bucket, 0, len(byHour))
	for _, b := range byHour {
		buckets = append(buckets, b)
	}
	slices.SortFunc(buckets, func(a, b *bucket) int {
		return cmp.Compare(a.hour, b.hour)
	})

	return buckets, sources
}

// keywords returns the bucket's keywords in a deterministic order.
func (b *bucket) keywords() []string {
	keywords := make([]string, 0, len(b.counts))
	for k := range b.counts {
		keywords = append(keywords, k)
	}
	slices.Sort(keywords)
	return keywords
}

func inWindow(a news.Article, windowHours int, now time.Time) bool {
	if a.PublishedAt.IsZero() {
		return false
	}
	return now.Sub(a.PublishedAt).Hours() <= float64(windowHours)
}

func normalizeKeywords(keywords []string) []string {
	normalized := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			normalized = append(normalized, k)
		}
	}
	return normalized
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func meanInts(values []int) float64 {
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(max(1, len(values)))
}

// stddev is the population standard deviation; zero for fewer than two values.
func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(values)))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
