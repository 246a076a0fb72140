package news

import (
	"time"
)

type Category string

const (
	CategoryGeneral       Category = "general"
	CategoryWorld         Category = "world"
	CategoryBusiness      Category = "business"
	CategoryTechnology    Category = "technology"
	CategoryEntertainment Category = "entertainment"
	CategorySports        Category = "sports"
	CategoryScience       Category = "science"
	CategoryHealth        Category = "health"
	CategoryPolitics      Category = "politics"
)

// Categories lists every category an enriched article may carry.
var Categories = []Category{
	CategoryGeneral,
	CategoryWorld,
	CategoryBusiness,
	CategoryTechnology,
	CategoryEntertainment,
	CategorySports,
	CategoryScience,
	CategoryHealth,
	CategoryPolitics,
}

func IsCategory(s string) bool {
	for _, c := range Categories {
		if string(c) == s {
			return true
		}
	}
	return false
}

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// TagSearch marks articles fetched through a topic search.
const TagSearch = "search"

// ArticleRaw is an article as fetched and normalized, before enrichment.
type ArticleRaw struct {
	Title       string
	Description string
	URL         string
	Source      string
	PublishedAt time.Time // zero when the upstream value was unusable and no fallback applied
	Tag         string    // category, "search" or feed tag the fetch was made under
	ImageURL    string
	FetchedAt   time.Time
}

// Article is the enriched record the processor produces and the store persists.
type Article struct {
	ArticleRaw

	SentimentScore      float64
	SentimentLabel      SentimentLabel
	SentimentConfidence float64
	Keywords            []string
	Category            Category
	CategoryConfidence  float64
	QualityScore        float64
	ReadabilityScore    float64
	Language            string
	ProcessingTime      float64 // seconds
	ProcessedAt         time.Time
}

// QualityFields is the view of a record the quality rules inspect.
type QualityFields struct {
	Title          string
	Description    string
	URL            string
	Source         string
	PublishedAt    time.Time
	SentimentScore float64
}

func (a ArticleRaw) QualityFields() QualityFields {
	return QualityFields{
		Title:       a.Title,
		Description: a.Description,
		URL:         a.URL,
		Source:      a.Source,
		PublishedAt: a.PublishedAt,
	}
}

func (a Article) QualityFields() QualityFields {
	f := a.ArticleRaw.QualityFields()
	f.SentimentScore = a.SentimentScore
	return f
}

// TrendingTopic is derived per detection call and never persisted.
type TrendingTopic struct {
	Keyword              string  `json:"keyword"`
	TotalMentions        int     `json:"total_mentions"`
	TrendVelocity        float64 `json:"trend_velocity"`
	SourceDiversity      int     `json:"source_diversity"`
	AvgSentiment         float64 `json:"avg_sentiment"`
	SentimentConsistency float64 `json:"sentiment_consistency"`
	TrendingScore        float64 `json:"trending_score"`
	TimePeriods          int     `json:"time_periods"`
}
