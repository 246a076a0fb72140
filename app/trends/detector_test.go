package trends

import (
	"fmt"
	"testing"
	"time"

	"github.com/lysyi3m/news-comb/app/news"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func article(keyword, source string, hoursAgo float64, sentiment float64) news.Article {
	return news.Article{
		ArticleRaw: news.ArticleRaw{
			Source:      source,
			PublishedAt: now.Add(-time.Duration(hoursAgo * float64(time.Hour))),
		},
		Keywords:       []string{keyword},
		SentimentScore: sentiment,
	}
}

func TestDetectRanksRisingKeyword(t *testing.T) {
	var articles []news.Article

	for h := 0; h < 8; h++ {
		for i := 0; i < 2*(8-h); i++ {
			articles = append(articles, article("election", fmt.Sprintf("source-%d", i%4), float64(h)+0.5, 0.1))
		}
	}

	others := []string{"weather", "markets", "football", "music", "travel"}
	for i := 0; len(articles) < 200; i++ {
		articles = append(articles, article(others[i%len(others)], "wire", float64(i%24)+0.25, 0))
	}

	if len(articles) != 200 {
		t.Fatalf("Expected 200 articles, got %d", len(articles))
	}

	topics := NewDetector(DefaultLimit).Detect(articles, 24, now)
	if len(topics) == 0 {
		t.Fatal("Expected trending topics")
	}

	rank := -1
	for i, topic := range topics {
		if topic.Keyword == "election" {
			rank = i
			break
		}
	}
	if rank < 0 || rank > 2 {
		t.Fatalf("Expected election in top 3, got rank %d", rank)
	}

	election := topics[rank]
	if election.TotalMentions != 72 {
		t.Errorf("Expected 72 mentions, got %d", election.TotalMentions)
	}
	if election.TrendVelocity <= 0 {
		t.Errorf("Expected positive velocity for rising keyword, got %f", election.TrendVelocity)
	}
	if election.SourceDiversity != 4 {
		t.Errorf("Expected 4 sources, got %d", election.SourceDiversity)
	}
	if election.TimePeriods != 8 {
		t.Errorf("Expected 8 time periods, got %d", election.TimePeriods)
	}
	if election.SentimentConsistency != 1 {
		t.Errorf("Expected consistency 1, got %f", election.SentimentConsistency)
	}
}

func TestDetectScoreFormula(t *testing.T) {
	// Two buckets: hour 0 with 3 mentions, hour 1 with 1 mention.
	articles := []news.Article{
		article("rust", "a", 0.1, 0.5),
		article("rust", "b", 0.2, 0.5),
		article("rust", "a", 0.3, 0.5),
		article("rust", "c", 1.5, -0.5),
	}

	topics := NewDetector(0).Detect(articles, 24, now)
	if len(topics) != 1 {
		t.Fatalf("Expected 1 topic, got %d", len(topics))
	}

	topic := topics[0]
	if topic.TotalMentions != 4 {
		t.Errorf("Expected 4 mentions, got %d", topic.TotalMentions)
	}
	if topic.TrendVelocity != 2 {
		t.Errorf("Expected velocity 2, got %f", topic.TrendVelocity)
	}
	if topic.AvgSentiment != 0 {
		t.Errorf("Expected avg sentiment 0, got %f", topic.AvgSentiment)
	}
	if topic.SentimentConsistency != 0.5 {
		t.Errorf("Expected consistency 0.5, got %f", topic.SentimentConsistency)
	}
	// 0.4*4 + 0.3*2 + 0.2*3 + 0.1*0.5
	if topic.TrendingScore != 2.85 {
		t.Errorf("Expected score 2.85, got %f", topic.TrendingScore)
	}
}

func TestDetectRequiresTwoBuckets(t *testing.T) {
	articles := []news.Article{
		article("single", "a", 0.5, 0),
		article("single", "b", 0.7, 0),
		article("spread", "a", 0.5, 0),
		article("spread", "a", 3.5, 0),
	}

	topics := NewDetector(0).Detect(articles, 24, now)
	if len(topics) != 1 || topics[0].Keyword != "spread" {
		t.Errorf("Expected only spread to qualify, got %+v", topics)
	}
}

func TestDetectWindowExcludesOldArticles(t *testing.T) {
	articles := []news.Article{
		article("old", "a", 30, 0),
		article("old", "a", 40, 0),
		article("fresh", "a", 1, 0),
		article("fresh", "a", 5, 0),
		{Keywords: []string{"undated"}},
		{Keywords: []string{"undated"}},
	}

	topics := NewDetector(0).Detect(articles, 24, now)
	if len(topics) != 1 || topics[0].Keyword != "fresh" {
		t.Errorf("Expected only fresh within window, got %+v", topics)
	}
}

func TestDetectNormalizesKeywords(t *testing.T) {
	articles := []news.Article{
		article(" Climate ", "a", 0.5, 0),
		article("climate", "b", 2.5, 0),
		article("   ", "b", 2.5, 0),
	}

	topics := NewDetector(0).Detect(articles, 24, now)
	if len(topics) != 1 || topics[0].Keyword != "climate" {
		t.Errorf("Expected climate normalized, got %+v", topics)
	}
}

func TestDetectLimit(t *testing.T) {
	var articles []news.Article
	for k := 0; k < 30; k++ {
		keyword := fmt.Sprintf("keyword%02d", k)
		articles = append(articles, article(keyword, "a", 0.5, 0), article(keyword, "a", 1.5, 0))
	}

	if got := len(NewDetector(0).Detect(articles, 24, now)); got != DefaultLimit {
		t.Errorf("Expected %d topics, got %d", DefaultLimit, got)
	}
	if got := len(NewDetector(5).Detect(articles, 24, now)); got != 5 {
		t.Errorf("Expected 5 topics, got %d", got)
	}
}

func TestDetectEmpty(t *testing.T) {
	if topics := NewDetector(0).Detect(nil, 24, now); len(topics) != 0 {
		t.Errorf("Expected no topics, got %d", len(topics))
	}
}
