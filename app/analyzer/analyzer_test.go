package analyzer

import (
	"strings"
	"testing"

	"github.com/lysyi3m/news-comb/app/news"
)

func TestCleanStripsMarkupAndLinks(t *testing.T) {
	input := `<p>Big &amp; bold</p> launch at https://example.com/x?y=1 by @newsdesk #tech contact me@example.com`

	got := Clean(input)

	for _, unwanted := range []string{"<p>", "&amp;", "https://", "@newsdesk", "#tech", "me@example.com"} {
		if strings.Contains(got, unwanted) {
			t.Errorf("Expected %q to be removed, got %q", unwanted, got)
		}
	}
	if !strings.Contains(got, "Big bold") {
		t.Errorf("Expected text content to remain, got %q", got)
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		`<div class="x">Markets <b>rally</b> &nbsp; after   news!!</div>`,
		`Read more at https://news.example.org/a/b.html , or http://x.io`,
		`#Breaking : @reporter says "hello" , world ; ok ?`,
		`Ünïcödé ﬁle … quotes “smart” and émojis 🚀 here .`,
		`  spaces   before , and after ,   punctuation  `,
		``,
	}

	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Expected Clean to be idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestCleanPunctuationSpacing(t *testing.T) {
	got := Clean("Hello , world ! How are you ?")
	if got != "Hello, world! How are you?" {
		t.Errorf("Expected normalized spacing, got %q", got)
	}
}

func TestSentimentLabels(t *testing.T) {
	a := NewAnalyzer(DefaultOptions())

	tests := []struct {
		name  string
		text  string
		label news.SentimentLabel
	}{
		{"positive", "Excellent results and a great success for the team", news.SentimentPositive},
		{"negative", "Terrible disaster leaves the city in crisis", news.SentimentNegative},
		{"no signal", "The committee met on Tuesday", news.SentimentNeutral},
		{"empty", "", news.SentimentNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, label, confidence := a.Sentiment(tt.text)
			if label != tt.label {
				t.Errorf("Expected label %s, got %s (score %v, confidence %v)", tt.label, label, score, confidence)
			}
			if score < -1 || score > 1 {
				t.Errorf("Expected score in [-1,1], got %v", score)
			}
			if confidence < 0 || confidence > 1 {
				t.Errorf("Expected confidence in [0,1], got %v", confidence)
			}
		})
	}
}

func TestSentimentLowConfidenceForcedNeutral(t *testing.T) {
	opts := DefaultOptions()
	opts.ConfidenceThreshold = 0.99
	a := NewAnalyzer(opts)

	// "positive" is a weak, moderately subjective word: confidence 0.23 + 0.275
	score, label, confidence := a.Sentiment("A positive outlook")
	if label != news.SentimentNeutral {
		t.Errorf("Expected neutral label, got %s", label)
	}
	if score != 0 {
		t.Errorf("Expected zeroed polarity, got %v", score)
	}
	if confidence >= 0.99 {
		t.Errorf("Expected confidence below threshold, got %v", confidence)
	}
}

func TestSentimentNegation(t *testing.T) {
	lex, err := LoadLexicon([]byte("words:\n  good: [0.8, 0.8]\nnegations: [not]\nintensifiers:\n  very: 1.25\n"))
	if err != nil {
		t.Fatalf("Expected lexicon to load, got %v", err)
	}

	p, _ := lex.Polarity("good")
	if p != 0.8 {
		t.Errorf("Expected polarity 0.8, got %v", p)
	}
	p, _ = lex.Polarity("not good")
	if p != -0.4 {
		t.Errorf("Expected negated polarity -0.4, got %v", p)
	}
	p, _ = lex.Polarity("very good")
	if p != 1 {
		t.Errorf("Expected intensified polarity 1, got %v", p)
	}
}

func TestLoadLexiconRejectsMalformedEntries(t *testing.T) {
	if _, err := LoadLexicon([]byte("words:\n  good: [0.8]\n")); err == nil {
		t.Error("Expected error for entry without subjectivity")
	}
	if _, err := LoadLexicon([]byte("words:\n  good: [2, 0.5]\n")); err == nil {
		t.Error("Expected error for out-of-range polarity")
	}
}

func TestKeywordsBounds(t *testing.T) {
	a := NewAnalyzer(DefaultOptions())
	text := "Breaking news: the election campaign heats up as voters weigh the election results, " +
		"according to sources. Candidates debate healthcare, taxes and immigration policy in the election."

	for _, k := range []int{0, 1, 3, 10, 50} {
		keywords := a.Keywords(text, k)
		if len(keywords) > k {
			t.Errorf("Expected at most %d keywords, got %d", k, len(keywords))
		}
		for _, w := range keywords {
			if IsStopWord(w) {
				t.Errorf("Expected no stop-words, got %q", w)
			}
			if len(w) < 3 {
				t.Errorf("Expected keywords of length >= 3, got %q", w)
			}
		}
	}

	top := a.Keywords(text, 1)
	if len(top) != 1 || top[0] != "election" {
		t.Errorf("Expected 'election' as top keyword, got %v", top)
	}
}

func TestKeywordsTiesKeepFirstSeenOrder(t *testing.T) {
	a := NewAnalyzer(DefaultOptions())

	// alpha and bravo share frequency, length and the position floor.
	got := a.Keywords("zebra zebra zebra zebra alpha bravo", 3)
	if len(got) != 3 || got[0] != "zebra" || got[1] != "alpha" || got[2] != "bravo" {
		t.Errorf("Expected [zebra alpha bravo], got %v", got)
	}
}

func TestKeywordsEmpty(t *testing.T) {
	a := NewAnalyzer(DefaultOptions())
	if got := a.Keywords("", 5); len(got) != 0 {
		t.Errorf("Expected no keywords, got %v", got)
	}
	if got := a.Keywords("the and of to", 5); len(got) != 0 {
		t.Errorf("Expected no keywords for stop-words only, got %v", got)
	}
}

func TestCategorize(t *testing.T) {
	a := NewAnalyzer(DefaultOptions())

	tests := []struct {
		name        string
		title       string
		description string
		tag         string
		category    news.Category
		confidence  float64
	}{
		{"technology", "Apple unveils new AI software for iPhone", "The tech giant showed machine learning features", "general", news.CategoryTechnology, 1},
		{"sports", "Team wins championship in overtime", "The players and coach celebrated the season", "", news.CategorySports, 1},
		{"fallback to tag", "Quiet afternoon in the village", "Residents enjoyed the weather", "world", news.CategoryWorld, 0.5},
		{"fallback to general", "Quiet afternoon in the village", "Residents enjoyed the weather", "search", news.CategoryGeneral, 0.3},
		{"empty", "", "", "", news.CategoryGeneral, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, confidence := a.Categorize(tt.title, tt.description, tt.tag)
			if category != tt.category {
				t.Errorf("Expected category %s, got %s", tt.category, category)
			}
			if confidence != tt.confidence {
				t.Errorf("Expected confidence %v, got %v", tt.confidence, confidence)
			}
			if !news.IsCategory(string(category)) {
				t.Errorf("Expected a known category, got %s", category)
			}
		})
	}
}

func TestReadability(t *testing.T) {
	a := NewAnalyzer(DefaultOptions())

	if got := a.Readability(""); got != 0 {
		t.Errorf("Expected 0 for empty text, got %v", got)
	}
	if got := a.Readability("..."); got != 0 {
		t.Errorf("Expected 0 without sentences, got %v", got)
	}

	// 4 words, 1 sentence, no long words: 1 - 4/25
	if got := a.Readability("The cat sat down."); got != 0.84 {
		t.Errorf("Expected 0.84, got %v", got)
	}

	long := strings.Repeat("extraordinarily complicated ", 20) + "."
	if got := a.Readability(long); got != 0 {
		t.Errorf("Expected 0 for a long complex sentence, got %v", got)
	}
}

func TestLanguageDisabled(t *testing.T) {
	a := NewAnalyzer(DefaultOptions())
	if got := a.Language("This is plainly an English sentence."); got != "" {
		t.Errorf("Expected empty language when detection is disabled, got %q", got)
	}
}

func TestLanguageDetection(t *testing.T) {
	if testing.Short() {
		t.Skip("language models are slow to load")
	}

	opts := DefaultOptions()
	opts.DetectLanguage = true
	a := NewAnalyzer(opts)

	if got := a.Language("The government announced a new budget for schools and hospitals this week."); got != "en" {
		t.Errorf("Expected 'en', got %q", got)
	}
	if got := a.Language("Le gouvernement a annoncé un nouveau budget pour les écoles cette semaine."); got != "fr" {
		t.Errorf("Expected 'fr', got %q", got)
	}
}
