package analyzer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var wordRe = regexp.MustCompile(`\b[a-zA-Z]{3,}\b`)

var stopWords = toSet(
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
	"of", "with", "by", "is", "are", "was", "were", "be", "been", "have",
	"has", "had", "do", "does", "did", "will", "would", "could", "should",
	"this", "that", "these", "those", "i", "me", "my", "we", "our", "you",
	"your", "he", "him", "his", "she", "her", "it", "its", "they", "them",
	"their", "what", "which", "who", "where", "when", "why", "how", "all",
	"any", "both", "each", "more", "most", "other", "some", "such", "no",
	"not", "only", "own", "same", "so", "than", "too", "very", "said",
	"says", "get", "go", "make", "take", "come", "see", "know", "think",
	"look", "first", "last", "long", "good", "new", "old", "right", "big",
	"small", "different", "large", "great", "little", "high", "next", "early",
	"young", "important", "public", "bad", "able", "may", "might", "must",
	"can", "well", "way", "even", "back", "still", "just", "now", "also",
	"here", "there", "up", "out", "down", "over", "under", "again", "off",
	"away", "around", "between", "through", "during", "before", "after",
	"above", "below", "into", "from", "against", "about", "without", "within",
	// news boilerplate
	"news", "report", "reports", "according", "sources", "source", "today",
	"yesterday", "announced", "breaking", "update", "updates", "latest",
	"story", "article", "published", "writes", "coverage",
)

func toSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

func IsStopWord(word string) bool {
	return stopWords[word]
}

// Keywords returns at most maxKeywords relevance-ranked words from text.
// Ties keep the order in which words first appear.
func (a *Analyzer) Keywords(text string, maxKeywords int) []string {
	if text == "" || maxKeywords <= 0 {
		return []string{}
	}

	cleaned := Clean(strings.ToLower(text))

	var words []string
	for _, w := range wordRe.FindAllString(cleaned, -1) {
		if !stopWords[w] {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return []string{}
	}

	type scoredWord struct {
		word  string
		score float64
	}

	freq := make(map[string]int)
	firstIndex := make(map[string]int)
	var order []string
	for i, w := range words {
		if _, seen := freq[w]; !seen {
			firstIndex[w] = i
			order = append(order, w)
		}
		freq[w]++
	}

	total := float64(len(words))
	scored := make([]scoredWord, 0, len(order))
	for _, w := range order {
		tf := float64(freq[w]) / total
		lengthBonus := math.Min(2, float64(len(w))/5)
		positionBonus := math.Max(0.5, 1-float64(firstIndex[w])/total)
		scored = append(scored, scoredWord{word: w, score: tf * lengthBonus * positionBonus})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > maxKeywords {
		scored = scored[:maxKeywords]
	}

	keywords := make([]string, len(scored))
	for i, s := range scored {
		keywords[i] = s.word
	}
	return keywords
}
