package analyzer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var sentenceSplitRe = regexp.MustCompile(`[.!?]+`)

// Readability scores text in [0,1]; shorter sentences and fewer long words score higher.
func (a *Analyzer) Readability(text string) float64 {
	if text == "" {
		return 0
	}

	sentences := 0
	for _, s := range sentenceSplitRe.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}
	if sentences == 0 {
		return 0
	}

	words := strings.Fields(text)
	avgSentenceLength := float64(len(words)) / float64(sentences)

	longWords := 0
	for _, w := range words {
		if utf8.RuneCountInString(w) > 6 {
			longWords++
		}
	}
	longWordRatio := 0.0
	if len(words) > 0 {
		longWordRatio = float64(longWords) / float64(len(words))
	}

	return round(clamp(1-avgSentenceLength/25-longWordRatio*0.5, 0, 1), 3)
}
