package analyzer

import (
	_ "embed"
	"fmt"
	"math"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/news-comb/app/news"
)

//go:embed lexicon.yml
var lexiconData []byte

// negationFactor is applied to the polarity of a negated word.
const negationFactor = -0.5

var tokenRe = regexp.MustCompile(`[a-z]+(?:'[a-z]+)?`)

type Lexicon struct {
	Words        map[string][]float64 `yaml:"words"`
	Intensifiers map[string]float64   `yaml:"intensifiers"`
	Negations    []string             `yaml:"negations"`

	negations map[string]bool
}

// LoadLexicon parses a YAML lexicon of word polarity/subjectivity pairs.
func LoadLexicon(data []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}

	for word, values := range lex.Words {
		if len(values) != 2 {
			return nil, fmt.Errorf("lexicon entry %q must have polarity and subjectivity", word)
		}
		if values[0] < -1 || values[0] > 1 || values[1] < 0 || values[1] > 1 {
			return nil, fmt.Errorf("lexicon entry %q out of range: %v", word, values)
		}
	}

	lex.negations = make(map[string]bool, len(lex.Negations))
	for _, n := range lex.Negations {
		lex.negations[n] = true
	}

	return &lex, nil
}

func defaultLexicon() *Lexicon {
	lex, err := LoadLexicon(lexiconData)
	if err != nil {
		panic(err)
	}
	return lex
}

// Polarity scores text against the lexicon and returns the mean polarity and
// subjectivity of the scored words. Text without scored words yields (0, 0).
func (lex *Lexicon) Polarity(text string) (float64, float64) {
	tokens := tokenRe.FindAllString(strings.ToLower(text), -1)

	var polaritySum, subjectivitySum float64
	scored := 0
	multiplier := 1.0
	negated := false

	for _, token := range tokens {
		if lex.negations[token] {
			negated = true
			continue
		}
		if m, ok := lex.Intensifiers[token]; ok {
			multiplier *= m
			continue
		}

		values, ok := lex.Words[token]
		if !ok {
			continue
		}

		p := values[0] * multiplier
		s := math.Min(1, values[1]*multiplier)
		if negated {
			p *= negationFactor
		}

		polaritySum += p
		subjectivitySum += s
		scored++

		multiplier = 1.0
		negated = false
	}

	if scored == 0 {
		return 0, 0
	}

	polarity := clamp(polaritySum/float64(scored), -1, 1)
	subjectivity := clamp(subjectivitySum/float64(scored), 0, 1)
	return polarity, subjectivity
}

// Sentiment returns rounded polarity, label and confidence for text.
// Predictions below the confidence threshold are reported as neutral with zero polarity.
func (a *Analyzer) Sentiment(text string) (float64, news.SentimentLabel, float64) {
	if strings.TrimSpace(text) == "" {
		return 0, news.SentimentNeutral, 0
	}

	polarity, subjectivity := a.lexicon.Polarity(text)
	confidence := math.Min(1, math.Abs(polarity)+subjectivity*0.5)

	var label news.SentimentLabel
	switch {
	case confidence < a.opts.ConfidenceThreshold:
		label = news.SentimentNeutral
		polarity = 0
	case polarity > a.opts.PositiveThreshold:
		label = news.SentimentPositive
	case polarity < a.opts.NegativeThreshold:
		label = news.SentimentNegative
	default:
		label = news.SentimentNeutral
	}

	return round(polarity, 3), label, round(confidence, 3)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
