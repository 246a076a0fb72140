package quality

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lysyi3m/news-comb/app/news"
)

// ValidThreshold is the minimum score of an acceptable article.
const ValidThreshold = 0.5

const (
	titlePunctuation  = "!?.,;:"
	maxPunctuation    = 0.15
	minShoutingLength = 20
	maxFutureSkew     = 24 * time.Hour
	maxAge            = 365 * 24 * time.Hour
)

var urlSchemeRe = regexp.MustCompile(`^https?://`)

type Rules struct {
	RequiredFields       []string
	MinTitleLength       int
	MaxTitleLength       int
	MinDescriptionLength int
	MaxDescriptionLength int
	DuplicateThreshold   float64
}

func DefaultRules() Rules {
	return Rules{
		RequiredFields:       []string{"title", "url", "source"},
		MinTitleLength:       10,
		MaxTitleLength:       200,
		MinDescriptionLength: 20,
		MaxDescriptionLength: 500,
		DuplicateThreshold:   0.8,
	}
}

// FieldSource supplies the required field list at check time, so a
// reloaded profile takes effect without rebuilding the validator.
type FieldSource interface {
	RequiredFields() []string
}

type Validator struct {
	rules  Rules
	fields FieldSource
	now    func() time.Time
}

func NewValidator(rules Rules) *Validator {
	return &Validator{rules: rules, now: time.Now}
}

// UseFieldSource makes required fields come from src instead of the static rules.
// Call it before the validator is shared.
func (v *Validator) UseFieldSource(src FieldSource) {
	v.fields = src
}

func (v *Validator) Rules() Rules {
	rules := v.rules
	rules.RequiredFields = v.requiredFields()
	return rules
}

func (v *Validator) requiredFields() []string {
	if v.fields != nil {
		return v.fields.RequiredFields()
	}
	return v.rules.RequiredFields
}

// Score applies the full heuristic rule set.
func (v *Validator) Score(f news.QualityFields) (float64, []string) {
	score := 1.0
	var issues []string
	penalize := func(p float64, issue string) {
		score -= p
		issues = append(issues, issue)
	}

	v.checkRequired(f, 0.4, penalize)

	titleLen := utf8.RuneCountInString(f.Title)
	if f.Title == "" {
		penalize(0.3, "Missing title")
	} else {
		v.checkTitleLength(titleLen, penalize)

		if strings.ToUpper(f.Title) == f.Title && titleLen > minShoutingLength {
			penalize(0.2, "Title is all uppercase")
		}

		punctuation := 0
		for _, r := range f.Title {
			if strings.ContainsRune(titlePunctuation, r) {
				punctuation++
			}
		}
		if float64(punctuation)/float64(titleLen) > maxPunctuation {
			penalize(0.1, "Excessive punctuation in title")
		}
	}

	if f.Description != "" {
		descLen := utf8.RuneCountInString(f.Description)
		if descLen < v.rules.MinDescriptionLength {
			penalize(0.1, fmt.Sprintf("Description too short: %d characters", descLen))
		} else if descLen > v.rules.MaxDescriptionLength {
			penalize(0.05, fmt.Sprintf("Description too long: %d characters", descLen))
		}
	}

	v.checkURL(f, penalize)

	if f.Source == "" || isPlaceholderSource(f.Source) {
		penalize(0.1, "Missing or invalid source")
	}

	if f.Title != "" && f.Description != "" && overlap(f.Title, f.Description) > v.rules.DuplicateThreshold {
		penalize(0.1, "High similarity between title and description")
	}

	if f.PublishedAt.IsZero() {
		penalize(0.05, "Invalid date format")
	} else {
		now := v.now()
		if f.PublishedAt.After(now.Add(maxFutureSkew)) {
			penalize(0.1, "Publication date in future")
		} else if f.PublishedAt.Before(now.Add(-maxAge)) {
			penalize(0.05, "Article is very old")
		}
	}

	v.checkSentiment(f, penalize)

	return math.Max(0, score), issues
}

// Gate applies the lower-effort rule subset used at persistence time:
// required fields, length bounds, URL scheme and sentiment range.
func (v *Validator) Gate(f news.QualityFields) (float64, []string) {
	score := 1.0
	var issues []string
	penalize := func(p float64, issue string) {
		score -= p
		issues = append(issues, issue)
	}

	v.checkRequired(f, 0.3, penalize)

	v.checkTitleLength(utf8.RuneCountInString(f.Title), penalize)

	if f.Description != "" {
		if descLen := utf8.RuneCountInString(f.Description); descLen < v.rules.MinDescriptionLength {
			penalize(0.1, fmt.Sprintf("Description too short: %d characters", descLen))
		}
	}

	v.checkURL(f, penalize)
	v.checkSentiment(f, penalize)

	return math.Max(0, score), issues
}

func IsValid(score float64) bool {
	return score >= ValidThreshold
}

func (v *Validator) checkRequired(f news.QualityFields, penalty float64, penalize func(float64, string)) {
	for _, field := range v.requiredFields() {
		if fieldValue(f, field) == "" {
			penalize(penalty, "Missing required field: "+field)
		}
	}
}

func (v *Validator) checkTitleLength(titleLen int, penalize func(float64, string)) {
	if titleLen < v.rules.MinTitleLength {
		penalize(0.2, fmt.Sprintf("Title too short: %d characters", titleLen))
	} else if titleLen > v.rules.MaxTitleLength {
		penalize(0.1, fmt.Sprintf("Title too long: %d characters", titleLen))
	}
}

func (v *Validator) checkURL(f news.QualityFields, penalize func(float64, string)) {
	if f.URL != "" && !urlSchemeRe.MatchString(f.URL) {
		penalize(0.2, "Invalid URL format")
	}
}

func (v *Validator) checkSentiment(f news.QualityFields, penalize func(float64, string)) {
	if f.SentimentScore < -1 || f.SentimentScore > 1 {
		penalize(0.1, "Sentiment score out of range")
	}
}

func fieldValue(f news.QualityFields, field string) string {
	switch field {
	case "title":
		return f.Title
	case "description":
		return f.Description
	case "url":
		return f.URL
	case "source":
		return f.Source
	default:
		return ""
	}
}

func isPlaceholderSource(source string) bool {
	switch strings.ToLower(source) {
	case "unknown", "null", "none":
		return true
	}
	return false
}

// overlap is the share of distinct title words that also appear in the description.
func overlap(title, description string) float64 {
	titleWords := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(title)) {
		titleWords[w] = true
	}
	if len(titleWords) == 0 {
		return 0
	}

	descWords := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(description)) {
		descWords[w] = true
	}

	shared := 0
	for w := range titleWords {
		if descWords[w] {
			shared++
		}
	}
	return float64(shared) / float64(len(titleWords))
}
