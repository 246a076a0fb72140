package analyzer

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

type Options struct {
	PositiveThreshold   float64
	NegativeThreshold   float64
	ConfidenceThreshold float64
	MaxKeywords         int
	DetectLanguage      bool
}

func DefaultOptions() Options {
	return Options{
		PositiveThreshold:   0.1,
		NegativeThreshold:   -0.1,
		ConfidenceThreshold: 0.5,
		MaxKeywords:         10,
	}
}

// Analyzer is safe for concurrent use.
type Analyzer struct {
	opts    Options
	lexicon *Lexicon

	detectorOnce sync.Once
	detector     lingua.LanguageDetector
}

func NewAnalyzer(opts Options) *Analyzer {
	return &Analyzer{
		opts:    opts,
		lexicon: defaultLexicon(),
	}
}

// NewAnalyzerWithLexicon uses a caller-supplied lexicon in place of the embedded one.
func NewAnalyzerWithLexicon(opts Options, lexicon *Lexicon) *Analyzer {
	return &Analyzer{
		opts:    opts,
		lexicon: lexicon,
	}
}

func (a *Analyzer) MaxKeywords() int {
	return a.opts.MaxKeywords
}

func (a *Analyzer) StopWordCount() int {
	return len(stopWords)
}

func (a *Analyzer) CategoryPatternCount() int {
	n := 0
	for _, entry := range categoryTable {
		if len(entry.patterns) > 0 {
			n++
		}
	}
	return n
}

var detectedLanguages = []lingua.Language{
	lingua.English,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
}

// Language returns the ISO 639-1 code of text, or "" when detection is
// disabled or inconclusive.
func (a *Analyzer) Language(text string) string {
	if !a.opts.DetectLanguage || strings.TrimSpace(text) == "" {
		return ""
	}

	a.detectorOnce.Do(func() {
		a.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectedLanguages...).
			Build()
	})

	language, ok := a.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(language.IsoCode639_1().String())
}
