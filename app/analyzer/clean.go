package analyzer

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	htmlTagRe     = regexp.MustCompile(`<[^>]+>`)
	htmlEntityRe  = regexp.MustCompile(`&[a-zA-Z0-9#]+;`)
	urlRe         = regexp.MustCompile(`https?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\(\),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+`)
	emailRe       = regexp.MustCompile(`\S+@\S+`)
	handleRe      = regexp.MustCompile(`@\w+`)
	hashtagRe     = regexp.MustCompile(`#\w+`)
	spaceRe       = regexp.MustCompile(`\s+`)
	specialRe     = regexp.MustCompile(`[^\p{L}\p{N}_\s.!?,:;\-()\[\]'"]`)
	spaceBeforeRe = regexp.MustCompile(`\s+([,.!?;:])`)
	spaceAfterRe  = regexp.MustCompile(`([,.!?;:])\s+`)
	quotedWordRe  = regexp.MustCompile(`"(\w+)"`)
)

const maxCleanPasses = 8

// Clean strips markup, links, handles and non-essential punctuation from text.
// Passes repeat until the output is stable, so Clean(Clean(s)) == Clean(s).
func Clean(text string) string {
	if text == "" {
		return ""
	}

	out := norm.NFKC.String(text)
	for i := 0; i < maxCleanPasses; i++ {
		next := cleanPass(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func cleanPass(text string) string {
	text = htmlTagRe.ReplaceAllString(text, "")
	text = htmlEntityRe.ReplaceAllString(text, "")

	text = urlRe.ReplaceAllString(text, "")
	text = emailRe.ReplaceAllString(text, "")

	text = handleRe.ReplaceAllString(text, "")
	text = hashtagRe.ReplaceAllString(text, "")

	text = spaceRe.ReplaceAllString(text, " ")

	text = specialRe.ReplaceAllString(text, "")

	text = spaceBeforeRe.ReplaceAllString(text, "$1")
	text = spaceAfterRe.ReplaceAllString(text, "$1 ")

	text = quotedWordRe.ReplaceAllString(text, "$1")

	return strings.TrimSpace(text)
}
