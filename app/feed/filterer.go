package feed

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run drops every item rejected by one of the filters. Patterns match
// case-insensitively as substrings of the filtered field.
func (f *Filterer) Run(items []Item, filters []Filter) []Item {
	if len(filters) == 0 {
		return items
	}

	rules := compileFilters(filters)

	kept := make([]Item, 0, len(items))
	for _, item := range items {
		if reason, rejected := rejectReason(rules, item); rejected {
			slog.Debug("Feed item filtered", "link", item.Link, "reason", reason)
			continue
		}
		kept = append(kept, item)
	}

	return kept
}

type filterRule struct {
	field    string
	includes []string
	excludes []string
}

func compileFilters(filters []Filter) []filterRule {
	rules := make([]filterRule, 0, len(filters))
	for _, filter := range filters {
		rules = append(rules, filterRule{
			field:    strings.ToLower(filter.Field),
			includes: lowerAll(filter.Includes),
			excludes: lowerAll(filter.Excludes),
		})
	}
	return rules
}

func rejectReason(rules []filterRule, item Item) (string, bool) {
	for _, rule := range rules {
		value := strings.ToLower(fieldValue(item, rule.field))
		contains := func(pattern string) bool { return strings.Contains(value, pattern) }

		if i := slices.IndexFunc(rule.excludes, contains); i >= 0 {
			return fmt.Sprintf("%s contains %q", rule.field, rule.excludes[i]), true
		}
		if len(rule.includes) > 0 && !slices.ContainsFunc(rule.includes, contains) {
			return fmt.Sprintf("%s matches none of %v", rule.field, rule.includes), true
		}
	}
	return "", false
}

func fieldValue(item Item, field string) string {
	switch field {
	case "title":
		return item.Title
	case "description":
		return item.Description
	case "content":
		return item.Content
	case "text":
		return item.Title + " " + item.Description
	case "author":
		return item.Author
	case "link":
		return item.Link
	case "categories":
		return strings.Join(item.Categories, " ")
	default:
		return ""
	}
}

func lowerAll(patterns []string) []string {
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = strings.ToLower(p)
	}
	return out
}
