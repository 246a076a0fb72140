package feed

import (
	"time"
)

type Metadata struct {
	Title       string
	Link        string
	Description string
	Language    string
}

type Item struct {
	Title       string
	Link        string
	Description string
	Content     string
	Author      string
	PublishedAt *time.Time // nil when the feed carries no parseable date
	ImageURL    string
	Categories  []string
}

type Filter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// FilterFields lists the item fields a Filter may target.
var FilterFields = map[string]bool{
	"title":       true,
	"description": true,
	"content":     true,
	"text":        true,
	"author":      true,
	"link":        true,
	"categories":  true,
}
