package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(p.Categories) != 8 {
		t.Errorf("Expected 8 default categories, got %d", len(p.Categories))
	}
	if len(p.SearchTopics) != 7 {
		t.Errorf("Expected 7 default search topics, got %d", len(p.SearchTopics))
	}
	if strings.Join(p.RequiredFields, ",") != "title,url,source" {
		t.Errorf("Expected default required fields, got %v", p.RequiredFields)
	}
}

func TestCacheRun(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "profile.yml")

	content := `
categories: [technology, science]
search_topics:
  - "quantum computing"
feeds:
  - name: hn
    url: "https://news.example.com/rss"
    max_items: 20
    extract_content: true
    filters:
      - field: title
        excludes: ["sponsored"]
  - name: archive
    url: "https://archive.example.com/rss"
    tag: history
    enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cache := NewCache(path)
	if err := cache.Run(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	p := cache.Get()
	if strings.Join(p.Categories, ",") != "technology,science" {
		t.Errorf("Expected configured categories, got %v", p.Categories)
	}
	if len(p.SearchTopics) != 1 || p.SearchTopics[0] != "quantum computing" {
		t.Errorf("Expected configured topic, got %v", p.SearchTopics)
	}
	if len(p.Feeds) != 2 {
		t.Fatalf("Expected 2 feeds, got %d", len(p.Feeds))
	}
	if p.Feeds[0].Tag != "hn" {
		t.Errorf("Expected tag to default to feed name, got %q", p.Feeds[0].Tag)
	}
	if !p.Feeds[0].ExtractContent || p.Feeds[0].MaxItems != 20 {
		t.Errorf("Expected feed settings to load, got %+v", p.Feeds[0])
	}

	enabled := p.EnabledFeeds()
	if len(enabled) != 1 || enabled[0].Name != "hn" {
		t.Errorf("Expected only 'hn' enabled, got %+v", enabled)
	}
}

func TestCacheGetBeforeRun(t *testing.T) {
	cache := NewCache("unused.yml")
	if p := cache.Get(); p == nil || len(p.Categories) == 0 {
		t.Error("Expected default profile before Run")
	}
}

func TestCacheRequiredFieldsFollowReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yml")

	cache := NewCache(path)
	if got := strings.Join(cache.RequiredFields(), ","); got != "title,url,source" {
		t.Errorf("Expected default required fields, got %q", got)
	}

	if err := os.WriteFile(path, []byte("required_fields: [title, description]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := cache.Run(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if got := strings.Join(cache.RequiredFields(), ","); got != "title,description" {
		t.Errorf("Expected reloaded required fields, got %q", got)
	}
}

func TestParseEmptyListsStayEmpty(t *testing.T) {
	p, err := Parse([]byte("categories: []\nsearch_topics: []\n"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(p.Categories) != 0 || len(p.SearchTopics) != 0 {
		t.Errorf("Expected explicitly empty lists, got %v %v", p.Categories, p.SearchTopics)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{"unknown category", "categories: [weather]", "unknown category"},
		{"bad required field", "required_fields: [image]", "invalid required field"},
		{"feed without url", "feeds:\n  - name: x", "feed URL is required"},
		{"duplicate feed", "feeds:\n  - {name: x, url: 'https://a'}\n  - {name: x, url: 'https://b'}", "duplicate feed name"},
		{"bad filter field", "feeds:\n  - name: x\n    url: https://a\n    filters:\n      - field: body\n        includes: [a]", "invalid filter field"},
		{"empty filter", "feeds:\n  - name: x\n    url: https://a\n    filters:\n      - field: title", "at least one include or exclude"},
		{"malformed", "categories: [", "failed to parse YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("Expected error containing %q, got %v", tt.message, err)
			}
		})
	}
}
