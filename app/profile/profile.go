package profile

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/news-comb/app/feed"
	"github.com/lysyi3m/news-comb/app/news"
)

var DefaultCategories = []string{
	"general", "world", "business", "technology",
	"entertainment", "sports", "science", "health",
}

var DefaultSearchTopics = []string{
	"artificial intelligence",
	"climate change",
	"technology news",
	"business updates",
	"health news",
	"cryptocurrency",
	"space exploration",
}

var DefaultRequiredFields = []string{"title", "url", "source"}

// Profile describes what a fetch run pulls: API categories, search topics and RSS feeds.
type Profile struct {
	Categories     []string `yaml:"categories"`
	SearchTopics   []string `yaml:"search_topics"`
	RequiredFields []string `yaml:"required_fields"`
	Feeds          []Feed   `yaml:"feeds"`
}

type Feed struct {
	Name           string        `yaml:"name"`
	URL            string        `yaml:"url"`
	Tag            string        `yaml:"tag"`
	Enabled        *bool         `yaml:"enabled"`
	MaxItems       int           `yaml:"max_items"`
	ExtractContent bool          `yaml:"extract_content"`
	Filters        []feed.Filter `yaml:"filters"`
}

func (f Feed) IsEnabled() bool {
	return f.Enabled == nil || *f.Enabled
}

func Default() *Profile {
	return &Profile{
		Categories:     append([]string(nil), DefaultCategories...),
		SearchTopics:   append([]string(nil), DefaultSearchTopics...),
		RequiredFields: append([]string(nil), DefaultRequiredFields...),
	}
}

// EnabledFeeds returns the feeds that take part in fetch runs.
func (p *Profile) EnabledFeeds() []Feed {
	var feeds []Feed
	for _, f := range p.Feeds {
		if f.IsEnabled() {
			feeds = append(feeds, f)
		}
	}
	return feeds
}

// Cache holds the active profile and reloads it from disk on demand.
type Cache struct {
	path    string
	profile *Profile
	mu      sync.RWMutex
}

func NewCache(path string) *Cache {
	return &Cache{
		path:    path,
		profile: Default(),
	}
}

func (c *Cache) Run() error {
	p, err := Load(c.path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.profile = p
	c.mu.Unlock()

	slog.Debug("Profile loaded", "path", c.path, "categories", len(p.Categories), "search_topics", len(p.SearchTopics), "feeds", len(p.Feeds))

	return nil
}

func (c *Cache) Get() *Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile
}

// RequiredFields returns the required fields of the active profile.
func (c *Cache) RequiredFields() []string {
	return c.Get().RequiredFields
}

// Load reads a profile file. A missing file yields the default profile.
func Load(path string) (*Profile, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", path, err)
	}
	return p, nil
}

func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if p.Categories == nil {
		p.Categories = append([]string(nil), DefaultCategories...)
	}
	if p.SearchTopics == nil {
		p.SearchTopics = append([]string(nil), DefaultSearchTopics...)
	}
	if len(p.RequiredFields) == 0 {
		p.RequiredFields = append([]string(nil), DefaultRequiredFields...)
	}
	for i := range p.Feeds {
		if p.Feeds[i].Tag == "" {
			p.Feeds[i].Tag = p.Feeds[i].Name
		}
	}

	if err := validate(&p); err != nil {
		return nil, err
	}

	return &p, nil
}

func validate(p *Profile) error {
	for _, c := range p.Categories {
		if !news.IsCategory(c) {
			return fmt.Errorf("unknown category: %s", c)
		}
	}

	for i, topic := range p.SearchTopics {
		if topic == "" {
			return fmt.Errorf("search topic at index %d is empty", i)
		}
	}

	validFields := map[string]bool{
		"title":       true,
		"description": true,
		"url":         true,
		"source":      true,
	}
	for _, field := range p.RequiredFields {
		if !validFields[field] {
			return fmt.Errorf("invalid required field: %s", field)
		}
	}

	names := make(map[string]bool, len(p.Feeds))
	for i, f := range p.Feeds {
		requiredFeedFields := map[string]string{
			"feed name": f.Name,
			"feed URL":  f.URL,
		}
		for fieldName, fieldValue := range requiredFeedFields {
			if fieldValue == "" {
				return fmt.Errorf("%s is required at index %d", fieldName, i)
			}
		}

		if names[f.Name] {
			return fmt.Errorf("duplicate feed name: %s", f.Name)
		}
		names[f.Name] = true

		if f.MaxItems < 0 {
			return fmt.Errorf("max items must be non-negative for feed %s", f.Name)
		}

		for j, filter := range f.Filters {
			if !feed.FilterFields[filter.Field] {
				return fmt.Errorf("invalid filter field at index %d of feed %s: %s", j, f.Name, filter.Field)
			}
			if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
				return fmt.Errorf("filter at index %d of feed %s must have at least one include or exclude rule", j, f.Name)
			}
		}
	}

	return nil
}
