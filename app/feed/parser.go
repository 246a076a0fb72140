package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) (*Metadata, []Item, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title:       feed.Title,
		Link:        feed.Link,
		Description: feed.Description,
		Language:    feed.Language,
	}

	items := make([]Item, 0, len(feed.Items))
	for _, item := range feed.Items {
		items = append(items, p.normalizeItem(item))
	}

	return metadata, items, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Item {
	normalized := Item{
		Title:       strings.TrimSpace(item.Title),
		Link:        strings.TrimSpace(cmp.Or(item.Link, item.GUID)),
		Description: strings.TrimSpace(item.Description),
		Content:     item.Content,
		Author:      p.extractAuthor(item),
		Categories:  item.Categories,
	}

	if item.PublishedParsed != nil {
		normalized.PublishedAt = item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		normalized.PublishedAt = item.UpdatedParsed
	}

	if item.Image != nil {
		normalized.ImageURL = item.Image.URL
	} else {
		for _, enclosure := range item.Enclosures {
			if enclosure != nil && strings.HasPrefix(enclosure.Type, "image/") {
				normalized.ImageURL = enclosure.URL
				break
			}
		}
	}

	return normalized
}

func (p *Parser) extractAuthor(item *gofeed.Item) string {
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		return strings.TrimSpace(cmp.Or(item.Authors[0].Name, item.Authors[0].Email))
	}
	if item.Author != nil {
		return strings.TrimSpace(cmp.Or(item.Author.Name, item.Author.Email))
	}
	return ""
}
