package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// Parser turns RSS, Atom and JSON Feed documents into import items.
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
		if item == nil {
			continue
		}
		normalized := p.normalizeItem(item)
		if normalized.GUID == "" || normalized.Title == "" {
			continue
		}
		items = append(items, normalized)
	}

	return metadata, items, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Item {
	normalized := Item{
		GUID:        strings.TrimSpace(cmp.Or(item.GUID, item.Link)),
		Title:       strings.TrimSpace(item.Title),
		Link:        item.Link,
		Description: item.Description,
		Content:     item.Content,
		Authors:     p.extractAuthors(item),
		Categories:  item.Categories,
	}

	switch {
	case item.PublishedParsed != nil:
		normalized.PublishedAt = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		normalized.PublishedAt = *item.UpdatedParsed
	}

	if item.UpdatedParsed != nil {
		normalized.UpdatedAt = item.UpdatedParsed
	}

	if item.Image != nil && item.Image.URL != "" {
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

func (p *Parser) extractAuthors(item *gofeed.Item) []string {
	var authors []string

	people := item.Authors
	if len(people) == 0 && item.Author != nil {
		people = []*gofeed.Person{item.Author}
	}

	for _, person := range people {
		if person == nil {
			continue
		}
		if name := cmp.Or(strings.TrimSpace(person.Name), strings.TrimSpace(person.Email)); name != "" {
			authors = append(authors, name)
		}
	}

	return authors
}
