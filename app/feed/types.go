package feed

import (
	"time"
)

// Import types

type SourceType string

const (
	SourceTypeFeed     SourceType = "feed"
	SourceTypeMarkdown SourceType = "markdown"
)

// Metadata describes the channel an import batch came from.
type Metadata struct {
	Title       string
	Link        string
	Description string
	Language    string
}

type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string
	Content     string
	PublishedAt time.Time
	UpdatedAt   *time.Time
	Authors     []string // "name" or "email (name)"
	Categories  []string
	ImageURL    string

	// Set by markdown front matter only.
	Slug     string
	Excerpt  string
	Category string
	Premium  bool
	Draft    bool

	IsFiltered   bool
	FilterReason string
}

// Source configuration types

type Source struct {
	Name     string       // Derived from filename (without .yml extension)
	Type     SourceType   `yaml:"type"`
	URL      string       `yaml:"url"`
	Path     string       `yaml:"path"`
	Category string       `yaml:"category"` // fallback category name for items without one
	Author   string       `yaml:"author"`
	Settings SourceConfig `yaml:"settings"`
	Filters  []Filter     `yaml:"filters"`
}

type SourceConfig struct {
	Enabled         bool  `yaml:"enabled"`
	RefreshInterval int   `yaml:"refresh_interval"` // seconds
	MaxItems        int   `yaml:"max_items"`
	Timeout         int   `yaml:"timeout"`         // seconds
	ExtractContent  bool  `yaml:"extract_content"` // fetch linked pages through readability
	Premium         bool  `yaml:"premium"`
	Publish         *bool `yaml:"publish"` // nil means publish
}

type Filter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// Location is where the source is read from: a feed URL or a posts directory.
func (s *Source) Location() string {
	if s.Type == SourceTypeMarkdown {
		return s.Path
	}
	return s.URL
}

func (s *Source) Publishes() bool {
	return s.Settings.Publish == nil || *s.Settings.Publish
}

func (s *Source) RefreshEvery() time.Duration {
	return time.Duration(s.Settings.RefreshInterval) * time.Second
}
