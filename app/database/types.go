package database

import (
	"time"
)

type Source struct {
	ID            string
	Name          string // configuration name derived from the file name
	Type          string // feed or markdown
	Location      string // feed URL or directory
	ArticleCount  int
	LastFetchedAt *time.Time
	NextFetchAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Taxonomy struct {
	Name string
	Slug string
}

// ArticleInput is an imported article before it is written. Category, tags
// and author are upserted by slug.
type ArticleInput struct {
	SourceGUID    string
	SourceURL     string
	Slug          string
	Title         string
	Excerpt       string
	Content       string
	FeaturedImage string
	Category      Taxonomy
	Tags          []Taxonomy
	Author        *Taxonomy
	ReadTime      int
	IsPublished   bool
	IsPremium     bool
	PublishedAt   *time.Time
	UpdatedAt     *time.Time
}

type ArticleForExtraction struct {
	ID        string
	SourceURL string
}
