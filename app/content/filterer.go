package content

import (
	"slices"
	"strings"
	"time"
)

// Filter holds the in-memory predicates. Zero values disable a predicate.
type Filter struct {
	Category  string // category slug
	Tags      []string
	Author    string
	IsPremium *bool
	IsNew     *bool
	Query     string
}

func (f Filter) IsEmpty() bool {
	return f.Category == "" && len(f.Tags) == 0 && f.Author == "" &&
		f.IsPremium == nil && f.IsNew == nil && f.Query == ""
}

type Filterer struct {
	now func() time.Time
}

func NewFilterer(now func() time.Time) *Filterer {
	if now == nil {
		now = time.Now
	}
	return &Filterer{now: now}
}

// Run keeps the articles that pass every active predicate, in their original order.
func (f *Filterer) Run(articles []Article, filter Filter) []Article {
	if filter.IsEmpty() {
		return articles
	}

	now := f.now()
	query := strings.ToLower(filter.Query)

	filtered := make([]Article, 0, len(articles))
	for _, article := range articles {
		if f.matches(article, filter, query, now) {
			filtered = append(filtered, article)
		}
	}

	return filtered
}

func (f *Filterer) matches(article Article, filter Filter, query string, now time.Time) bool {
	if filter.Category != "" && article.Category.Slug != filter.Category {
		return false
	}

	if len(filter.Tags) > 0 && !slices.ContainsFunc(article.Tags, func(tag Tag) bool {
		return slices.Contains(filter.Tags, tag.Slug)
	}) {
		return false
	}

	if filter.Author != "" && article.AuthorName() != filter.Author {
		return false
	}

	if filter.IsPremium != nil && article.IsPremium != *filter.IsPremium {
		return false
	}

	if filter.IsNew != nil && article.IsNewAt(now) != *filter.IsNew {
		return false
	}

	if query != "" && !strings.Contains(strings.ToLower(f.searchTarget(article)), query) {
		return false
	}

	return true
}

func (f *Filterer) searchTarget(article Article) string {
	fields := []string{article.Title, article.Excerpt, article.Category.Name}
	fields = append(fields, article.TagNames()...)
	fields = append(fields, article.AuthorName())
	return strings.Join(fields, " ")
}
