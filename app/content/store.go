package content

import "context"

// RawPage is one page of records as returned by a store.
type RawPage[T any] struct {
	Contents   []T `json:"contents"`
	TotalCount int `json:"totalCount"`
	Offset     int `json:"offset"`
	Limit      int `json:"limit"`
}

// Store is the content backend. Implementations evaluate the query's filter
// tree, full-text term, ordering and window, and report the total number of
// matches independent of the window.
type Store interface {
	ListArticles(ctx context.Context, query Query) (*RawPage[Article], error)
	ListCategories(ctx context.Context, query Query) (*RawPage[Category], error)
	ListTags(ctx context.Context, query Query) (*RawPage[Tag], error)
}
