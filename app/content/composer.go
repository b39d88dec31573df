package content

import (
	"cmp"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ArticleListFields is the projection used for list views; bodies are left out.
var ArticleListFields = []string{
	"id", "title", "slug", "excerpt", "publishedAt", "createdAt", "updatedAt",
	"readTime", "viewCount", "likeCount", "category", "tags", "featuredImage",
	"author", "isPublished", "isPremium", "isNew",
}

// PublishedOnly restricts a query to published records.
func PublishedOnly() Condition {
	return Where("isPublished", OpEquals, "true")
}

type Composer struct {
	now          func() time.Time
	defaultLimit int
}

func NewComposer(now func() time.Time, defaultLimit int) *Composer {
	if now == nil {
		now = time.Now
	}
	if defaultLimit <= 0 {
		defaultLimit = DefaultPageSize
	}
	return &Composer{now: now, defaultLimit: defaultLimit}
}

// ComposeQuery translates search criteria into a store query.
func (c *Composer) ComposeQuery(criteria SearchCriteria) (Query, error) {
	if err := c.validate(criteria); err != nil {
		return Query{}, err
	}

	page := cmp.Or(criteria.Page, 1)
	limit := cmp.Or(criteria.Limit, c.defaultLimit)

	terms := []Condition{PublishedOnly()}

	if criteria.Category != "" {
		terms = append(terms, Where("category", OpEquals, criteria.Category))
	}

	if len(criteria.Tags) > 0 {
		tagTerms := make([]Condition, 0, len(criteria.Tags))
		for _, tag := range criteria.Tags {
			tagTerms = append(tagTerms, Where("tags", OpContains, tag))
		}
		terms = append(terms, Or(tagTerms...))
	}

	if lowerBound, ok := c.dateLowerBound(criteria.DateRange); ok {
		terms = append(terms, Where("publishedAt", OpGreaterThan, FormatTimeValue(lowerBound)))
	}

	return Query{
		Where:  And(terms...),
		Search: strings.TrimSpace(criteria.Query),
		Orders: []Order{c.order(criteria)},
		Offset: (page - 1) * limit,
		Limit:  limit,
		Fields: ArticleListFields,
	}, nil
}

// DecomposeResult pairs a raw store page with pagination computed from the
// window that was requested.
func (c *Composer) DecomposeResult(raw *RawPage[Article], query Query) (*PageResult, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: raw page is nil", ErrInvalidArgument)
	}

	pagination, err := Paginate(query.Offset, query.Limit, raw.TotalCount)
	if err != nil {
		return nil, err
	}

	articles := raw.Contents
	if articles == nil {
		articles = []Article{}
	}

	return &PageResult{
		Articles:   articles,
		Pagination: pagination,
		TotalCount: raw.TotalCount,
	}, nil
}

func (c *Composer) validate(criteria SearchCriteria) error {
	switch criteria.DateRange {
	case "", DateRangeToday, DateRangeWeek, DateRangeMonth, DateRangeYear, DateRangeAll:
	default:
		return fmt.Errorf("%w: unknown date range %q", ErrInvalidArgument, criteria.DateRange)
	}

	switch criteria.SortBy {
	case "", SortByPublishedAt, SortByViewCount, SortByLikeCount, SortByTitle, SortByRelevance:
	default:
		return fmt.Errorf("%w: unknown sort field %q", ErrInvalidArgument, criteria.SortBy)
	}

	switch criteria.SortOrder {
	case "", SortOrderAsc, SortOrderDesc:
	default:
		return fmt.Errorf("%w: unknown sort order %q", ErrInvalidArgument, criteria.SortOrder)
	}

	if criteria.Page < 0 {
		return fmt.Errorf("%w: page must be positive, got %d", ErrInvalidArgument, criteria.Page)
	}
	if criteria.Limit < 0 || criteria.Limit > MaxPageSize {
		return fmt.Errorf("%w: limit must be between 1 and %d, got %d", ErrInvalidArgument, MaxPageSize, criteria.Limit)
	}

	return nil
}

func (c *Composer) order(criteria SearchCriteria) Order {
	if criteria.SortBy == "" || criteria.SortBy == SortByRelevance {
		return Order{Field: string(SortByPublishedAt), Desc: true}
	}
	return Order{Field: string(criteria.SortBy), Desc: criteria.SortOrder != SortOrderAsc}
}

// dateLowerBound resolves a date range against a fresh clock reading.
func (c *Composer) dateLowerBound(dateRange DateRange) (time.Time, bool) {
	now := c.now()

	switch dateRange {
	case DateRangeToday:
		year, month, day := now.Date()
		return time.Date(year, month, day, 0, 0, 0, 0, now.Location()), true
	case DateRangeWeek:
		return now.AddDate(0, 0, -7), true
	case DateRangeMonth:
		return now.AddDate(0, -1, 0), true
	case DateRangeYear:
		return now.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}
