package content

import (
	"time"
)

// Content records as returned by the store. Field names and JSON tags follow
// the CMS wire shape so a raw page can be decoded straight into them.

type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Order       *int   `json:"order,omitempty"`
}

type Tag struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

type Author struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug,omitempty"`
	Avatar *Image `json:"avatar,omitempty"`
}

type Article struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Excerpt       string     `json:"excerpt"`
	Content       string     `json:"content,omitempty"`
	FeaturedImage *Image     `json:"featuredImage,omitempty"`
	Category      Category   `json:"category"`
	Tags          []Tag      `json:"tags,omitempty"`
	Author        *Author    `json:"author,omitempty"`
	ReadTime      *int       `json:"readTime,omitempty"`
	ViewCount     *int       `json:"viewCount,omitempty"`
	LikeCount     *int       `json:"likeCount,omitempty"`
	IsPublished   bool       `json:"isPublished"`
	IsPremium     bool       `json:"isPremium,omitempty"`
	IsNew         bool       `json:"isNew,omitempty"` // editorial flag, see IsNewAt
	PublishedAt   *time.Time `json:"publishedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"
)

// NewArticleWindow is how long after its effective publish date an article counts as new.
const NewArticleWindow = 7 * 24 * time.Hour

// EffectivePublishDate is the publish timestamp, or the creation timestamp for
// records that were never given one.
func (a Article) EffectivePublishDate() time.Time {
	if a.PublishedAt != nil && !a.PublishedAt.IsZero() {
		return *a.PublishedAt
	}
	return a.CreatedAt
}

// IsNewAt reports whether the article is within NewArticleWindow of now. The
// stored IsNew flag is not consulted.
func (a Article) IsNewAt(now time.Time) bool {
	return now.Sub(a.EffectivePublishDate()) <= NewArticleWindow
}

func (a Article) StatusAt(now time.Time) Status {
	if !a.IsPublished {
		return StatusDraft
	}
	if a.EffectivePublishDate().After(now) {
		return StatusScheduled
	}
	return StatusPublished
}

func (a Article) Views() int {
	if a.ViewCount == nil {
		return 0
	}
	return *a.ViewCount
}

func (a Article) Likes() int {
	if a.LikeCount == nil {
		return 0
	}
	return *a.LikeCount
}

// ReadMinutes returns the stored read time, estimating it from the body when absent.
func (a Article) ReadMinutes() int {
	if a.ReadTime != nil && *a.ReadTime > 0 {
		return *a.ReadTime
	}
	return EstimateReadTime(a.Content)
}

func (a Article) AuthorName() string {
	if a.Author == nil {
		return ""
	}
	return a.Author.Name
}

func (a Article) TagNames() []string {
	names := make([]string, 0, len(a.Tags))
	for _, tag := range a.Tags {
		names = append(names, tag.Name)
	}
	return names
}

// Search criteria

type DateRange string

const (
	DateRangeToday DateRange = "today"
	DateRangeWeek  DateRange = "week"
	DateRangeMonth DateRange = "month"
	DateRangeYear  DateRange = "year"
	DateRangeAll   DateRange = "all"
)

type SortField string

const (
	SortByPublishedAt SortField = "publishedAt"
	SortByViewCount   SortField = "viewCount"
	SortByLikeCount   SortField = "likeCount"
	SortByTitle       SortField = "title"
	SortByRelevance   SortField = "relevance" // in-memory only, ranks by ScoreQueryMatch
)

type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

type SearchCriteria struct {
	Query     string
	Category  string // category ID as understood by the store
	Tags      []string
	Author    string // author display name
	Premium   *bool
	New       *bool
	DateRange DateRange
	SortBy    SortField
	SortOrder SortOrder
	Page      int // 1-based, 0 means first page
	Limit     int // 0 means the composer default
}

// inMemory reports whether the criteria carry predicates the store query cannot express.
func (c SearchCriteria) inMemory() bool {
	return c.Author != "" || c.Premium != nil || c.New != nil || c.SortBy == SortByRelevance
}

// Results

type Pagination struct {
	Current int  `json:"current"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
	Limit   int  `json:"limit"`
}

type PageResult struct {
	Articles   []Article  `json:"articles"`
	Pagination Pagination `json:"pagination"`
	TotalCount int        `json:"totalCount"`
}

type ArticleDetail struct {
	Article         Article   `json:"article"`
	Status          Status    `json:"status"`
	RelatedArticles []Article `json:"relatedArticles"`
	PopularArticles []Article `json:"popularArticles"`
}

type CategoryPage struct {
	PageResult
	Category Category `json:"category"`
}

type TagPage struct {
	PageResult
	Tag Tag `json:"tag"`
}

// FeedArticle is the projection consumed by the RSS generator.
type FeedArticle struct {
	Slug         string
	Title        string
	Excerpt      string
	AuthorName   string
	CategoryName string
	PublishedAt  time.Time
	UpdatedAt    time.Time
}

// SitemapArticle is the projection consumed by the sitemap generator.
type SitemapArticle struct {
	Slug        string
	PublishedAt time.Time
	UpdatedAt   time.Time
}
