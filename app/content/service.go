package content

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const (
	// CandidatePoolSize is the batch size for in-memory filtering and the
	// candidate bound for related-article ranking.
	CandidatePoolSize = 100
	RelatedLimit      = 3
	PopularLimit      = 3
	SitemapLimit      = 1000
	taxonomyLimit     = 100
)

type ServiceOptions struct {
	Now          func() time.Time
	DefaultLimit int
	Language     language.Tag
}

type Service struct {
	store    Store
	now      func() time.Time
	composer *Composer
	filterer *Filterer
	sorter   *Sorter
}

func NewService(store Store, opts ServiceOptions) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		store:    store,
		now:      now,
		composer: NewComposer(now, opts.DefaultLimit),
		filterer: NewFilterer(now),
		sorter:   NewSorter(opts.Language),
	}
}

// Search runs criteria against the store. Predicates the store query cannot
// express are evaluated in memory over every matching record.
func (s *Service) Search(ctx context.Context, criteria SearchCriteria) (*PageResult, error) {
	query, err := s.composer.ComposeQuery(criteria)
	if err != nil {
		return nil, err
	}

	if criteria.inMemory() {
		return s.searchInMemory(ctx, criteria, query)
	}

	raw, err := s.store.ListArticles(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	return s.composer.DecomposeResult(raw, query)
}

func (s *Service) searchInMemory(ctx context.Context, criteria SearchCriteria, query Query) (*PageResult, error) {
	records, err := s.collectCandidates(ctx, query)
	if err != nil {
		return nil, err
	}

	candidates := s.filterer.Run(records, Filter{
		Author:    criteria.Author,
		IsPremium: criteria.Premium,
		IsNew:     criteria.New,
	})

	var ranked []Article
	if criteria.SortBy == SortByRelevance {
		ranked = RankByQuery(candidates, criteria.Query)
	} else {
		field := cmp.Or(criteria.SortBy, SortByPublishedAt)
		order := cmp.Or(criteria.SortOrder, SortOrderDesc)
		ranked = s.sorter.Run(candidates, field, order)
	}

	pagination, err := Paginate(query.Offset, query.Limit, len(ranked))
	if err != nil {
		return nil, err
	}

	start := min(query.Offset, len(ranked))
	end := min(query.Offset+query.Limit, len(ranked))
	window := make([]Article, end-start)
	copy(window, ranked[start:end])

	return &PageResult{
		Articles:   window,
		Pagination: pagination,
		TotalCount: len(ranked),
	}, nil
}

// collectCandidates pages through every record matching the store query in
// batches of CandidatePoolSize so in-memory predicates see the whole result.
func (s *Service) collectCandidates(ctx context.Context, query Query) ([]Article, error) {
	batch := query
	batch.Offset = 0
	batch.Limit = CandidatePoolSize

	var records []Article
	for {
		raw, err := s.store.ListArticles(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("failed to list candidate articles: %w", err)
		}

		records = append(records, raw.Contents...)
		if len(raw.Contents) == 0 || len(records) >= raw.TotalCount {
			break
		}
		batch.Offset += len(raw.Contents)
	}

	slog.Debug("Collected candidate articles", "count", len(records), "batch_size", CandidatePoolSize)
	return records, nil
}

// GetArticle loads a published article by slug together with its related and
// popular neighbours.
func (s *Service) GetArticle(ctx context.Context, slug string) (*ArticleDetail, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, fmt.Errorf("%w: slug is required", ErrInvalidArgument)
	}

	raw, err := s.store.ListArticles(ctx, Query{
		Where: And(PublishedOnly(), Where("slug", OpEquals, slug)),
		Limit: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get article %q: %w", slug, err)
	}
	if len(raw.Contents) == 0 {
		return nil, fmt.Errorf("article %q: %w", slug, ErrNotFound)
	}

	article := raw.Contents[0]

	related, err := s.RelatedArticles(ctx, article, RelatedLimit)
	if err != nil {
		return nil, err
	}

	popular, err := s.PopularArticles(ctx, PopularLimit, article.ID)
	if err != nil {
		return nil, err
	}

	return &ArticleDetail{
		Article:         article,
		Status:          article.StatusAt(s.now()),
		RelatedArticles: related,
		PopularArticles: popular,
	}, nil
}

// RelatedArticles ranks published articles other than base by relatedness.
func (s *Service) RelatedArticles(ctx context.Context, base Article, limit int) ([]Article, error) {
	raw, err := s.store.ListArticles(ctx, Query{
		Where:  And(PublishedOnly(), Where("id", OpNotEquals, base.ID)),
		Orders: []Order{{Field: string(SortByPublishedAt), Desc: true}},
		Limit:  CandidatePoolSize,
		Fields: ArticleListFields,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list related candidates: %w", err)
	}

	return RankRelated(base, raw.Contents, limit), nil
}

// PopularArticles returns the most viewed published articles.
func (s *Service) PopularArticles(ctx context.Context, limit int, excludeIDs ...string) ([]Article, error) {
	terms := []Condition{PublishedOnly()}
	for _, id := range excludeIDs {
		if id != "" {
			terms = append(terms, Where("id", OpNotEquals, id))
		}
	}

	return s.listArticles(ctx, Query{
		Where:  And(terms...),
		Orders: []Order{{Field: string(SortByViewCount), Desc: true}},
		Limit:  limit,
		Fields: ArticleListFields,
	})
}

func (s *Service) LatestArticles(ctx context.Context, limit int) ([]Article, error) {
	return s.listArticles(ctx, Query{
		Where:  PublishedOnly(),
		Orders: []Order{{Field: string(SortByPublishedAt), Desc: true}},
		Limit:  limit,
		Fields: ArticleListFields,
	})
}

func (s *Service) ArticlesByCategory(ctx context.Context, slug string, page, limit int) (*CategoryPage, error) {
	category, err := s.ResolveCategory(ctx, slug)
	if err != nil {
		return nil, err
	}

	result, err := s.Search(ctx, SearchCriteria{Category: category.ID, Page: page, Limit: limit})
	if err != nil {
		return nil, err
	}

	return &CategoryPage{PageResult: *result, Category: *category}, nil
}

func (s *Service) ArticlesByTag(ctx context.Context, slug string, page, limit int) (*TagPage, error) {
	tag, err := s.ResolveTag(ctx, slug)
	if err != nil {
		return nil, err
	}

	result, err := s.Search(ctx, SearchCriteria{Tags: []string{tag.ID}, Page: page, Limit: limit})
	if err != nil {
		return nil, err
	}

	return &TagPage{PageResult: *result, Tag: *tag}, nil
}

func (s *Service) ResolveCategory(ctx context.Context, slug string) (*Category, error) {
	raw, err := s.store.ListCategories(ctx, Query{Where: Where("slug", OpEquals, slug), Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category %q: %w", slug, err)
	}
	if len(raw.Contents) == 0 {
		return nil, fmt.Errorf("category %q: %w", slug, ErrNotFound)
	}
	return &raw.Contents[0], nil
}

func (s *Service) ResolveTag(ctx context.Context, slug string) (*Tag, error) {
	raw, err := s.store.ListTags(ctx, Query{Where: Where("slug", OpEquals, slug), Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tag %q: %w", slug, err)
	}
	if len(raw.Contents) == 0 {
		return nil, fmt.Errorf("tag %q: %w", slug, ErrNotFound)
	}
	return &raw.Contents[0], nil
}

// Categories lists categories in their editorial order.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	raw, err := s.store.ListCategories(ctx, Query{Orders: []Order{{Field: "order"}}, Limit: taxonomyLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return nonNil(raw.Contents), nil
}

func (s *Service) Tags(ctx context.Context) ([]Tag, error) {
	raw, err := s.store.ListTags(ctx, Query{Orders: []Order{{Field: "name"}}, Limit: taxonomyLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return nonNil(raw.Contents), nil
}

// FeedArticles projects the newest published articles for syndication.
func (s *Service) FeedArticles(ctx context.Context, limit int) ([]FeedArticle, error) {
	articles, err := s.listArticles(ctx, Query{
		Where:  PublishedOnly(),
		Orders: []Order{{Field: string(SortByPublishedAt), Desc: true}},
		Limit:  limit,
		Fields: []string{"slug", "title", "excerpt", "publishedAt", "createdAt", "updatedAt", "author", "category"},
	})
	if err != nil {
		return nil, err
	}

	items := make([]FeedArticle, 0, len(articles))
	for _, article := range articles {
		items = append(items, FeedArticle{
			Slug:         article.Slug,
			Title:        article.Title,
			Excerpt:      article.Excerpt,
			AuthorName:   article.AuthorName(),
			CategoryName: article.Category.Name,
			PublishedAt:  article.EffectivePublishDate(),
			UpdatedAt:    article.UpdatedAt,
		})
	}
	return items, nil
}

func (s *Service) SitemapArticles(ctx context.Context) ([]SitemapArticle, error) {
	articles, err := s.listArticles(ctx, Query{
		Where:  PublishedOnly(),
		Orders: []Order{{Field: string(SortByPublishedAt), Desc: true}},
		Limit:  SitemapLimit,
		Fields: []string{"slug", "publishedAt", "createdAt", "updatedAt"},
	})
	if err != nil {
		return nil, err
	}

	entries := make([]SitemapArticle, 0, len(articles))
	for _, article := range articles {
		entries = append(entries, SitemapArticle{
			Slug:        article.Slug,
			PublishedAt: article.EffectivePublishDate(),
			UpdatedAt:   article.UpdatedAt,
		})
	}
	return entries, nil
}

// Stats aggregates counters over the published catalogue. Bodies are loaded
// for the character count.
func (s *Service) Stats(ctx context.Context) (ArticleStats, error) {
	articles, err := s.listArticles(ctx, Query{
		Where:  PublishedOnly(),
		Orders: []Order{{Field: string(SortByPublishedAt), Desc: true}},
		Limit:  SitemapLimit,
		Fields: append(slices.Clone(ArticleListFields), "content"),
	})
	if err != nil {
		return ArticleStats{}, err
	}
	return Stats(articles), nil
}

func (s *Service) listArticles(ctx context.Context, query Query) ([]Article, error) {
	raw, err := s.store.ListArticles(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return nonNil(raw.Contents), nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
