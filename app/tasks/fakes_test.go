package tasks

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/lysyi3m/seo-media/app/database"
	"github.com/lysyi3m/seo-media/app/feed"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeSourceRepo struct {
	mu      sync.Mutex
	sources map[string]*database.Source
}

func newFakeSourceRepo() *fakeSourceRepo {
	return &fakeSourceRepo{sources: make(map[string]*database.Source)}
}

func (r *fakeSourceRepo) GetSource(ctx context.Context, name string) (*database.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	source, ok := r.sources[name]
	if !ok {
		return nil, nil
	}
	copied := *source
	return &copied, nil
}

func (r *fakeSourceRepo) ListSources(ctx context.Context) ([]database.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []database.Source
	for _, source := range r.sources {
		out = append(out, *source)
	}
	return out, nil
}

func (r *fakeSourceRepo) UpsertSource(ctx context.Context, name, sourceType, location string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if source, ok := r.sources[name]; ok {
		source.Type, source.Location = sourceType, location
		return source.ID, nil
	}
	r.sources[name] = &database.Source{ID: "src-" + name, Name: name, Type: sourceType, Location: location}
	return "src-" + name, nil
}

func (r *fakeSourceRepo) UpdateFetchTimes(ctx context.Context, sourceID string, fetchedAt, nextFetch time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, source := range r.sources {
		if source.ID == sourceID {
			source.LastFetchedAt = &fetchedAt
			source.NextFetchAt = &nextFetch
		}
	}
	return nil
}

type storedArticle struct {
	id        string
	input     database.ArticleInput
	extracted string
	attempted bool
}

type fakeArticleRepo struct {
	mu       sync.Mutex
	articles map[string]*storedArticle // by source id + guid
	order    []string
}

func newFakeArticleRepo() *fakeArticleRepo {
	return &fakeArticleRepo{articles: make(map[string]*storedArticle)}
}

func (r *fakeArticleRepo) HasArticle(ctx context.Context, sourceID, guid string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.articles[sourceID+"|"+guid]
	return ok, nil
}

func (r *fakeArticleRepo) UpsertArticle(ctx context.Context, sourceID string, input database.ArticleInput) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sourceID + "|" + input.SourceGUID
	if existing, ok := r.articles[key]; ok {
		existing.input = input
		return existing.id, false, nil
	}

	id := "art-" + input.SourceGUID
	r.articles[key] = &storedArticle{id: id, input: input}
	r.order = append(r.order, key)
	return id, true, nil
}

func (r *fakeArticleRepo) GetArticlesForExtraction(ctx context.Context, sourceID string, limit int) ([]database.ArticleForExtraction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []database.ArticleForExtraction
	for _, key := range r.order {
		article := r.articles[key]
		if article.input.SourceURL == "" || article.attempted || article.extracted != "" {
			continue
		}
		out = append(out, database.ArticleForExtraction{ID: article.id, SourceURL: article.input.SourceURL})
	}
	return out, nil
}

func (r *fakeArticleRepo) UpdateExtractedContent(ctx context.Context, articleID, content, excerpt string, readTime int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, article := range r.articles {
		if article.id == articleID {
			article.extracted = content
			article.input.Excerpt = excerpt
			article.input.ReadTime = readTime
		}
	}
	return nil
}

func (r *fakeArticleRepo) MarkExtractionAttempted(ctx context.Context, articleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, article := range r.articles {
		if article.id == articleID {
			article.attempted = true
		}
	}
	return nil
}

func (r *fakeArticleRepo) get(sourceID, guid string) *storedArticle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.articles[sourceID+"|"+guid]
}

func (r *fakeArticleRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.articles)
}

type fakeCache struct {
	mu            sync.Mutex
	invalidations int
}

func (c *fakeCache) InvalidateQueries(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidations++
	return nil
}

func (c *fakeCache) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidations
}

func newTestDeps(client *http.Client) (*Dependencies, *fakeSourceRepo, *fakeArticleRepo, *fakeCache) {
	sources := newFakeSourceRepo()
	articles := newFakeArticleRepo()
	cache := &fakeCache{}

	return &Dependencies{
		SourceRepo:  sources,
		ArticleRepo: articles,
		HTTPClient:  client,
		Parser:      feed.NewParser(),
		Markdown:    feed.NewMarkdownReader(),
		Filterer:    feed.NewFilterer(),
		Extractor:   feed.NewContentExtractor(),
		Cache:       cache,
		UserAgent:   "SEO-Media-Test/1.0",
		Now:         func() time.Time { return testNow },
	}, sources, articles, cache
}

var (
	_ database.SourceRepository  = (*fakeSourceRepo)(nil)
	_ database.ArticleRepository = (*fakeArticleRepo)(nil)
	_ CacheInvalidator           = (*fakeCache)(nil)
)
