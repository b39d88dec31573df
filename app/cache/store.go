package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lysyi3m/seo-media/app/content"
	"github.com/lysyi3m/seo-media/app/metrics"
)

type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

var _ content.Store = (*CachedStore)(nil)

// CachedStore serves repeated store queries from the cache. Cache failures
// are logged and fall through to the underlying store.
type CachedStore struct {
	store   content.Store
	backend Backend
	ttl     time.Duration
}

func NewCachedStore(store content.Store, backend Backend, ttl time.Duration) *CachedStore {
	return &CachedStore{store: store, backend: backend, ttl: ttl}
}

func (s *CachedStore) ListArticles(ctx context.Context, q content.Query) (*content.RawPage[content.Article], error) {
	return cached(ctx, s, "articles", q, s.store.ListArticles)
}

func (s *CachedStore) ListCategories(ctx context.Context, q content.Query) (*content.RawPage[content.Category], error) {
	return cached(ctx, s, "categories", q, s.store.ListCategories)
}

func (s *CachedStore) ListTags(ctx context.Context, q content.Query) (*content.RawPage[content.Tag], error) {
	return cached(ctx, s, "tags", q, s.store.ListTags)
}

func cached[T any](ctx context.Context, s *CachedStore, endpoint string, q content.Query,
	load func(context.Context, content.Query) (*content.RawPage[T], error)) (*content.RawPage[T], error) {
	key := GenerateQueryKey(endpoint, q)

	data, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		slog.Warn("Cache lookup failed", "key", key, "error", err)
	}
	if ok {
		var page content.RawPage[T]
		if err := json.Unmarshal([]byte(data), &page); err == nil {
			metrics.ObserveCacheLookup(endpoint, true)
			return &page, nil
		}
		slog.Warn("Discarding undecodable cache entry", "key", key)
		if err := s.backend.Delete(ctx, key); err != nil {
			slog.Warn("Cache delete failed", "key", key, "error", err)
		}
	}
	metrics.ObserveCacheLookup(endpoint, false)

	page, err := load(ctx, q)
	if err != nil {
		return nil, err
	}

	if err := s.backend.Set(ctx, key, page, s.ttl); err != nil {
		slog.Warn("Cache store failed", "key", key, "error", err)
	}

	return page, nil
}
