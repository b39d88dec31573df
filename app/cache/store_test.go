package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/seo-media/app/content"
)

type memoryBackend struct {
	values  map[string]string
	deleted []string
	getErr  error
}

func (m *memoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryBackend) Set(_ context.Context, key string, value any, _ time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	m.values[key] = data
	return nil
}

func (m *memoryBackend) Delete(_ context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	delete(m.values, key)
	return nil
}

type countingStore struct {
	calls int
	err   error
}

func (s *countingStore) ListArticles(_ context.Context, q content.Query) (*content.RawPage[content.Article], error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &content.RawPage[content.Article]{
		Contents:   []content.Article{{ID: "a1", Title: "Cached"}},
		TotalCount: 1,
		Limit:      q.Limit,
	}, nil
}

func (s *countingStore) ListCategories(context.Context, content.Query) (*content.RawPage[content.Category], error) {
	s.calls++
	return &content.RawPage[content.Category]{Contents: []content.Category{{ID: "c1"}}, TotalCount: 1}, nil
}

func (s *countingStore) ListTags(context.Context, content.Query) (*content.RawPage[content.Tag], error) {
	s.calls++
	return &content.RawPage[content.Tag]{}, nil
}

func TestGenerateQueryKey(t *testing.T) {
	q1 := content.Query{Where: content.PublishedOnly(), Limit: 10}
	q2 := content.Query{Where: content.PublishedOnly(), Limit: 20}

	key1a := GenerateQueryKey("articles", q1)
	key1b := GenerateQueryKey("articles", q1)

	if key1a != key1b {
		t.Errorf("Expected same key for same query, got %s != %s", key1a, key1b)
	}
	if key1a == GenerateQueryKey("articles", q2) {
		t.Errorf("Expected different keys for different queries")
	}
	if key1a == GenerateQueryKey("tags", q1) {
		t.Errorf("Expected endpoint to be part of the key")
	}
	if !strings.HasPrefix(key1a, "query:articles:") {
		t.Errorf("Expected query:articles: prefix, got %s", key1a)
	}
}

func TestCachedStore_HitAfterMiss(t *testing.T) {
	store := &countingStore{}
	cached := NewCachedStore(store, &memoryBackend{values: map[string]string{}}, time.Minute)
	ctx := context.Background()
	q := content.Query{Limit: 5}

	first, err := cached.ListArticles(ctx, q)
	if err != nil {
		t.Fatal(err)
	}
	second, err := cached.ListArticles(ctx, q)
	if err != nil {
		t.Fatal(err)
	}

	if store.calls != 1 {
		t.Errorf("Expected one store call, got %d", store.calls)
	}
	if second.Contents[0].Title != first.Contents[0].Title || second.TotalCount != 1 {
		t.Errorf("Expected cached page to match, got %+v", second)
	}

	if _, err := cached.ListCategories(ctx, q); err != nil {
		t.Fatal(err)
	}
	if store.calls != 2 {
		t.Errorf("Expected categories to use their own key, got %d calls", store.calls)
	}
}

func TestCachedStore_BackendFailureFallsThrough(t *testing.T) {
	store := &countingStore{}
	cached := NewCachedStore(store, &memoryBackend{values: map[string]string{}, getErr: errors.New("connection refused")}, time.Minute)

	page, err := cached.ListArticles(context.Background(), content.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Contents) != 1 {
		t.Errorf("Expected store result, got %+v", page)
	}
}

func TestCachedStore_StoreErrorsAreNotCached(t *testing.T) {
	store := &countingStore{err: content.ErrUpstreamUnavailable}
	backend := &memoryBackend{values: map[string]string{}}
	cached := NewCachedStore(store, backend, time.Minute)

	_, err := cached.ListArticles(context.Background(), content.Query{})
	if !errors.Is(err, content.ErrUpstreamUnavailable) {
		t.Errorf("Expected upstream error, got %v", err)
	}
	if len(backend.values) != 0 {
		t.Errorf("Expected nothing cached, got %d entries", len(backend.values))
	}
}

func TestCachedStore_CorruptEntryIsReloaded(t *testing.T) {
	store := &countingStore{}
	q := content.Query{Limit: 1}
	backend := &memoryBackend{values: map[string]string{GenerateQueryKey("articles", q): "{not json"}}
	cached := NewCachedStore(store, backend, time.Minute)

	if _, err := cached.ListArticles(context.Background(), q); err != nil {
		t.Fatal(err)
	}
	if store.calls != 1 {
		t.Errorf("Expected reload from store, got %d calls", store.calls)
	}
}

func TestCachedStore_CorruptEntryIsDeleted(t *testing.T) {
	store := &countingStore{err: content.ErrUpstreamUnavailable}
	q := content.Query{Limit: 1}
	key := GenerateQueryKey("articles", q)
	backend := &memoryBackend{values: map[string]string{key: "{not json"}}
	cached := NewCachedStore(store, backend, time.Minute)

	if _, err := cached.ListArticles(context.Background(), q); !errors.Is(err, content.ErrUpstreamUnavailable) {
		t.Fatalf("Expected upstream error, got %v", err)
	}
	if len(backend.deleted) != 1 || backend.deleted[0] != key {
		t.Errorf("Expected %s to be deleted, got %v", key, backend.deleted)
	}
	if _, ok := backend.values[key]; ok {
		t.Errorf("Expected corrupt entry to be gone")
	}
}
