package cms

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lysyi3m/seo-media/app/content"
)

const articlesResponse = `{
  "contents": [
    {
      "id": "a1",
      "title": "TypeScript Basics",
      "slug": "typescript-basics",
      "excerpt": "Intro",
      "category": {"id": "dev", "name": "Dev", "slug": "dev"},
      "tags": [{"id": "t1", "name": "typescript", "slug": "typescript"}],
      "author": {"id": "u1", "name": "Sato"},
      "viewCount": 120,
      "isPublished": true,
      "publishedAt": "2024-03-01T00:00:00.000Z",
      "createdAt": "2024-02-28T10:00:00.000Z",
      "updatedAt": "2024-03-02T10:00:00.000Z"
    }
  ],
  "totalCount": 11,
  "offset": 10,
  "limit": 10
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{APIKey: "secret", BaseURL: server.URL, UserAgent: "seo-media-test"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func TestClient_ListArticles(t *testing.T) {
	var gotPath, gotKey, gotFilters, gotOrders, gotOffset, gotUA string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-MICROCMS-API-KEY")
		gotUA = r.Header.Get("User-Agent")
		gotFilters = r.URL.Query().Get("filters")
		gotOrders = r.URL.Query().Get("orders")
		gotOffset = r.URL.Query().Get("offset")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(articlesResponse))
	})

	query := content.Query{
		Where:  content.And(content.PublishedOnly(), content.Where("category", content.OpEquals, "dev")),
		Orders: []content.Order{{Field: "publishedAt", Desc: true}},
		Offset: 10,
		Limit:  10,
	}

	page, err := client.ListArticles(context.Background(), query)
	if err != nil {
		t.Fatal(err)
	}

	if gotPath != "/articles" {
		t.Errorf("Expected /articles, got %s", gotPath)
	}
	if gotKey != "secret" {
		t.Errorf("Expected API key header, got %q", gotKey)
	}
	if gotUA != "seo-media-test" {
		t.Errorf("Expected user agent, got %q", gotUA)
	}
	if gotFilters != "isPublished[equals]true[and]category[equals]dev" {
		t.Errorf("Unexpected filters: %s", gotFilters)
	}
	if gotOrders != "-publishedAt" || gotOffset != "10" {
		t.Errorf("Unexpected orders/offset: %s %s", gotOrders, gotOffset)
	}

	if page.TotalCount != 11 || len(page.Contents) != 1 {
		t.Fatalf("Unexpected page: %+v", page)
	}
	article := page.Contents[0]
	if article.Category.ID != "dev" || article.AuthorName() != "Sato" || article.Views() != 120 {
		t.Errorf("Unexpected article: %+v", article)
	}
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !article.EffectivePublishDate().Equal(want) {
		t.Errorf("Expected publish date %v, got %v", want, article.EffectivePublishDate())
	}
}

func TestClient_ListCategoriesAndTags(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/categories":
			w.Write([]byte(`{"contents":[{"id":"c1","name":"SEO","slug":"seo","order":2}],"totalCount":1,"offset":0,"limit":100}`))
		case "/tags":
			w.Write([]byte(`{"contents":[{"id":"t1","name":"Go","slug":"go"}],"totalCount":1,"offset":0,"limit":100}`))
		default:
			http.NotFound(w, r)
		}
	})

	categories, err := client.ListCategories(context.Background(), content.Query{Limit: 100})
	if err != nil {
		t.Fatal(err)
	}
	if categories.Contents[0].Order == nil || *categories.Contents[0].Order != 2 {
		t.Errorf("Expected category order 2, got %+v", categories.Contents[0])
	}

	tags, err := client.ListTags(context.Background(), content.Query{Limit: 100})
	if err != nil {
		t.Fatal(err)
	}
	if tags.Contents[0].Slug != "go" {
		t.Errorf("Expected tag slug go, got %s", tags.Contents[0].Slug)
	}
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, content.ErrInvalidArgument},
		{http.StatusNotFound, content.ErrNotFound},
		{http.StatusTooManyRequests, content.ErrUpstreamUnavailable},
		{http.StatusInternalServerError, content.ErrUpstreamUnavailable},
		{http.StatusBadGateway, content.ErrUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"message":"nope"}`, tt.status)
			})

			_, err := client.ListArticles(context.Background(), content.Query{})
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestClient_UnreachableIsUpstreamUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := NewClient(Config{APIKey: "k", BaseURL: url, Timeout: time.Second}, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.ListTags(context.Background(), content.Query{})
	if !errors.Is(err, content.ErrUpstreamUnavailable) {
		t.Errorf("Expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestClient_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"contents": [`))
	})

	if _, err := client.ListArticles(context.Background(), content.Query{}); err == nil {
		t.Errorf("Expected decode error")
	}
}

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient(Config{ServiceDomain: "demo"}, nil); !errors.Is(err, content.ErrInvalidArgument) {
		t.Errorf("Expected missing API key to be rejected, got %v", err)
	}
	if _, err := NewClient(Config{APIKey: "k"}, nil); !errors.Is(err, content.ErrInvalidArgument) {
		t.Errorf("Expected missing domain to be rejected, got %v", err)
	}

	client, err := NewClient(Config{ServiceDomain: "demo", APIKey: "k"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if client.baseURL != "https://demo.microcms.io/api/v1" {
		t.Errorf("Unexpected base URL: %s", client.baseURL)
	}
}
