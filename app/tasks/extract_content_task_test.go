package tasks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lysyi3m/seo-media/app/database"
)

const extractPage = `<!DOCTYPE html>
<html>
<head><title>Container queries</title></head>
<body>
	<nav>Home | Archive</nav>
	<article>
		<h1>Container queries</h1>
		<p>Container queries let a component adapt to the size of its parent instead of the viewport, which makes design systems far easier to reuse.</p>
		<p>Declare a containment context with container-type and then write @container rules that match on the inline size of that context.</p>
		<p>Browser support is now broad enough that most projects can adopt them without a polyfill or fallback layout.</p>
	</article>
	<footer>Copyright Frontend Weekly</footer>
</body>
</html>`

func TestExtractContentTask(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(extractPage))
		case "/json":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	deps, sources, articles, cache := newTestDeps(server.Client())
	source := feedSource(server.URL)
	source.Settings.ExtractContent = true

	sourceID, _ := sources.UpsertSource(context.Background(), source.Name, "feed", source.URL)
	for _, guid := range []string{"ok", "json", "missing"} {
		articles.UpsertArticle(context.Background(), sourceID, database.ArticleInput{
			SourceGUID: guid,
			SourceURL:  server.URL + "/" + guid,
			Excerpt:    "summary",
		})
	}

	if err := NewExtractContentTask(source, deps).Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	ok := articles.get(sourceID, "ok")
	if !strings.Contains(ok.extracted, "Container queries let a component adapt") {
		t.Errorf("Expected extracted body, got %q", ok.extracted)
	}
	if !strings.Contains(ok.input.Excerpt, "Container queries let a component") {
		t.Errorf("Expected excerpt rebuilt from extracted body, got %q", ok.input.Excerpt)
	}
	if ok.attempted {
		t.Errorf("Expected successful extraction not to be marked as failed")
	}

	for _, guid := range []string{"json", "missing"} {
		if !articles.get(sourceID, guid).attempted {
			t.Errorf("Expected %s to be marked as attempted", guid)
		}
	}

	if cache.calls() != 1 {
		t.Errorf("Expected one cache invalidation, got %d", cache.calls())
	}
}

func TestExtractContentTask_Disabled(t *testing.T) {
	deps, sources, _, _ := newTestDeps(http.DefaultClient)
	source := feedSource("https://example.com/feed")

	if err := NewExtractContentTask(source, deps).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	if list, _ := sources.ListSources(context.Background()); len(list) != 0 {
		t.Errorf("Expected disabled extraction not to touch the database")
	}
}

func TestExtractContentTask_SourceNotImported(t *testing.T) {
	deps, _, _, cache := newTestDeps(http.DefaultClient)
	source := feedSource("https://example.com/feed")
	source.Settings.ExtractContent = true

	if err := NewExtractContentTask(source, deps).Execute(context.Background()); err != nil {
		t.Errorf("Expected unknown source to be skipped, got %v", err)
	}
	if cache.calls() != 0 {
		t.Errorf("Expected no invalidation")
	}
}
