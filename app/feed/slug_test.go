package feed

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Hello, World!", "hello-world"},
		{"  Crème brûlée recipes  ", "creme-brulee-recipes"},
		{"Go 1.22: range over ints", "go-1-22-range-over-ints"},
		{"Next.jsとmicroCMSで作るブログ", "next-js-microcms"},
		{"ＳＥＯ対策", "seo"},
		{"日本語だけのタイトル", ""},
		{"---already--slugged---", "already-slugged"},
	}

	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestSlugify_Truncates(t *testing.T) {
	slug := Slugify(strings.Repeat("word ", 40))

	if len(slug) > maxSlugLength || strings.HasSuffix(slug, "-") {
		t.Errorf("Expected truncated slug without trailing dash, got %q", slug)
	}
}

func TestSlugOr(t *testing.T) {
	a := SlugOr("日本語", "tag", "日本語")
	b := SlugOr("中文", "tag", "中文")

	if !strings.HasPrefix(a, "tag-") || len(a) != len("tag-")+10 {
		t.Errorf("Expected hashed fallback, got %q", a)
	}
	if a == b {
		t.Errorf("Expected different keys to give different slugs")
	}
	if SlugOr("日本語", "tag", "日本語") != a {
		t.Errorf("Expected fallback to be stable")
	}
}

func TestItemSlug(t *testing.T) {
	if got := ItemSlug(Item{Slug: "Custom Slug", Title: "Ignored"}); got != "custom-slug" {
		t.Errorf("Expected front matter slug, got %q", got)
	}
	if got := ItemSlug(Item{Title: "From the Title", GUID: "x"}); got != "from-the-title" {
		t.Errorf("Expected title slug, got %q", got)
	}
	if got := ItemSlug(Item{Title: "タイトル", GUID: "guid-1"}); !strings.HasPrefix(got, "post-") {
		t.Errorf("Expected hashed post slug, got %q", got)
	}
}
