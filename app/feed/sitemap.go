package feed

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lysyi3m/seo-media/app/content"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type ChangeFreq string

const (
	ChangeDaily   ChangeFreq = "daily"
	ChangeWeekly  ChangeFreq = "weekly"
	ChangeMonthly ChangeFreq = "monthly"
)

type SitemapEntry struct {
	Loc        string
	LastMod    time.Time
	ChangeFreq ChangeFreq
	Priority   float64
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Sitemap lists the public pages of the site.
type Sitemap struct {
	baseURL string
	now     func() time.Time
}

func NewSitemap(baseURL string, now func() time.Time) *Sitemap {
	if now == nil {
		now = time.Now
	}
	return &Sitemap{baseURL: strings.TrimRight(baseURL, "/"), now: now}
}

// StaticEntries returns the fixed pages. With minimal set, only the home and article index pages.
func (s *Sitemap) StaticEntries(minimal bool) []SitemapEntry {
	now := s.now()
	entries := []SitemapEntry{
		{Loc: s.baseURL, LastMod: now, ChangeFreq: ChangeDaily, Priority: 1.0},
		{Loc: s.baseURL + "/articles", LastMod: now, ChangeFreq: ChangeDaily, Priority: 0.9},
	}
	if minimal {
		return entries
	}

	return append(entries,
		SitemapEntry{Loc: s.baseURL + "/search", LastMod: now, ChangeFreq: ChangeWeekly, Priority: 0.8},
		SitemapEntry{Loc: s.baseURL + "/about", LastMod: now, ChangeFreq: ChangeMonthly, Priority: 0.7},
	)
}

func (s *Sitemap) Entries(articles []content.SitemapArticle, categories []content.Category, tags []content.Tag) []SitemapEntry {
	now := s.now()
	entries := s.StaticEntries(false)

	for _, article := range articles {
		lastMod := article.UpdatedAt
		if lastMod.IsZero() {
			lastMod = article.PublishedAt
		}
		entries = append(entries, SitemapEntry{
			Loc:        s.baseURL + "/articles/" + article.Slug,
			LastMod:    lastMod,
			ChangeFreq: ChangeWeekly,
			Priority:   0.8,
		})
	}

	for _, category := range categories {
		entries = append(entries, SitemapEntry{
			Loc:        s.baseURL + "/categories/" + category.Slug,
			LastMod:    now,
			ChangeFreq: ChangeWeekly,
			Priority:   0.7,
		})
	}

	for _, tag := range tags {
		entries = append(entries, SitemapEntry{
			Loc:        s.baseURL + "/tags/" + tag.Slug,
			LastMod:    now,
			ChangeFreq: ChangeMonthly,
			Priority:   0.6,
		})
	}

	return entries
}

func (s *Sitemap) Render(entries []SitemapEntry) ([]byte, error) {
	set := urlSet{Xmlns: sitemapNamespace, URLs: make([]sitemapURL, 0, len(entries))}
	for _, entry := range entries {
		u := sitemapURL{
			Loc:        entry.Loc,
			ChangeFreq: string(entry.ChangeFreq),
			Priority:   strconv.FormatFloat(entry.Priority, 'f', 1, 64),
		}
		if !entry.LastMod.IsZero() {
			u.LastMod = entry.LastMod.UTC().Format(time.RFC3339)
		}
		set.URLs = append(set.URLs, u)
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sitemap: %w", err)
	}

	return append([]byte(xml.Header), out...), nil
}

// Robots renders robots.txt pointing crawlers at the sitemap.
func (s *Sitemap) Robots() string {
	var b strings.Builder

	allow := []string{"/", "/articles/", "/categories/", "/tags/", "/search", "/about"}
	disallow := []string{"/api/", "/admin/", "/private/"}

	writeGroup := func(agent string, extraDisallow []string, crawlDelay int) {
		fmt.Fprintf(&b, "User-agent: %s\n", agent)
		for _, path := range allow {
			fmt.Fprintf(&b, "Allow: %s\n", path)
		}
		for _, path := range append(disallow, extraDisallow...) {
			fmt.Fprintf(&b, "Disallow: %s\n", path)
		}
		if crawlDelay > 0 {
			fmt.Fprintf(&b, "Crawl-delay: %d\n", crawlDelay)
		}
		b.WriteString("\n")
	}

	writeGroup("*", []string{"*.json", "/search?*"}, 0)
	writeGroup("Googlebot", nil, 1)
	writeGroup("Bingbot", nil, 2)

	fmt.Fprintf(&b, "Sitemap: %s/sitemap.xml\n", s.baseURL)
	fmt.Fprintf(&b, "Host: %s\n", s.baseURL)

	return b.String()
}
