package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/lysyi3m/seo-media/app/content"
)

// Channel describes the site-wide RSS channel.
type Channel struct {
	Title        string
	Description  string
	BaseURL      string
	Language     string
	ContactEmail string
	Version      string
	Categories   []string
}

// Generator renders the site RSS 2.0 feed.
type Generator struct {
	channel Channel
	now     func() time.Time
}

func NewGenerator(channel Channel, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	channel.BaseURL = strings.TrimRight(channel.BaseURL, "/")
	return &Generator{channel: channel, now: now}
}

func (g *Generator) Run(articles []content.FeedArticle) (string, error) {
	var buf bytes.Buffer
	now := g.now().UTC()

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeChannelHeader(&buf, now)

	fmt.Fprintf(&buf, "    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n", escapeText(g.feedURL()))
	writeElement(&buf, "generator", "SEO-Media/"+g.channel.Version, 4)

	if contact := g.contact(g.channel.Title); contact != "" {
		writeElement(&buf, "webMaster", contact, 4)
		writeElement(&buf, "managingEditor", contact, 4)
	}
	writeElement(&buf, "copyright", fmt.Sprintf("© %d %s. All rights reserved.", now.Year(), g.channel.Title), 4)

	for _, category := range g.channel.Categories {
		writeElement(&buf, "category", category, 4)
	}

	for _, article := range articles {
		g.writeItem(&buf, article)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

// Empty renders a channel without items, served when articles cannot be loaded.
func (g *Generator) Empty() string {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n<rss version=\"2.0\">\n  <channel>\n")
	g.writeChannelHeader(&buf, g.now().UTC())
	buf.WriteString("  </channel>\n</rss>")

	return buf.String()
}

func (g *Generator) writeChannelHeader(buf *bytes.Buffer, now time.Time) {
	writeElement(buf, "title", g.channel.Title, 4)
	writeElement(buf, "description", g.channel.Description, 4)
	writeElement(buf, "link", g.channel.BaseURL, 4)
	writeElement(buf, "language", g.channel.Language, 4)
	writeElement(buf, "lastBuildDate", now.Format(time.RFC1123Z), 4)
}

func (g *Generator) writeItem(buf *bytes.Buffer, article content.FeedArticle) {
	link := g.channel.BaseURL + "/articles/" + article.Slug

	buf.WriteString("    <item>\n")

	writeCDATA(buf, "title", article.Title, 6)
	writeCDATA(buf, "description", article.Excerpt, 6)
	writeElement(buf, "link", link, 6)

	buf.WriteString("      <guid isPermaLink=\"true\">")
	buf.WriteString(escapeText(link))
	buf.WriteString("</guid>\n")

	if !article.PublishedAt.IsZero() {
		writeElement(buf, "pubDate", article.PublishedAt.UTC().Format(time.RFC1123Z), 6)
	}

	if article.CategoryName != "" {
		writeCDATA(buf, "category", article.CategoryName, 6)
	}

	if article.AuthorName != "" {
		writeElement(buf, "author", g.contact(article.AuthorName), 6)
	}

	fmt.Fprintf(buf, "      <source url=\"%s\">", escapeText(g.feedURL()))
	buf.WriteString(escapeText(g.channel.Title))
	buf.WriteString("</source>\n")

	buf.WriteString("    </item>\n")
}

func (g *Generator) feedURL() string {
	return g.channel.BaseURL + "/feed.xml"
}

func (g *Generator) contact(name string) string {
	if g.channel.ContactEmail == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", g.channel.ContactEmail, name)
}

func writeElement(buf *bytes.Buffer, tag, text string, indent int) {
	if text == "" {
		return
	}

	buf.WriteString(strings.Repeat(" ", indent))
	buf.WriteString("<" + tag + ">")
	buf.WriteString(escapeText(text))
	buf.WriteString("</" + tag + ">\n")
}

func writeCDATA(buf *bytes.Buffer, tag, text string, indent int) {
	if text == "" {
		return
	}

	buf.WriteString(strings.Repeat(" ", indent))
	buf.WriteString("<" + tag + "><![CDATA[")
	// "]]>" cannot appear inside a CDATA section; split it across two sections.
	buf.WriteString(strings.ReplaceAll(text, "]]>", "]]]]><![CDATA[>"))
	buf.WriteString("]]></" + tag + ">\n")
}

func escapeText(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
