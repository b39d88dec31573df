package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

type frontMatter struct {
	Title       string     `yaml:"title"`
	Slug        string     `yaml:"slug"`
	Excerpt     string     `yaml:"excerpt"`
	Category    string     `yaml:"category"`
	Tags        []string   `yaml:"tags"`
	Author      string     `yaml:"author"`
	Image       string     `yaml:"image"`
	PublishedAt time.Time  `yaml:"published_at"`
	UpdatedAt   *time.Time `yaml:"updated_at"`
	Premium     bool       `yaml:"premium"`
	Draft       bool       `yaml:"draft"`
}

// MarkdownReader loads posts written as Markdown files with a YAML front matter block.
type MarkdownReader struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewMarkdownReader() *MarkdownReader {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "span")
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")

	return &MarkdownReader{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Footnote),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		policy: policy,
	}
}

// Run reads every *.md file in dir, newest first.
func (r *MarkdownReader) Run(dir string) ([]Item, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("failed to find markdown files: %w", err)
	}

	items := make([]Item, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}

		item, err := r.Parse(strings.TrimSuffix(filepath.Base(file), ".md"), data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}

		if item.PublishedAt.IsZero() {
			if info, err := os.Stat(file); err == nil {
				item.PublishedAt = info.ModTime()
			}
		}

		items = append(items, item)
	}

	slices.SortStableFunc(items, func(a, b Item) int {
		return b.PublishedAt.Compare(a.PublishedAt)
	})

	return items, nil
}

// Parse converts a single post. name identifies the post when the front matter has no slug.
func (r *MarkdownReader) Parse(name string, data []byte) (Item, error) {
	meta, body, err := splitFrontMatter(data)
	if err != nil {
		return Item{}, err
	}

	var fm frontMatter
	if len(meta) > 0 {
		if err := yaml.Unmarshal(meta, &fm); err != nil {
			return Item{}, fmt.Errorf("failed to parse front matter: %w", err)
		}
	}

	if strings.TrimSpace(fm.Title) == "" {
		return Item{}, fmt.Errorf("front matter title is required")
	}

	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return Item{}, fmt.Errorf("failed to render markdown: %w", err)
	}

	item := Item{
		GUID:        cmp.Or(fm.Slug, name),
		Title:       strings.TrimSpace(fm.Title),
		Content:     r.policy.Sanitize(buf.String()),
		Slug:        fm.Slug,
		Excerpt:     fm.Excerpt,
		Category:    fm.Category,
		Categories:  fm.Tags,
		ImageURL:    fm.Image,
		PublishedAt: fm.PublishedAt,
		UpdatedAt:   fm.UpdatedAt,
		Premium:     fm.Premium,
		Draft:       fm.Draft,
	}
	if fm.Author != "" {
		item.Authors = []string{fm.Author}
	}

	return item, nil
}

func splitFrontMatter(data []byte) ([]byte, []byte, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	normalized := bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))

	if !bytes.HasPrefix(normalized, []byte(frontMatterDelimiter+"\n")) {
		return nil, normalized, nil
	}

	rest := normalized[len(frontMatterDelimiter)+1:]
	if bytes.HasPrefix(rest, []byte(frontMatterDelimiter+"\n")) {
		return nil, rest[len(frontMatterDelimiter)+1:], nil
	}

	end := bytes.Index(rest, []byte("\n"+frontMatterDelimiter+"\n"))
	if end < 0 {
		if bytes.HasSuffix(rest, []byte("\n"+frontMatterDelimiter)) {
			return rest[:len(rest)-len(frontMatterDelimiter)-1], nil, nil
		}
		return nil, nil, fmt.Errorf("unterminated front matter")
	}

	return rest[:end], rest[end+len(frontMatterDelimiter)+2:], nil
}
