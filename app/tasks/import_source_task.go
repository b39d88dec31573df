package tasks

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/seo-media/app/content"
	"github.com/lysyi3m/seo-media/app/database"
	"github.com/lysyi3m/seo-media/app/feed"
	"github.com/lysyi3m/seo-media/app/metrics"
)

const defaultCategoryName = "Uncategorized"

type ImportSourceTask struct {
	Task
	Source *feed.Source
	// Force runs the import even when the source is disabled.
	Force bool
	deps  *Dependencies
}

func NewImportSourceTask(source *feed.Source, deps *Dependencies) *ImportSourceTask {
	return &ImportSourceTask{
		Task:   NewTask(TaskTypeImportSource, source.Name),
		Source: source,
		deps:   deps,
	}
}

func (t *ImportSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.Source.Settings.Enabled && !t.Force {
		slog.Debug("Source disabled, skipping", "source", t.SourceName)
		return nil
	}

	sourceID, err := t.deps.SourceRepo.UpsertSource(ctx, t.Source.Name, string(t.Source.Type), t.Source.Location())
	if err != nil {
		return fmt.Errorf("failed to register source: %w", err)
	}

	items, err := t.loadItems(ctx)
	if err != nil {
		return err
	}

	if limit := t.Source.Settings.MaxItems; limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	kept, filteredCount := t.deps.Filterer.Run(items, t.Source)

	// Feed items are immutable once stored; markdown posts are re-read so edits propagate.
	refresh := t.Source.Type == feed.SourceTypeMarkdown
	now := t.deps.now()

	duplicateCount, createdCount, updatedCount := 0, 0, 0
	for _, item := range kept {
		if !refresh {
			exists, err := t.deps.ArticleRepo.HasArticle(ctx, sourceID, item.GUID)
			if err != nil {
				return fmt.Errorf("failed to check for duplicates: %w", err)
			}
			if exists {
				duplicateCount++
				continue
			}
		}

		_, created, err := t.deps.ArticleRepo.UpsertArticle(ctx, sourceID, toArticleInput(t.Source, item, now))
		if err != nil {
			metrics.ArticlesImported.WithLabelValues(t.SourceName, "failed").Inc()
			return fmt.Errorf("failed to store article %q: %w", item.GUID, err)
		}
		if created {
			createdCount++
		} else {
			updatedCount++
		}
	}

	metrics.ArticlesImported.WithLabelValues(t.SourceName, "created").Add(float64(createdCount))
	metrics.ArticlesImported.WithLabelValues(t.SourceName, "updated").Add(float64(updatedCount))
	metrics.ArticlesImported.WithLabelValues(t.SourceName, "duplicate").Add(float64(duplicateCount))
	metrics.ArticlesImported.WithLabelValues(t.SourceName, "filtered").Add(float64(filteredCount))

	if err := t.deps.SourceRepo.UpdateFetchTimes(ctx, sourceID, now, now.Add(t.Source.RefreshEvery())); err != nil {
		return fmt.Errorf("failed to update fetch times: %w", err)
	}

	if createdCount+updatedCount > 0 {
		t.deps.invalidateCache(ctx, t.SourceName)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"total", len(items),
		"duplicates", duplicateCount,
		"filtered", filteredCount,
		"created", createdCount,
		"updated", updatedCount)

	return nil
}

func (t *ImportSourceTask) loadItems(ctx context.Context) ([]feed.Item, error) {
	switch t.Source.Type {
	case feed.SourceTypeMarkdown:
		items, err := t.deps.Markdown.Run(t.Source.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read posts: %w", err)
		}
		return items, nil
	default:
		timeout := time.Duration(t.Source.Settings.Timeout) * time.Second
		data, err := fetch(ctx, t.deps.HTTPClient, t.Source.URL, t.deps.UserAgent, timeout, false)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch feed: %w", err)
		}

		_, items, err := t.deps.Parser.Run(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse feed: %w", err)
		}
		return items, nil
	}
}

func toArticleInput(source *feed.Source, item feed.Item, now time.Time) database.ArticleInput {
	body := cmp.Or(item.Content, item.Description)

	excerpt := item.Excerpt
	if excerpt == "" {
		excerpt = content.BuildExcerpt(cmp.Or(item.Description, body), content.DefaultExcerptLength)
	}

	categoryName := cmp.Or(item.Category, source.Category, defaultCategoryName)

	input := database.ArticleInput{
		SourceGUID:    item.GUID,
		SourceURL:     item.Link,
		Slug:          feed.ItemSlug(item),
		Title:         item.Title,
		Excerpt:       excerpt,
		Content:       body,
		FeaturedImage: item.ImageURL,
		Category:      taxonomy("category", categoryName),
		ReadTime:      content.EstimateReadTime(body),
		IsPublished:   source.Publishes() && !item.Draft,
		IsPremium:     source.Settings.Premium || item.Premium,
		UpdatedAt:     item.UpdatedAt,
	}

	publishedAt := item.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = now
	}
	input.PublishedAt = &publishedAt

	seen := make(map[string]bool, len(item.Categories))
	for _, name := range item.Categories {
		tag := taxonomy("tag", name)
		if name == "" || seen[tag.Slug] {
			continue
		}
		seen[tag.Slug] = true
		input.Tags = append(input.Tags, tag)
	}

	if len(item.Authors) > 0 {
		author := taxonomy("author", item.Authors[0])
		input.Author = &author
	} else if source.Author != "" {
		author := taxonomy("author", source.Author)
		input.Author = &author
	}

	return input
}

func taxonomy(prefix, name string) database.Taxonomy {
	return database.Taxonomy{Name: name, Slug: feed.SlugOr(name, prefix, name)}
}
