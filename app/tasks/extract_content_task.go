package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/seo-media/app/content"
	"github.com/lysyi3m/seo-media/app/database"
	"github.com/lysyi3m/seo-media/app/feed"
)

// ExtractContentTask replaces feed summaries with the readable body of the linked page.
type ExtractContentTask struct {
	Task
	Source *feed.Source
	deps   *Dependencies
}

func NewExtractContentTask(source *feed.Source, deps *Dependencies) *ExtractContentTask {
	return &ExtractContentTask{
		Task:   NewTask(TaskTypeExtractContent, source.Name),
		Source: source,
		deps:   deps,
	}
}

func (t *ExtractContentTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.Source.Settings.ExtractContent || t.Source.Type != feed.SourceTypeFeed {
		slog.Debug("Content extraction disabled for source", "source", t.SourceName)
		return nil
	}

	source, err := t.deps.SourceRepo.GetSource(ctx, t.SourceName)
	if err != nil {
		return fmt.Errorf("failed to get source: %w", err)
	}
	if source == nil {
		slog.Debug("Source not imported yet, skipping extraction", "source", t.SourceName)
		return nil
	}

	articles, err := t.deps.ArticleRepo.GetArticlesForExtraction(ctx, source.ID, t.Source.Settings.MaxItems)
	if err != nil {
		return fmt.Errorf("failed to get articles for content extraction: %w", err)
	}

	if len(articles) == 0 {
		slog.Debug("No articles need content extraction", "source", t.SourceName)
		return nil
	}

	successCount := 0
	errorCount := 0

	for _, article := range articles {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := t.extract(ctx, article); err != nil {
			slog.Error("Failed to extract content for article", "article_id", article.ID, "url", article.SourceURL, "error", err)
			errorCount++

			if err := t.deps.ArticleRepo.MarkExtractionAttempted(ctx, article.ID); err != nil {
				slog.Error("Failed to mark extraction attempt", "article_id", article.ID, "error", err)
			}
			continue
		}
		successCount++
	}

	if successCount > 0 {
		t.deps.invalidateCache(ctx, t.SourceName)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"success", successCount,
		"errors", errorCount)

	return nil
}

func (t *ExtractContentTask) extract(ctx context.Context, article database.ArticleForExtraction) error {
	timeout := time.Duration(t.Source.Settings.Timeout) * time.Second
	data, err := fetch(ctx, t.deps.HTTPClient, article.SourceURL, t.deps.UserAgent, timeout, true)
	if err != nil {
		return fmt.Errorf("failed to fetch article page: %w", err)
	}

	body, err := t.deps.Extractor.Run(data, article.SourceURL)
	if err != nil {
		return err
	}

	excerpt := content.BuildExcerpt(body, content.DefaultExcerptLength)
	if err := t.deps.ArticleRepo.UpdateExtractedContent(ctx, article.ID, body, excerpt, content.EstimateReadTime(body)); err != nil {
		return fmt.Errorf("failed to update extracted content: %w", err)
	}

	slog.Debug("Content extracted", "article_id", article.ID, "url", article.SourceURL, "content_length", len(body))
	return nil
}
