package database

import (
	"context"
	"time"
)

type SourceRepository interface {
	GetSource(ctx context.Context, name string) (*Source, error)
	ListSources(ctx context.Context) ([]Source, error)

	UpsertSource(ctx context.Context, name, sourceType, location string) (string, error)
	UpdateFetchTimes(ctx context.Context, sourceID string, fetchedAt, nextFetch time.Time) error
}

type ArticleRepository interface {
	HasArticle(ctx context.Context, sourceID, guid string) (bool, error)
	UpsertArticle(ctx context.Context, sourceID string, input ArticleInput) (string, bool, error)

	GetArticlesForExtraction(ctx context.Context, sourceID string, limit int) ([]ArticleForExtraction, error)
	UpdateExtractedContent(ctx context.Context, articleID, content, excerpt string, readTime int) error
	MarkExtractionAttempted(ctx context.Context, articleID string) error
}
