package tasks

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/lysyi3m/seo-media/app/database"
	"github.com/lysyi3m/seo-media/app/feed"
)

// TaskSchedulerInterface is what the application needs from the background worker pool.
//
//	scheduler := NewScheduler(configCache, deps, Options{WorkerCount: 2, Interval: time.Minute})
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueImport("frontend-weekly")
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	EnqueueImport(sourceName string) error
}

// CacheInvalidator drops cached query results after new content is written.
type CacheInvalidator interface {
	InvalidateQueries(ctx context.Context) error
}

// Dependencies are shared by every task the scheduler creates.
type Dependencies struct {
	SourceRepo  database.SourceRepository
	ArticleRepo database.ArticleRepository
	HTTPClient  *http.Client
	Parser      *feed.Parser
	Markdown    *feed.MarkdownReader
	Filterer    *feed.Filterer
	Extractor   *feed.ContentExtractor
	Cache       CacheInvalidator // optional
	UserAgent   string
	Now         func() time.Time
}

func (d *Dependencies) now() time.Time {
	if d.Now == nil {
		return time.Now().UTC()
	}
	return d.Now().UTC()
}

func (d *Dependencies) invalidateCache(ctx context.Context, sourceName string) {
	if d.Cache == nil {
		return
	}
	if err := d.Cache.InvalidateQueries(ctx); err != nil {
		// Cached pages expire on their own.
		slog.Warn("Failed to invalidate query cache", "source", sourceName, "error", err)
	}
}
