package api

import (
	"context"

	"github.com/lysyi3m/seo-media/app/content"
	"github.com/lysyi3m/seo-media/app/database"
	"github.com/lysyi3m/seo-media/app/feed"
	"github.com/lysyi3m/seo-media/app/tasks"
)

type GeneratorInterface interface {
	Run(articles []content.FeedArticle) (string, error)
	Empty() string
}

var _ GeneratorInterface = (*feed.Generator)(nil)

// HealthCheck reports an error when a dependency is unreachable.
type HealthCheck func(ctx context.Context) error

// HandlerConfig wires the handler. ConfigCache, SourceRepo and Scheduler are
// nil when source import is not running.
type HandlerConfig struct {
	Service      *content.Service
	Generator    GeneratorInterface
	Sitemap      *feed.Sitemap
	ConfigCache  *feed.ConfigCache
	SourceRepo   database.SourceRepository
	Scheduler    tasks.TaskSchedulerInterface
	FeedItems    int
	Store        string
	Version      string
	HealthChecks map[string]HealthCheck
}

type Handler struct {
	service      *content.Service
	generator    GeneratorInterface
	sitemap      *feed.Sitemap
	configCache  *feed.ConfigCache
	sourceRepo   database.SourceRepository
	scheduler    tasks.TaskSchedulerInterface
	feedItems    int
	store        string
	version      string
	healthChecks map[string]HealthCheck
}
