package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/text/language"

	"github.com/lysyi3m/seo-media/app/api"
	"github.com/lysyi3m/seo-media/app/cache"
	"github.com/lysyi3m/seo-media/app/cfg"
	"github.com/lysyi3m/seo-media/app/cms"
	"github.com/lysyi3m/seo-media/app/content"
	"github.com/lysyi3m/seo-media/app/database"
	"github.com/lysyi3m/seo-media/app/feed"
	"github.com/lysyi3m/seo-media/app/metrics"
	"github.com/lysyi3m/seo-media/app/tasks"
)

var channelCategories = []string{"Technology", "Web Development", "Design"}

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting SEO Media server", "version", appCfg.Version, "store", appCfg.Store)

	if err := run(appCfg); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}

	slog.Info("SEO Media server shutdown complete")
}

func run(appCfg *cfg.Cfg) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Init(appCfg.Version, appCfg.Store)

	healthChecks := make(map[string]api.HealthCheck)
	handlerCfg := api.HandlerConfig{
		FeedItems:    appCfg.FeedItemCount,
		Store:        appCfg.Store,
		Version:      appCfg.Version,
		HealthChecks: healthChecks,
	}

	var store content.Store
	var db *database.DB

	switch appCfg.Store {
	case cfg.StoreCMS:
		client, err := cms.NewClient(cms.Config{
			ServiceDomain: appCfg.CMSServiceDomain,
			APIKey:        appCfg.CMSAPIKey,
			Timeout:       time.Duration(appCfg.CMSTimeout) * time.Second,
			UserAgent:     appCfg.UserAgent,
		}, nil)
		if err != nil {
			return fmt.Errorf("failed to create CMS client: %w", err)
		}
		store = client
		slog.Info("Using hosted CMS store", "service_domain", appCfg.CMSServiceDomain)

	default:
		var err error
		db, err = database.Open(appCfg.DBPath, language.Make(appCfg.SiteLanguage))
		if err != nil {
			return err
		}
		defer db.Close()

		version, dirty, err := database.RunMigrations(db)
		if err != nil {
			return err
		}
		slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

		store = database.NewArticleStore(db)
		healthChecks["database"] = db.Health
	}

	var resultCache *cache.Cache
	if appCfg.RedisAddr != "" {
		c, err := cache.NewCache(ctx, appCfg.RedisAddr)
		if err != nil {
			slog.Warn("Query cache disabled", "addr", appCfg.RedisAddr, "error", err)
		} else {
			resultCache = c
			defer resultCache.Close()

			store = cache.NewCachedStore(store, resultCache, time.Duration(appCfg.CacheTTL)*time.Second)
			healthChecks["cache"] = func(ctx context.Context) error {
				if health := resultCache.Health(ctx); health["status"] != "healthy" {
					return fmt.Errorf("cache unhealthy: %v", health["error"])
				}
				return nil
			}
		}
	}

	handlerCfg.Service = content.NewService(store, content.ServiceOptions{
		DefaultLimit: appCfg.DefaultPageSize,
		Language:     language.Make(appCfg.SiteLanguage),
	})
	handlerCfg.Generator = feed.NewGenerator(feed.Channel{
		Title:        appCfg.SiteName,
		Description:  appCfg.SiteDescription,
		BaseURL:      appCfg.BaseUrl,
		Language:     appCfg.SiteLanguage,
		ContactEmail: appCfg.ContactEmail,
		Version:      appCfg.Version,
		Categories:   channelCategories,
	}, nil)
	handlerCfg.Sitemap = feed.NewSitemap(appCfg.BaseUrl, nil)

	if db != nil {
		scheduler, err := startImport(appCfg, db, resultCache, &handlerCfg)
		if err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	server := api.NewServer(api.NewHandler(handlerCfg), appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "base_url", appCfg.BaseUrl)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("Received shutdown signal")
	case runErr = <-serverErrChan:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	return runErr
}

// startImport loads source definitions and starts the background workers
// that import them into the local database.
func startImport(appCfg *cfg.Cfg, db *database.DB, resultCache *cache.Cache, handlerCfg *api.HandlerConfig) (*tasks.Scheduler, error) {
	configCache := feed.NewConfigCache(appCfg.SourcesDir)
	if err := configCache.Run(); err != nil {
		return nil, fmt.Errorf("failed to load source configurations: %w", err)
	}
	slog.Info("Loaded source configurations", "dir", appCfg.SourcesDir, "count", configCache.GetConfigCount())

	sourceRepo := database.NewSourceRepository(db)

	deps := &tasks.Dependencies{
		SourceRepo:  sourceRepo,
		ArticleRepo: database.NewArticleRepository(db),
		HTTPClient:  &http.Client{Timeout: 60 * time.Second},
		Parser:      feed.NewParser(),
		Markdown:    feed.NewMarkdownReader(),
		Filterer:    feed.NewFilterer(),
		Extractor:   feed.NewContentExtractor(),
		UserAgent:   appCfg.UserAgent,
	}
	if resultCache != nil {
		deps.Cache = resultCache
	}

	scheduler := tasks.NewScheduler(configCache, deps, tasks.Options{
		WorkerCount: appCfg.WorkerCount,
		Interval:    time.Duration(appCfg.SchedulerInterval) * time.Second,
	})
	scheduler.Start()
	slog.Info("Background scheduler started", "workers", appCfg.WorkerCount)

	handlerCfg.ConfigCache = configCache
	handlerCfg.SourceRepo = sourceRepo
	handlerCfg.Scheduler = scheduler

	return scheduler, nil
}
