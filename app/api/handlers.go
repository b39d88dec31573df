package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/seo-media/app/content"
	"github.com/lysyi3m/seo-media/app/database"
	"github.com/lysyi3m/seo-media/app/feed"
)

const (
	feedCacheControl = "s-maxage=86400, stale-while-revalidate"
	healthTimeout    = 3 * time.Second

	latestDefaultLimit = 5
	latestMaxLimit     = 50
)

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		service:      cfg.Service,
		generator:    cfg.Generator,
		sitemap:      cfg.Sitemap,
		configCache:  cfg.ConfigCache,
		sourceRepo:   cfg.SourceRepo,
		scheduler:    cfg.Scheduler,
		feedItems:    cfg.FeedItems,
		store:        cfg.Store,
		version:      cfg.Version,
		healthChecks: cfg.HealthChecks,
	}
}

func (h *Handler) ListArticles(c *gin.Context) {
	criteria, err := parseCriteria(c)
	if err != nil {
		respondError(c, "parse_criteria", err)
		return
	}

	result, err := h.service.Search(c.Request.Context(), criteria)
	if err != nil {
		respondError(c, "search_articles", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SearchArticles ranks by relevance when a query is given without an explicit sort.
func (h *Handler) SearchArticles(c *gin.Context) {
	criteria, err := parseCriteria(c)
	if err != nil {
		respondError(c, "parse_criteria", err)
		return
	}

	if criteria.SortBy == "" && criteria.Query != "" {
		criteria.SortBy = content.SortByRelevance
	}

	result, err := h.service.Search(c.Request.Context(), criteria)
	if err != nil {
		respondError(c, "search_articles", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":      criteria.Query,
		"articles":   result.Articles,
		"pagination": result.Pagination,
		"totalCount": result.TotalCount,
	})
}

func (h *Handler) GetArticle(c *gin.Context) {
	detail, err := h.service.GetArticle(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, "get_article", err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// LatestArticles returns the newest published articles for sidebars and widgets.
func (h *Handler) LatestArticles(c *gin.Context) {
	limit, err := intParam(c, "limit")
	if err != nil {
		respondError(c, "parse_limit", err)
		return
	}
	if limit == 0 {
		limit = latestDefaultLimit
	}
	if limit < 1 || limit > latestMaxLimit {
		respondError(c, "parse_limit", fmt.Errorf("%w: limit must be between 1 and %d", content.ErrInvalidArgument, latestMaxLimit))
		return
	}

	articles, err := h.service.LatestArticles(c.Request.Context(), limit)
	if err != nil {
		respondError(c, "latest_articles", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"articles": articles, "total": len(articles)})
}

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.service.Categories(c.Request.Context())
	if err != nil {
		respondError(c, "list_categories", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories, "total": len(categories)})
}

func (h *Handler) ListTags(c *gin.Context) {
	tags, err := h.service.Tags(c.Request.Context())
	if err != nil {
		respondError(c, "list_tags", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags, "total": len(tags)})
}

func (h *Handler) CategoryArticles(c *gin.Context) {
	page, limit, err := parsePage(c)
	if err != nil {
		respondError(c, "parse_page", err)
		return
	}

	result, err := h.service.ArticlesByCategory(c.Request.Context(), c.Param("slug"), page, limit)
	if err != nil {
		respondError(c, "category_articles", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) TagArticles(c *gin.Context) {
	page, limit, err := parsePage(c)
	if err != nil {
		respondError(c, "parse_page", err)
		return
	}

	result, err := h.service.ArticlesByTag(c.Request.Context(), c.Param("slug"), page, limit)
	if err != nil {
		respondError(c, "tag_articles", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, "get_stats", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetFeed serves the RSS feed. Store failures degrade to an empty channel.
func (h *Handler) GetFeed(c *gin.Context) {
	articles, err := h.service.FeedArticles(c.Request.Context(), h.feedItems)
	if err != nil {
		slog.Error("Store error", "operation", "feed_articles", "error", err)
		c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(h.generator.Empty()))
		return
	}

	rss, err := h.generator.Run(articles)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(h.generator.Empty()))
		return
	}

	c.Header("Cache-Control", feedCacheControl)
	c.Header("X-Feed-Items", strconv.Itoa(len(articles)))
	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(rss))
}

// GetSitemap lists static pages, articles, categories and tags. Any store
// failure degrades to the home and article index pages.
func (h *Handler) GetSitemap(c *gin.Context) {
	entries, err := h.sitemapEntries(c.Request.Context())
	if err != nil {
		slog.Error("Store error", "operation", "sitemap", "error", err)
		entries = h.sitemap.StaticEntries(true)
	}

	body, err := h.sitemap.Render(entries)
	if err != nil {
		slog.Error("Sitemap generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}

func (h *Handler) sitemapEntries(ctx context.Context) ([]feed.SitemapEntry, error) {
	articles, err := h.service.SitemapArticles(ctx)
	if err != nil {
		return nil, err
	}

	categories, err := h.service.Categories(ctx)
	if err != nil {
		return nil, err
	}

	tags, err := h.service.Tags(ctx)
	if err != nil {
		return nil, err
	}

	return h.sitemap.Entries(articles, categories, tags), nil
}

func (h *Handler) GetRobots(c *gin.Context) {
	c.String(http.StatusOK, h.sitemap.Robots())
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"store":     h.store,
		"version":   h.version,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.healthChecks))
	for name, check := range h.healthChecks {
		if err := check(ctx); err != nil {
			slog.Warn("Health check failed", "check", name, "error", err)
			checks[name] = err.Error()
			health["status"] = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	health["checks"] = checks

	if h.configCache != nil {
		health["loaded_sources"] = h.configCache.GetConfigCount()
	}

	c.JSON(status, health)
}

func (h *Handler) APIListSources(c *gin.Context) {
	if h.configCache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Source import is not enabled"})
		return
	}

	registered := make(map[string]database.Source)
	if h.sourceRepo != nil {
		list, err := h.sourceRepo.ListSources(c.Request.Context())
		if err != nil {
			slog.Error("Database error", "operation", "list_sources", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		for _, source := range list {
			registered[source.Name] = source
		}
	}

	configs := h.configCache.GetConfigs()
	sources := make([]map[string]any, 0, len(configs))

	for _, config := range configs {
		info := map[string]any{
			"name":             config.Name,
			"type":             config.Type,
			"location":         config.Location(),
			"enabled":          config.Settings.Enabled,
			"max_items":        config.Settings.MaxItems,
			"refresh_interval": config.RefreshEvery().String(),
			"extract_content":  config.Settings.ExtractContent,
			"filters":          len(config.Filters),
		}

		if source, ok := registered[config.Name]; ok {
			info["article_count"] = source.ArticleCount
			info["last_fetched_at"] = source.LastFetchedAt
			info["next_fetch_at"] = source.NextFetchAt
			info["updated_at"] = source.UpdatedAt
		}

		sources = append(sources, info)
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i]["name"].(string) < sources[j]["name"].(string)
	})

	c.JSON(http.StatusOK, gin.H{
		"sources": sources,
		"total":   len(sources),
	})
}

func (h *Handler) APIImportSource(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing source name parameter"})
		return
	}

	if h.configCache == nil || h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Source import is not enabled"})
		return
	}

	source, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "source", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Source configuration not found",
			"details": err.Error(),
		})
		return
	}

	if err := h.scheduler.EnqueueImport(name); err != nil {
		slog.Error("Error enqueueing import task", "source", name, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to enqueue import task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Configuration reloaded and import enqueued",
		"source": gin.H{
			"name":     source.Name,
			"type":     source.Type,
			"location": source.Location(),
		},
	})
}

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, operation string, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, content.ErrInvalidArgument):
		status, message = http.StatusBadRequest, "Invalid request"
	case errors.Is(err, content.ErrNotFound):
		status, message = http.StatusNotFound, "Not found"
	case errors.Is(err, content.ErrUpstreamUnavailable):
		status, message = http.StatusBadGateway, "Content store unavailable"
	}

	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "operation", operation, "error", err)
	} else {
		slog.Debug("Request rejected", "operation", operation, "error", err)
	}

	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}
