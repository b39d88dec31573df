package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/seo-media/app/metrics"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/metrics"},
	}))

	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware())

	// CORS for browser clients
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-API-Key")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	api := r.Group("/api")
	{
		api.GET("/articles", handler.ListArticles)
		api.GET("/articles/:slug", handler.GetArticle)
		api.GET("/latest", handler.LatestArticles)
		api.GET("/search", handler.SearchArticles)
		api.GET("/categories", handler.ListCategories)
		api.GET("/categories/:slug/articles", handler.CategoryArticles)
		api.GET("/tags", handler.ListTags)
		api.GET("/tags/:slug/articles", handler.TagArticles)
		api.GET("/stats", handler.GetStats)
	}

	r.GET("/feed.xml", handler.GetFeed)
	r.GET("/sitemap.xml", handler.GetSitemap)
	r.GET("/robots.txt", handler.GetRobots)

	r.GET("/health", handler.GetHealth)
	r.GET("/metrics", metrics.Handler())

	if apiAccessKey != "" {
		admin := api.Group("/admin")
		admin.Use(authMiddleware(apiAccessKey))
		{
			admin.GET("/sources", handler.APIListSources)
			admin.POST("/sources/:name/import", handler.APIImportSource)
		}
		slog.Info("Admin endpoints enabled with authentication")
	} else {
		slog.Info("Admin endpoints disabled (API_ACCESS_KEY not set)")
	}

	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"articles":   "/api/articles",
			"article":    "/api/articles/<slug>",
			"latest":     "/api/latest?limit=<n>",
			"search":     "/api/search?query=<text>",
			"categories": "/api/categories",
			"tags":       "/api/tags",
			"stats":      "/api/stats",
			"feed":       "/feed.xml",
			"sitemap":    "/sitemap.xml",
			"health":     "/health",
			"metrics":    "/metrics",
		}

		if apiAccessKey != "" {
			endpoints["sources"] = "/api/admin/sources (requires X-API-Key header)"
			endpoints["import"] = "/api/admin/sources/<name>/import (POST, requires X-API-Key header)"
		}

		c.JSON(http.StatusOK, gin.H{
			"service":     "SEO Media",
			"version":     handler.version,
			"store":       handler.store,
			"description": "Article search, ranking and syndication API",
			"endpoints":   endpoints,
			"api_status": map[string]any{
				"enabled":       apiAccessKey != "",
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// authMiddleware checks the X-API-Key header, falling back to a bearer token.
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			return
		}

		if providedKey != apiAccessKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			return
		}

		c.Next()
	}
}
