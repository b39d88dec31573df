package cfg

import (
	"cmp"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/lysyi3m/seo-media/app/content"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Site configuration
	Port            string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl         string `long:"base-url" env:"BASE_URL" description:"Public site URL used in feeds and sitemaps (default http://localhost:<port>)"`
	SiteName        string `long:"site-name" env:"SITE_NAME" default:"SEO Media" description:"Site name used as the RSS channel title"`
	SiteDescription string `long:"site-description" env:"SITE_DESCRIPTION" default:"フロントエンド開発、バックエンド、デザインに関する最新記事をお届けします" description:"Site description used in the RSS channel"`
	SiteLanguage    string `long:"site-language" env:"SITE_LANGUAGE" default:"ja" description:"Content language; also selects the title collation"`
	ContactEmail    string `long:"contact-email" env:"CONTACT_EMAIL" default:"contact@seomedia.example.com" description:"Contact address published in the RSS feed"`

	// Content store configuration
	Store            string `long:"store" env:"CONTENT_STORE" default:"sqlite" choice:"cms" choice:"sqlite" description:"Content store backend"`
	CMSServiceDomain string `long:"cms-service-domain" env:"MICROCMS_SERVICE_DOMAIN" description:"Hosted CMS service domain (required for the cms store)"`
	CMSAPIKey        string `long:"cms-api-key" env:"MICROCMS_API_KEY" description:"Hosted CMS API key (required for the cms store)"`
	CMSTimeout       int    `long:"cms-timeout" env:"CMS_TIMEOUT" default:"10" description:"Hosted CMS request timeout in seconds"`
	DBPath           string `long:"db-path" env:"DB_PATH" default:"./data/seo-media.db" description:"SQLite database file for the sqlite store"`
	RedisAddr        string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for the query result cache (optional)"`
	CacheTTL         int    `long:"cache-ttl" env:"CACHE_TTL" default:"300" description:"Query result cache TTL in seconds"`

	// Source import configuration
	SourcesDir        string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing source configuration files"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for source imports"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"60" description:"Scheduler interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for the admin endpoints (admin disabled when empty)"`

	// Query defaults
	DefaultPageSize int `long:"page-size" env:"DEFAULT_PAGE_SIZE" default:"10" description:"Default number of articles per page"`
	FeedItemCount   int `long:"feed-items" env:"FEED_ITEM_COUNT" default:"20" description:"Number of articles in the RSS feed"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"SEO-Media/1.0" description:"User agent string for outgoing HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for date ranges (e.g., UTC, Asia/Tokyo)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses the process arguments and environment.
func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs parses args and the environment. It returns nil, nil when help was requested.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Port:              raw.Port,
		BaseUrl:           strings.TrimRight(raw.BaseUrl, "/"),
		SiteName:          raw.SiteName,
		SiteDescription:   raw.SiteDescription,
		SiteLanguage:      raw.SiteLanguage,
		ContactEmail:      raw.ContactEmail,
		Store:             raw.Store,
		CMSServiceDomain:  raw.CMSServiceDomain,
		CMSAPIKey:         raw.CMSAPIKey,
		CMSTimeout:        raw.CMSTimeout,
		DBPath:            raw.DBPath,
		RedisAddr:         raw.RedisAddr,
		CacheTTL:          raw.CacheTTL,
		SourcesDir:        raw.SourcesDir,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		APIAccessKey:      raw.APIAccessKey,
		DefaultPageSize:   raw.DefaultPageSize,
		FeedItemCount:     raw.FeedItemCount,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if cfg.BaseUrl == "" {
		cfg.BaseUrl = "http://localhost:" + cfg.Port
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func validate(cfg *Cfg) error {
	if cfg.Store == StoreCMS && (cfg.CMSServiceDomain == "" || cfg.CMSAPIKey == "") {
		return fmt.Errorf("cms store requires --cms-service-domain and --cms-api-key")
	}

	positiveFields := map[string]int{
		"page size":          cfg.DefaultPageSize,
		"feed items":         cfg.FeedItemCount,
		"worker count":       cfg.WorkerCount,
		"cms timeout":        cfg.CMSTimeout,
		"scheduler interval": cfg.SchedulerInterval,
	}

	for fieldName, fieldValue := range positiveFields {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	if cfg.DefaultPageSize > content.MaxPageSize {
		return fmt.Errorf("page size must not exceed %d", content.MaxPageSize)
	}

	return nil
}

func applyTimezone(timezone string) error {
	if timezone == "" {
		return nil
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return err
	}
	time.Local = loc
	return nil
}
