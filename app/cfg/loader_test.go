package cfg

import (
	"strings"
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestLoadArgs_Defaults(t *testing.T) {
	cfg, err := LoadArgs(nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.BaseUrl != "http://localhost:8080" {
		t.Errorf("Expected base URL derived from port, got '%s'", cfg.BaseUrl)
	}
	if cfg.Store != StoreSQLite {
		t.Errorf("Expected sqlite store by default, got '%s'", cfg.Store)
	}
	if cfg.SiteLanguage != "ja" || cfg.SiteName != "SEO Media" {
		t.Errorf("Unexpected site defaults: %q %q", cfg.SiteLanguage, cfg.SiteName)
	}
	if cfg.DefaultPageSize != 10 || cfg.FeedItemCount != 20 {
		t.Errorf("Unexpected query defaults: %d %d", cfg.DefaultPageSize, cfg.FeedItemCount)
	}
	if cfg.CacheTTL != 300 || cfg.RedisAddr != "" {
		t.Errorf("Unexpected cache defaults: %d %q", cfg.CacheTTL, cfg.RedisAddr)
	}
	if cfg.Version != GetVersion() {
		t.Errorf("Expected version %q, got %q", GetVersion(), cfg.Version)
	}
}

func TestLoadArgs_FlagsAndEnvironment(t *testing.T) {
	t.Setenv("CONTENT_STORE", "cms")
	t.Setenv("MICROCMS_SERVICE_DOMAIN", "seo-media")
	t.Setenv("MICROCMS_API_KEY", "secret")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := LoadArgs([]string{"--port", "9000", "--base-url", "https://media.example.com/", "--page-size", "24", "--debug"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Store != StoreCMS || cfg.CMSServiceDomain != "seo-media" || cfg.CMSAPIKey != "secret" {
		t.Errorf("Expected CMS settings from environment, got %+v", cfg)
	}
	if cfg.Port != "9000" || cfg.BaseUrl != "https://media.example.com" {
		t.Errorf("Expected flags to apply, got port %q base %q", cfg.Port, cfg.BaseUrl)
	}
	if cfg.DefaultPageSize != 24 || !cfg.Debug || cfg.RedisAddr != "localhost:6379" {
		t.Errorf("Unexpected values: %+v", cfg)
	}
}

func TestLoadArgs_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown store", []string{"--store", "mongo"}, "failed to parse configuration"},
		{"cms without credentials", []string{"--store", "cms"}, "cms store requires"},
		{"zero page size", []string{"--page-size", "0"}, "page size must be positive"},
		{"page size too large", []string{"--page-size", "500"}, "must not exceed"},
		{"zero workers", []string{"--worker-count", "0"}, "worker count must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadArgs(tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadArgs_Help(t *testing.T) {
	cfg, err := LoadArgs([]string{"--help"})
	if cfg != nil || err != nil {
		t.Errorf("Expected nil config and nil error for help, got %v %v", cfg, err)
	}
}
