package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lysyi3m/seo-media/app/content"
	"github.com/lysyi3m/seo-media/app/metrics"
)

const (
	apiKeyHeader   = "X-MICROCMS-API-KEY"
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

var _ content.Store = (*Client)(nil)

type Config struct {
	ServiceDomain string
	APIKey        string
	BaseURL       string // overrides https://{ServiceDomain}.microcms.io/api/v1
	Timeout       time.Duration
	UserAgent     string
}

// Client reads content from the headless CMS list endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
}

func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: CMS API key is required", content.ErrInvalidArgument)
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		if cfg.ServiceDomain == "" {
			return nil, fmt.Errorf("%w: CMS service domain is required", content.ErrInvalidArgument)
		}
		baseURL = fmt.Sprintf("https://%s.microcms.io/api/v1", cfg.ServiceDomain)
	}

	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		userAgent:  cfg.UserAgent,
		httpClient: httpClient,
	}, nil
}

func (c *Client) ListArticles(ctx context.Context, query content.Query) (*content.RawPage[content.Article], error) {
	return list[content.Article](ctx, c, "articles", query)
}

func (c *Client) ListCategories(ctx context.Context, query content.Query) (*content.RawPage[content.Category], error) {
	return list[content.Category](ctx, c, "categories", query)
}

func (c *Client) ListTags(ctx context.Context, query content.Query) (*content.RawPage[content.Tag], error) {
	return list[content.Tag](ctx, c, "tags", query)
}

func list[T any](ctx context.Context, c *Client, endpoint string, query content.Query) (page *content.RawPage[T], err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveStoreRequest("cms", endpoint, time.Since(start).Seconds(), err)
	}()

	data, err := c.fetch(ctx, endpoint, query)
	if err != nil {
		return nil, err
	}

	page = &content.RawPage[T]{}
	if err := json.Unmarshal(data, page); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}

	return page, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string, query content.Query) ([]byte, error) {
	url := c.baseURL + "/" + endpoint
	if encoded := query.Values().Encode(); encoded != "" {
		url += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to fetch %s: %v", content.ErrUpstreamUnavailable, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, statusError(endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s response: %v", content.ErrUpstreamUnavailable, endpoint, err)
	}

	return data, nil
}

func statusError(endpoint string, status int, body string) error {
	var kind error
	switch {
	case status == http.StatusNotFound:
		kind = content.ErrNotFound
	case status == http.StatusBadRequest:
		kind = content.ErrInvalidArgument
	case status == http.StatusTooManyRequests || status >= 500:
		kind = content.ErrUpstreamUnavailable
	default:
		return fmt.Errorf("CMS %s responded with HTTP %d: %s", endpoint, status, body)
	}
	return fmt.Errorf("%w: CMS %s responded with HTTP %d: %s", kind, endpoint, status, body)
}
