package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"server/internal/domain"
	"server/internal/infra"
)

// Options controls how the scraper client is configured.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client talks to the external scraping engine. When no base URL is
// configured it falls back to fetching the source page directly and
// extracting a minimal content bundle, which keeps the pipeline operational
// in local and CI environments.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// NewClient builds a scraper client from options, applying defaults.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		logger:     opts.Logger,
	}
}

// Scrape extracts a structured content bundle for the given source URL.
func (c *Client) Scrape(ctx context.Context, sourceURL string) (*domain.ContentBundle, error) {
	if strings.TrimSpace(sourceURL) == "" {
		return nil, fmt.Errorf("scraper: source url is required")
	}
	if c.baseURL != "" {
		return c.scrapeRemote(ctx, sourceURL)
	}
	return c.scrapeDirect(ctx, sourceURL)
}

func (c *Client) scrapeRemote(ctx context.Context, sourceURL string) (*domain.ContentBundle, error) {
	payload, err := json.Marshal(map[string]string{"url": sourceURL})
	if err != nil {
		return nil, fmt.Errorf("scraper: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/scrape", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("scraper: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scraper: call scrape service: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%w: scrape service returned %d: %s", domain.ErrProviderFailure, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var bundle domain.ContentBundle
	if err := json.NewDecoder(resp.Body).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("scraper: decode bundle: %w", err)
	}
	if bundle.URL == "" {
		bundle.URL = sourceURL
	}
	return &bundle, nil
}

func (c *Client) scrapeDirect(ctx context.Context, sourceURL string) (*domain.ContentBundle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("scraper: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scraper: fetch source: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scraper: source returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("scraper: read source: %w", err)
	}

	html := string(body)
	title := extractTitle(html)
	description := extractMetaDescription(html)
	if c.logger != nil {
		c.logger.Debug().Str("url", sourceURL).Str("title", title).Msg("scraper: direct extraction")
	}
	return &domain.ContentBundle{
		URL:         sourceURL,
		Title:       title,
		Description: description,
		Pages: []domain.ScrapedPage{{
			Path:  "/",
			Title: title,
			Text:  extractHeadings(html),
			SEO: &domain.PageSEO{
				Title:       title,
				Description: description,
			},
		}},
	}, nil
}

var (
	titleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	metaRe  = regexp.MustCompile(`(?is)<meta[^>]+name=["']description["'][^>]+content=["']([^"']*)["']`)
	headRe  = regexp.MustCompile(`(?is)<h[12][^>]*>(.*?)</h[12]>`)
	tagRe   = regexp.MustCompile(`(?s)<[^>]+>`)
)

func extractTitle(html string) string {
	if m := titleRe.FindStringSubmatch(html); m != nil {
		return strings.TrimSpace(tagRe.ReplaceAllString(m[1], ""))
	}
	return ""
}

func extractMetaDescription(html string) string {
	if m := metaRe.FindStringSubmatch(html); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func extractHeadings(html string) string {
	var parts []string
	for _, m := range headRe.FindAllStringSubmatch(html, 8) {
		if text := strings.TrimSpace(tagRe.ReplaceAllString(m[1], "")); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}
