package seo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"server/internal/domain"
	"server/internal/infra"
)

// ConsoleOptions controls how the search-console client is configured.
type ConsoleOptions struct {
	BaseURL         string
	IndexingBaseURL string
	TokenURL        string
	ClientID        string
	ClientSecret    string
	HTTPClient      *http.Client
	Logger          *infra.Logger
}

// Console integrates with the search-console APIs: OAuth token refresh,
// sitemap submission and indexing requests.
type Console struct {
	baseURL         string
	indexingBaseURL string
	tokenURL        string
	clientID        string
	clientSecret    string
	httpClient      *http.Client
	logger          *infra.Logger
}

// NewConsole builds a search-console client from options, applying defaults.
func NewConsole(opts ConsoleOptions) *Console {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Console{
		baseURL:         strings.TrimRight(opts.BaseURL, "/"),
		indexingBaseURL: strings.TrimRight(opts.IndexingBaseURL, "/"),
		tokenURL:        opts.TokenURL,
		clientID:        opts.ClientID,
		clientSecret:    opts.ClientSecret,
		httpClient:      httpClient,
		logger:          opts.Logger,
	}
}

// Refresh exchanges the refresh token for a new access token. The returned
// pair's RefreshToken is empty unless the provider rotated it; Expiry is left
// zero for the caller to set.
func (c *Console) Refresh(ctx context.Context, creds domain.SearchConsoleCreds) (domain.TokenPair, error) {
	var pair domain.TokenPair
	if creds.RefreshToken == "" {
		return pair, fmt.Errorf("searchconsole: no refresh token")
	}
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {creds.RefreshToken},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return pair, fmt.Errorf("searchconsole: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pair, fmt.Errorf("searchconsole: refresh token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return pair, fmt.Errorf("searchconsole: token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return pair, fmt.Errorf("searchconsole: decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return pair, fmt.Errorf("searchconsole: token endpoint returned no access token")
	}
	pair.AccessToken = payload.AccessToken
	pair.RefreshToken = payload.RefreshToken
	return pair, nil
}

// SubmitSitemap registers the sitemap with the search console for siteURL.
func (c *Console) SubmitSitemap(ctx context.Context, accessToken, siteURL, sitemapURL string) error {
	endpoint := fmt.Sprintf("%s/sites/%s/sitemaps/%s",
		c.baseURL, url.PathEscape(siteURL), url.PathEscape(sitemapURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, nil)
	if err != nil {
		return fmt.Errorf("searchconsole: build sitemap request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("searchconsole: submit sitemap: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("searchconsole: sitemap submission returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// RequestIndexing notifies the indexing API that pageURL was updated.
func (c *Console) RequestIndexing(ctx context.Context, accessToken, pageURL string) error {
	payload, err := json.Marshal(map[string]string{"url": pageURL, "type": "URL_UPDATED"})
	if err != nil {
		return fmt.Errorf("searchconsole: encode indexing request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.indexingBaseURL+"/urlNotifications:publish", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("searchconsole: build indexing request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("searchconsole: request indexing: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("searchconsole: indexing returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
