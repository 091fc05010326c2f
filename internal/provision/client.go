package provision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"server/internal/domain"
	"server/internal/infra"
)

// Request identifies the site whose infrastructure should be created.
type Request struct {
	SiteID   string `json:"site_id"`
	Slug     string `json:"slug"`
	TenantID string `json:"tenant_id"`
}

// Provisioner acquires external infrastructure handles for a site. Retries
// are owned by the collaborator; callers only race the call against a
// deadline.
type Provisioner interface {
	Provision(ctx context.Context, req Request) (domain.ResourceHandles, error)
}

// Options controls how the provisioning client is configured.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client calls the external resource-provisioning service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// NewClient builds a provisioning client from options, applying defaults.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		// The deadline race in the orchestrator bounds the call; keep the
		// transport timeout above it.
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		logger:     opts.Logger,
	}
}

// Provision asks the collaborator to create repo, database and hosting for
// the site and returns the resulting handles.
func (c *Client) Provision(ctx context.Context, req Request) (domain.ResourceHandles, error) {
	var handles domain.ResourceHandles
	if c.baseURL == "" {
		return handles, fmt.Errorf("provision: no provisioner configured")
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return handles, fmt.Errorf("provision: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/provision", bytes.NewReader(payload))
	if err != nil {
		return handles, fmt.Errorf("provision: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return handles, fmt.Errorf("provision: call provisioner: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return handles, fmt.Errorf("%w: provisioner returned %d: %s", domain.ErrProviderFailure, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(&handles); err != nil {
		return handles, fmt.Errorf("provision: decode handles: %w", err)
	}
	if handles.DeploymentURL == "" {
		return handles, fmt.Errorf("provision: provisioner returned no deployment url")
	}
	return handles, nil
}
