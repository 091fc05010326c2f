package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/infra"
)

// Request describes the agent to provision for a site.
type Request struct {
	SiteID   string              `json:"site_id"`
	SiteName string              `json:"site_name"`
	TenantID string              `json:"tenant_id"`
	Business domain.BusinessInfo `json:"business"`
}

// Provisioner creates a conversational voice agent tied to a site.
type Provisioner interface {
	Provision(ctx context.Context, req Request) (*domain.VoiceAgent, error)
}

// Options controls how the voice client is configured.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client talks to the voice-agent platform. Without a base URL it fabricates
// a deterministic agent so opted-in builds still exercise the stage locally.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// NewClient builds a voice client from options, applying defaults.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		logger:     opts.Logger,
	}
}

// Provision creates the agent and returns its id and configuration.
func (c *Client) Provision(ctx context.Context, req Request) (*domain.VoiceAgent, error) {
	if c.baseURL == "" {
		return c.syntheticAgent(req)
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("voice: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/agents", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("voice: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("voice: call agent platform: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%w: agent platform returned %d: %s", domain.ErrProviderFailure, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var agent domain.VoiceAgent
	if err := json.NewDecoder(resp.Body).Decode(&agent); err != nil {
		return nil, fmt.Errorf("voice: decode agent: %w", err)
	}
	if agent.AgentID == "" {
		return nil, fmt.Errorf("voice: agent platform returned no agent id")
	}
	return &agent, nil
}

func (c *Client) syntheticAgent(req Request) (*domain.VoiceAgent, error) {
	cfg, err := json.Marshal(map[string]any{
		"greeting": fmt.Sprintf("Thanks for calling %s, how can I help?", req.SiteName),
		"language": "en",
		"business": req.Business,
	})
	if err != nil {
		return nil, fmt.Errorf("voice: encode synthetic config: %w", err)
	}
	if c.logger != nil {
		c.logger.Warn().Str("site_id", req.SiteID).Msg("voice: no platform configured, using synthetic agent")
	}
	return &domain.VoiceAgent{AgentID: "local-" + uuid.NewString(), Config: cfg}, nil
}

var _ Provisioner = (*Client)(nil)
