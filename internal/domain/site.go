package domain

import (
	"encoding/json"
	"time"
)

// SiteMode determines how the site's content is produced.
type SiteMode string

const (
	SiteModeScraped         SiteMode = "SCRAPED"
	SiteModeTemplateService SiteMode = "TEMPLATE_SERVICE"
	SiteModeTemplateProduct SiteMode = "TEMPLATE_PRODUCT"
)

// Valid reports whether the mode is one of the supported values.
func (m SiteMode) Valid() bool {
	switch m {
	case SiteModeScraped, SiteModeTemplateService, SiteModeTemplateProduct:
		return true
	}
	return false
}

// Template reports whether the mode instantiates a template from a questionnaire.
func (m SiteMode) Template() bool {
	return m == SiteModeTemplateService || m == SiteModeTemplateProduct
}

// SiteStatus enumerates the site lifecycle states.
type SiteStatus string

const (
	SiteStatusBuilding SiteStatus = "BUILDING"
	SiteStatusReady    SiteStatus = "READY"
	SiteStatusFailed   SiteStatus = "FAILED"
)

// Site is the persisted record of a tenant's generated website, latest known
// state. A tenant owns at most one site; the build pipeline is the only writer
// while Status is BUILDING.
type Site struct {
	ID            string
	TenantID      string
	Name          string
	Slug          string
	Mode          SiteMode
	SourceURL     string
	Status        SiteStatus
	BuildProgress int

	PageTree         json.RawMessage
	SEOData          json.RawMessage
	ExtractedContent json.RawMessage

	RepoURL          string
	DBURL            string
	HostingProjectID string
	DeploymentURL    string

	VoiceAgentID string
	VoiceConfig  json.RawMessage

	SearchConsole *SearchConsoleCreds

	DefaultLocale string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SearchConsoleCreds holds the tenant's search-console OAuth credentials and
// verification state. Tokens are rotated by the SEO publication stage.
type SearchConsoleCreds struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Expiry       time.Time `json:"expiry"`
	Verified     bool      `json:"verified"`
	SiteURL      string    `json:"site_url"`
}

// Expired reports whether the access token has passed its expiry at now.
func (c *SearchConsoleCreds) Expired(now time.Time) bool {
	if c == nil {
		return true
	}
	return !c.Expiry.IsZero() && now.After(c.Expiry)
}

// TokenPair is the result of a token refresh. RefreshToken is empty when the
// provider did not rotate it.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// ResourceHandles are the external infrastructure references acquired by the
// provisioning stage.
type ResourceHandles struct {
	RepoURL          string `json:"repo_url"`
	DBURL            string `json:"db_url"`
	HostingProjectID string `json:"hosting_project_id"`
	DeploymentURL    string `json:"deployment_url"`
}

// VoiceAgent describes a provisioned conversational agent for a site.
type VoiceAgent struct {
	AgentID string          `json:"agent_id"`
	Config  json.RawMessage `json:"config"`
}

// BusinessInfo carries the business metadata used by the voice and SEO stages.
type BusinessInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Industry    string `json:"industry"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
}
