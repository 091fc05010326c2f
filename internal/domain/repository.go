package domain

import (
	"context"
	"encoding/json"
	"time"
)

// SiteRepository defines persistence for sites. The field-level setters let
// each pipeline stage persist its artifact as it completes, so partial results
// survive a later failure.
type SiteRepository interface {
	Create(ctx context.Context, site *Site) error
	GetByID(ctx context.Context, id string) (*Site, error)
	GetByTenant(ctx context.Context, tenantID string) (*Site, error)
	SetExtractedContent(ctx context.Context, siteID string, raw json.RawMessage) error
	SetPageTree(ctx context.Context, siteID string, tree json.RawMessage) error
	SetResources(ctx context.Context, siteID string, handles ResourceHandles) error
	SetVoiceAgent(ctx context.Context, siteID string, agent VoiceAgent) error
	SetSearchConsoleTokens(ctx context.Context, siteID string, tokens TokenPair) error
}

// SiteFinal is the combined artifact written in one atomic update when the
// pipeline finishes. Nil/empty fields are coalesced against what the stages
// already persisted.
type SiteFinal struct {
	PageTree   json.RawMessage
	SEOData    json.RawMessage
	Resources  *ResourceHandles
	VoiceAgent *VoiceAgent
}

// BuildJobRepository defines persistence for build jobs.
type BuildJobRepository interface {
	Create(ctx context.Context, job *BuildJob) error
	GetByID(ctx context.Context, jobID string) (*BuildJob, error)
}

// ProgressWriter owns every write that must touch the site and its job as a
// pair: checkpoint advances and the terminal settlement. Each method commits
// both record updates in a single transaction so pollers never observe a site
// and its job disagreeing about the build's state. Checkpoint implementations
// must never move progress backwards.
type ProgressWriter interface {
	Checkpoint(ctx context.Context, siteID, jobID string, progress int) error
	Complete(ctx context.Context, siteID, jobID string, final SiteFinal, completedAt time.Time) error
	Fail(ctx context.Context, siteID, jobID string, errMsg string) error
}
