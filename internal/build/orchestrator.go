package build

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"server/internal/content"
	"server/internal/domain"
	"server/internal/infra"
	"server/internal/provision"
	"server/internal/seo"
	"server/internal/slug"
	"server/internal/voice"
)

// Default stage deadlines. Resource provisioning is a required stage, so its
// timeout fails the build; the voice deadline only abandons the agent.
const (
	DefaultProvisionTimeout = 180 * time.Second
	DefaultVoiceTimeout     = 60 * time.Second
)

// ContentStage is the two-phase content acquisition collaborator.
type ContentStage interface {
	Fetch(ctx context.Context, req content.Request) (*content.Material, error)
	Build(ctx context.Context, m *content.Material) (*content.Result, error)
}

// SEOPublisher runs the best-effort publication stage.
type SEOPublisher interface {
	Publish(ctx context.Context, in seo.Input) *seo.Publication
}

// Scheduler detaches pipeline execution from the request lifecycle.
type Scheduler interface {
	Schedule(name string, fn func(ctx context.Context))
}

// ArtifactStore persists derived build artifacts for local serving and
// export. Optional; writes are best-effort.
type ArtifactStore interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
}

// Options wires an Orchestrator.
type Options struct {
	Sites       domain.SiteRepository
	Jobs        domain.BuildJobRepository
	Progress    domain.ProgressWriter
	Content     ContentStage
	Provisioner provision.Provisioner
	Voice       voice.Provisioner
	SEO         SEOPublisher
	Scheduler   Scheduler
	Artifacts   ArtifactStore
	Logger      infra.Logger

	ProvisionTimeout time.Duration
	VoiceTimeout     time.Duration
	Now              func() time.Time
}

// Orchestrator sequences the build pipeline: it validates and persists the
// initial Site/BuildJob pair synchronously, then drives the staged pipeline in
// the background, checkpointing progress to both records after each stage and
// settling them into a terminal state.
type Orchestrator struct {
	sites       domain.SiteRepository
	jobs        domain.BuildJobRepository
	progress    domain.ProgressWriter
	content     ContentStage
	provisioner provision.Provisioner
	voice       voice.Provisioner
	seo         SEOPublisher
	scheduler   Scheduler
	artifacts   ArtifactStore
	logger      infra.Logger

	provisionTimeout time.Duration
	voiceTimeout     time.Duration
	now              func() time.Time
}

// NewOrchestrator constructs an Orchestrator, applying defaults.
func NewOrchestrator(opts Options) *Orchestrator {
	o := &Orchestrator{
		sites:            opts.Sites,
		jobs:             opts.Jobs,
		progress:         opts.Progress,
		content:          opts.Content,
		provisioner:      opts.Provisioner,
		voice:            opts.Voice,
		seo:              opts.SEO,
		scheduler:        opts.Scheduler,
		artifacts:        opts.Artifacts,
		logger:           opts.Logger,
		provisionTimeout: opts.ProvisionTimeout,
		voiceTimeout:     opts.VoiceTimeout,
		now:              opts.Now,
	}
	if o.provisionTimeout <= 0 {
		o.provisionTimeout = DefaultProvisionTimeout
	}
	if o.voiceTimeout <= 0 {
		o.voiceTimeout = DefaultVoiceTimeout
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// BuildRequest is the create-build entry point's payload.
type BuildRequest struct {
	TenantID      string
	Name          string
	Mode          domain.SiteMode
	SourceURL     string
	TemplateID    string
	Questionnaire domain.Questionnaire
	EnableVoice   bool
	SearchConsole *domain.SearchConsoleCreds
	DefaultLocale string
}

func (r BuildRequest) validate() error {
	switch {
	case r.TenantID == "":
		return fmt.Errorf("%w: tenantId is required", domain.ErrValidation)
	case r.Name == "":
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	case !r.Mode.Valid():
		return fmt.Errorf("%w: mode %q is not supported", domain.ErrValidation, r.Mode)
	case r.Mode == domain.SiteModeScraped && r.SourceURL == "":
		return fmt.Errorf("%w: sourceUrl is required for scraped sites", domain.ErrValidation)
	case r.Mode.Template() && r.TemplateID == "":
		return fmt.Errorf("%w: templateId is required for template sites", domain.ErrValidation)
	case r.Mode.Template() && len(r.Questionnaire) == 0:
		return fmt.Errorf("%w: questionnaireAnswers are required for template sites", domain.ErrValidation)
	}
	return nil
}

// StartBuild validates the request, persists the initial records and
// schedules the pipeline. It returns immediately; callers observe progress by
// polling the Site and BuildJob records.
func (o *Orchestrator) StartBuild(ctx context.Context, req BuildRequest) (siteID, jobID string, err error) {
	if err := req.validate(); err != nil {
		return "", "", err
	}
	if _, err := o.sites.GetByTenant(ctx, req.TenantID); err == nil {
		return "", "", domain.ErrSiteExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", "", fmt.Errorf("check tenant site: %w", err)
	}

	now := o.now()
	site := &domain.Site{
		ID:            uuid.NewString(),
		TenantID:      req.TenantID,
		Name:          req.Name,
		Slug:          slug.Make(req.Name),
		Mode:          req.Mode,
		SourceURL:     req.SourceURL,
		Status:        domain.SiteStatusBuilding,
		BuildProgress: 0,
		SearchConsole: req.SearchConsole,
		DefaultLocale: req.DefaultLocale,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	job := &domain.BuildJob{
		ID:        uuid.NewString(),
		SiteID:    site.ID,
		Kind:      domain.JobKindInitial,
		Status:    domain.JobStatusInProgress,
		Progress:  0,
		StartedAt: now,
	}
	if err := o.sites.Create(ctx, site); err != nil {
		return "", "", fmt.Errorf("create site: %w", err)
	}
	if err := o.jobs.Create(ctx, job); err != nil {
		return "", "", fmt.Errorf("create build job: %w", err)
	}

	o.scheduler.Schedule("build "+site.ID, func(runCtx context.Context) {
		o.run(runCtx, site, job, req)
	})
	return site.ID, job.ID, nil
}

// run executes the staged pipeline. Content acquisition and resource
// provisioning are required stages; voice integration and SEO publication are
// best-effort and can never fail the build.
func (o *Orchestrator) run(ctx context.Context, site *domain.Site, job *domain.BuildJob, req BuildRequest) {
	log := o.logger.With().Str("site_id", site.ID).Str("job_id", job.ID).Logger()
	log.Info().Str("mode", string(site.Mode)).Msg("build: pipeline started")

	material, err := o.content.Fetch(ctx, content.Request{
		Mode:          req.Mode,
		SourceURL:     req.SourceURL,
		TemplateID:    req.TemplateID,
		Questionnaire: req.Questionnaire,
	})
	if err != nil {
		o.fail(ctx, log, site, job, "content acquisition", err)
		return
	}
	if len(material.RawExtract) > 0 {
		if err := o.sites.SetExtractedContent(ctx, site.ID, material.RawExtract); err != nil {
			o.fail(ctx, log, site, job, "content acquisition", err)
			return
		}
	}
	o.checkpoint(ctx, log, site, job, domain.CheckpointContentAcquired)

	result, err := o.content.Build(ctx, material)
	if err != nil {
		o.fail(ctx, log, site, job, "structure build", err)
		return
	}
	if err := o.sites.SetPageTree(ctx, site.ID, result.TreeJSON); err != nil {
		o.fail(ctx, log, site, job, "structure build", err)
		return
	}
	o.checkpoint(ctx, log, site, job, domain.CheckpointStructureBuilt)

	handles, err := o.provisionResources(ctx, site)
	if err != nil {
		o.fail(ctx, log, site, job, "resource provisioning", err)
		return
	}
	if err := o.sites.SetResources(ctx, site.ID, handles); err != nil {
		o.fail(ctx, log, site, job, "resource provisioning", err)
		return
	}
	o.checkpoint(ctx, log, site, job, domain.CheckpointResourcesProvisioned)

	agent := o.attemptVoice(ctx, log, site, req)
	o.checkpoint(ctx, log, site, job, domain.CheckpointVoiceStageAttempted)

	pub := o.seo.Publish(ctx, seo.Input{
		SiteID:        site.ID,
		Tree:          result.Tree,
		Seed:          result.Seed,
		Business:      businessFor(site, req, result),
		DeploymentURL: handles.DeploymentURL,
		Creds:         site.SearchConsole,
	})
	if pub.RefreshedTokens != nil {
		if err := o.sites.SetSearchConsoleTokens(ctx, site.ID, *pub.RefreshedTokens); err != nil {
			log.Warn().Err(err).Msg("build: persist refreshed tokens failed")
		}
	}
	o.storeArtifacts(ctx, log, site, pub.Data)
	o.checkpoint(ctx, log, site, job, domain.CheckpointSEOPublished)

	seoJSON, err := json.Marshal(pub.Data)
	if err != nil {
		log.Warn().Err(err).Msg("build: encode seo data failed")
		seoJSON = nil
	}
	final := domain.SiteFinal{
		PageTree:   result.TreeJSON,
		SEOData:    seoJSON,
		Resources:  &handles,
		VoiceAgent: agent,
	}
	if err := o.progress.Complete(ctx, site.ID, job.ID, final, o.now()); err != nil {
		o.fail(ctx, log, site, job, "finalize", err)
		return
	}
	log.Info().Msg("build: pipeline completed")
}

// provisionResources races the provisioner against the stage deadline. The
// race resolves at the deadline even if the underlying call is still running.
func (o *Orchestrator) provisionResources(ctx context.Context, site *domain.Site) (domain.ResourceHandles, error) {
	type outcome struct {
		handles domain.ResourceHandles
		err     error
	}
	cctx, cancel := context.WithTimeout(ctx, o.provisionTimeout)
	defer cancel()

	ch := make(chan outcome, 1)
	go func() {
		h, err := o.provisioner.Provision(cctx, provision.Request{
			SiteID:   site.ID,
			Slug:     site.Slug,
			TenantID: site.TenantID,
		})
		ch <- outcome{handles: h, err: err}
	}()

	select {
	case out := <-ch:
		return out.handles, out.err
	case <-cctx.Done():
		return domain.ResourceHandles{}, fmt.Errorf("no result after %s: %w", o.provisionTimeout, domain.ErrStageTimeout)
	}
}

// attemptVoice runs the optional voice stage under its deadline. Errors and
// timeouts are swallowed; the build continues with no agent.
func (o *Orchestrator) attemptVoice(ctx context.Context, log zerolog.Logger, site *domain.Site, req BuildRequest) *domain.VoiceAgent {
	if !req.EnableVoice || o.voice == nil {
		return nil
	}
	cctx, cancel := context.WithTimeout(ctx, o.voiceTimeout)
	defer cancel()

	ch := make(chan *domain.VoiceAgent, 1)
	errCh := make(chan error, 1)
	go func() {
		agent, err := o.voice.Provision(cctx, voice.Request{
			SiteID:   site.ID,
			SiteName: site.Name,
			TenantID: site.TenantID,
			Business: req.Questionnaire.Business(),
		})
		if err != nil {
			errCh <- err
			return
		}
		ch <- agent
	}()

	select {
	case agent := <-ch:
		if agent == nil {
			return nil
		}
		if err := o.sites.SetVoiceAgent(ctx, site.ID, *agent); err != nil {
			log.Warn().Err(err).Msg("build: persist voice agent failed")
			return nil
		}
		return agent
	case err := <-errCh:
		log.Warn().Err(err).Msg("build: voice integration failed, continuing without agent")
		return nil
	case <-cctx.Done():
		log.Warn().Dur("deadline", o.voiceTimeout).Msg("build: voice integration timed out, continuing without agent")
		return nil
	}
}

// storeArtifacts writes the derived SEO artifacts under the site's slug so
// local environments can serve and export them.
func (o *Orchestrator) storeArtifacts(ctx context.Context, log zerolog.Logger, site *domain.Site, data domain.SEOData) {
	if o.artifacts == nil {
		return
	}
	files := map[string]string{
		site.Slug + "/sitemap.xml": data.SitemapXML,
		site.Slug + "/robots.txt":  data.RobotsTxt,
	}
	if len(data.StructuredData) > 0 {
		files[site.Slug+"/structured-data.json"] = string(data.StructuredData)
	}
	for key, body := range files {
		if body == "" {
			continue
		}
		if _, err := o.artifacts.Write(ctx, key, []byte(body)); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("build: store artifact failed")
		}
	}
}

func (o *Orchestrator) checkpoint(ctx context.Context, log zerolog.Logger, site *domain.Site, job *domain.BuildJob, progress int) {
	if err := o.progress.Checkpoint(ctx, site.ID, job.ID, progress); err != nil {
		log.Error().Err(err).Int("progress", progress).Msg("build: checkpoint write failed")
		return
	}
	log.Debug().Int("progress", progress).Msg("build: checkpoint")
}

func (o *Orchestrator) fail(ctx context.Context, log zerolog.Logger, site *domain.Site, job *domain.BuildJob, stage string, err error) {
	log.Error().Err(err).Str("stage", stage).Msg("build: required stage failed")
	msg := fmt.Sprintf("%s: %v", stage, err)
	if e := o.progress.Fail(ctx, site.ID, job.ID, msg); e != nil {
		log.Error().Err(e).Msg("build: settle failed state errored")
	}
}

func businessFor(site *domain.Site, req BuildRequest, result *content.Result) domain.BusinessInfo {
	if len(req.Questionnaire) > 0 {
		return req.Questionnaire.Business()
	}
	return domain.BusinessInfo{Name: site.Name, Description: result.Seed.Description}
}
