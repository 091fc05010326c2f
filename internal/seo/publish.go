package seo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"server/internal/domain"
	"server/internal/infra"
)

// Refreshed access tokens are given a fixed validity horizon rather than
// trusting the provider's expires_in.
const tokenValidity = time.Hour

// Maximum number of non-home top-level pages submitted for indexing.
const maxIndexingPages = 5

// TokenRefresher exchanges an expired credential for a fresh token pair.
type TokenRefresher interface {
	Refresh(ctx context.Context, creds domain.SearchConsoleCreds) (domain.TokenPair, error)
}

// Submitter performs the search-console publication calls.
type Submitter interface {
	SubmitSitemap(ctx context.Context, accessToken, siteURL, sitemapURL string) error
	RequestIndexing(ctx context.Context, accessToken, pageURL string) error
}

// Publisher runs the SEO publication stage. The stage is best-effort end to
// end: every sub-step failure is logged and recorded as a warning, and
// Publish never returns an error.
type Publisher struct {
	refresher TokenRefresher
	submitter Submitter
	logger    *infra.Logger
	now       func() time.Time
}

// NewPublisher wires the publication stage. The refresher and submitter may
// be nil, in which case search-console submission is skipped entirely.
func NewPublisher(refresher TokenRefresher, submitter Submitter, logger *infra.Logger) *Publisher {
	return &Publisher{refresher: refresher, submitter: submitter, logger: logger, now: time.Now}
}

// Input carries everything the stage derives its artifacts from.
type Input struct {
	SiteID        string
	Tree          domain.PageTree
	Seed          domain.SEOData
	Business      domain.BusinessInfo
	DeploymentURL string
	Creds         *domain.SearchConsoleCreds
}

// Publication is the stage's result. RefreshedTokens is non-nil when the
// access token was rotated and must be persisted onto the site.
type Publication struct {
	Data            domain.SEOData
	RefreshedTokens *domain.TokenPair
}

// Publish derives sitemap, robots and structured data, then, when
// credentials and a deployment URL exist, refreshes the token if expired and
// submits the sitemap plus indexing requests.
func (p *Publisher) Publish(ctx context.Context, in Input) *Publication {
	pub := &Publication{Data: in.Seed}
	data := &pub.Data

	sitemap, err := BuildSitemap(in.Tree, in.DeploymentURL, p.now())
	if err != nil {
		p.warn(data, in.SiteID, "build sitemap", err)
	} else {
		data.SitemapXML = sitemap
	}
	data.RobotsTxt = BuildRobots(in.DeploymentURL)
	structured, err := BuildStructuredData(in.Tree, in.Business, in.DeploymentURL)
	if err != nil {
		p.warn(data, in.SiteID, "build structured data", err)
	} else {
		data.StructuredData = structured
	}

	if in.Creds == nil || in.DeploymentURL == "" || p.submitter == nil {
		return pub
	}

	token := in.Creds.AccessToken
	if in.Creds.Expired(p.now()) && p.refresher != nil {
		pair, err := p.refresher.Refresh(ctx, *in.Creds)
		if err != nil {
			p.warn(data, in.SiteID, "refresh token", err)
		} else {
			pair.Expiry = p.now().Add(tokenValidity)
			pub.RefreshedTokens = &pair
			token = pair.AccessToken
		}
	}

	siteURL := in.Creds.SiteURL
	if siteURL == "" {
		siteURL = in.DeploymentURL
	}
	sitemapURL := strings.TrimRight(in.DeploymentURL, "/") + "/sitemap.xml"
	if err := p.submitter.SubmitSitemap(ctx, token, siteURL, sitemapURL); err != nil {
		p.warn(data, in.SiteID, "submit sitemap", err)
	} else {
		data.SitemapSubmitted = true
	}

	for _, pageURL := range indexingTargets(in.Tree, in.DeploymentURL) {
		if err := p.submitter.RequestIndexing(ctx, token, pageURL); err != nil {
			p.warn(data, in.SiteID, "request indexing", err)
			continue
		}
		data.IndexingRequested++
	}
	return pub
}

// indexingTargets returns the home page URL followed by up to five other
// top-level page URLs.
func indexingTargets(tree domain.PageTree, deploymentURL string) []string {
	base := strings.TrimRight(deploymentURL, "/")
	targets := make([]string, 0, maxIndexingPages+1)
	if home := tree.Home(); home != nil {
		targets = append(targets, pageURL(base, home.Path))
	}
	extra := 0
	for _, pg := range tree.Pages {
		if pg.Path == "/" || pg.ID == "home" {
			continue
		}
		if strings.Count(pg.Path, "/") != 1 {
			continue
		}
		if extra >= maxIndexingPages {
			break
		}
		targets = append(targets, pageURL(base, pg.Path))
		extra++
	}
	return targets
}

func (p *Publisher) warn(data *domain.SEOData, siteID, step string, err error) {
	data.Warnings = append(data.Warnings, fmt.Sprintf("%s: %v", step, err))
	if p.logger != nil {
		p.logger.Warn().Err(err).Str("site_id", siteID).Str("step", step).Msg("seo: publication sub-step failed")
	}
}
