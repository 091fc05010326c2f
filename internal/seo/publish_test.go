package seo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"server/internal/domain"
)

var testTree = domain.PageTree{Pages: []domain.Page{
	{ID: "home", Path: "/", Title: "Acme", SEO: &domain.PageSEO{Title: "Acme | Plumbing", Description: "Trusted plumbers"}},
	{ID: "about", Path: "/about", Title: "About"},
	{ID: "services", Path: "/services", Title: "Services"},
	{ID: "contact", Path: "/contact", Title: "Contact"},
	{ID: "blog-post", Path: "/blog/first-post", Title: "Post"},
}}

type fakeRefresher struct {
	pair  domain.TokenPair
	err   error
	calls int
}

func (f *fakeRefresher) Refresh(ctx context.Context, creds domain.SearchConsoleCreds) (domain.TokenPair, error) {
	f.calls++
	return f.pair, f.err
}

type fakeSubmitter struct {
	sitemapErr  error
	indexingErr error

	sitemapCalls  int
	sitemapToken  string
	indexingCalls int
	indexedURLs   []string
}

func (f *fakeSubmitter) SubmitSitemap(ctx context.Context, token, siteURL, sitemapURL string) error {
	f.sitemapCalls++
	f.sitemapToken = token
	return f.sitemapErr
}

func (f *fakeSubmitter) RequestIndexing(ctx context.Context, token, pageURL string) error {
	f.indexingCalls++
	f.indexedURLs = append(f.indexedURLs, pageURL)
	return f.indexingErr
}

func TestPublishAlwaysDerivesArtifacts(t *testing.T) {
	p := NewPublisher(nil, nil, nil)
	pub := p.Publish(context.Background(), Input{
		Tree:          testTree,
		Business:      domain.BusinessInfo{Name: "Acme", Phone: "+1-555-0100"},
		DeploymentURL: "https://acme.sites.example",
	})

	if !strings.Contains(pub.Data.SitemapXML, "https://acme.sites.example/about") {
		t.Fatalf("sitemap missing page url:\n%s", pub.Data.SitemapXML)
	}
	if !strings.Contains(pub.Data.RobotsTxt, "Sitemap: https://acme.sites.example/sitemap.xml") {
		t.Fatalf("robots missing sitemap line:\n%s", pub.Data.RobotsTxt)
	}
	if !strings.Contains(string(pub.Data.StructuredData), `"LocalBusiness"`) {
		t.Fatalf("structured data missing type: %s", pub.Data.StructuredData)
	}
	if pub.RefreshedTokens != nil {
		t.Fatal("no credentials were supplied, nothing to refresh")
	}
}

func TestPublishRefreshesExpiredTokenExactlyOnce(t *testing.T) {
	refresher := &fakeRefresher{pair: domain.TokenPair{AccessToken: "fresh", RefreshToken: "rotated"}}
	submitter := &fakeSubmitter{}
	p := NewPublisher(refresher, submitter, nil)
	start := time.Now()

	pub := p.Publish(context.Background(), Input{
		Tree:          testTree,
		DeploymentURL: "https://acme.sites.example",
		Creds: &domain.SearchConsoleCreds{
			AccessToken:  "stale",
			RefreshToken: "r1",
			Expiry:       start.Add(-time.Minute),
		},
	})

	if refresher.calls != 1 {
		t.Fatalf("refresh must happen exactly once, got %d", refresher.calls)
	}
	if pub.RefreshedTokens == nil || pub.RefreshedTokens.AccessToken != "fresh" {
		t.Fatalf("refreshed tokens not captured: %#v", pub.RefreshedTokens)
	}
	if got := pub.RefreshedTokens.Expiry.Sub(start); got < 59*time.Minute || got > 61*time.Minute {
		t.Fatalf("expiry should be about one hour out, got %s", got)
	}
	if submitter.sitemapToken != "fresh" {
		t.Fatalf("submission should use refreshed token, got %q", submitter.sitemapToken)
	}
}

func TestPublishSkipsRefreshWhenTokenValid(t *testing.T) {
	refresher := &fakeRefresher{}
	submitter := &fakeSubmitter{}
	p := NewPublisher(refresher, submitter, nil)

	p.Publish(context.Background(), Input{
		Tree:          testTree,
		DeploymentURL: "https://acme.sites.example",
		Creds: &domain.SearchConsoleCreds{
			AccessToken:  "valid",
			RefreshToken: "r1",
			Expiry:       time.Now().Add(time.Hour),
		},
	})

	if refresher.calls != 0 {
		t.Fatalf("valid token must not be refreshed, got %d calls", refresher.calls)
	}
	if submitter.sitemapToken != "valid" {
		t.Fatalf("submission should use existing token, got %q", submitter.sitemapToken)
	}
}

func TestPublishIndexesHomePlusTopLevelPages(t *testing.T) {
	submitter := &fakeSubmitter{}
	p := NewPublisher(nil, submitter, nil)

	pub := p.Publish(context.Background(), Input{
		Tree:          testTree,
		DeploymentURL: "https://acme.sites.example",
		Creds:         &domain.SearchConsoleCreds{AccessToken: "tok", Expiry: time.Now().Add(time.Hour)},
	})

	if submitter.indexedURLs[0] != "https://acme.sites.example/" {
		t.Fatalf("home must be indexed first, got %q", submitter.indexedURLs[0])
	}
	for _, u := range submitter.indexedURLs {
		if strings.Contains(u, "/blog/") {
			t.Fatalf("nested page should not be indexed: %q", u)
		}
	}
	// home + about + services + contact
	if pub.Data.IndexingRequested != 4 {
		t.Fatalf("expected 4 indexing requests, got %d", pub.Data.IndexingRequested)
	}
	if !pub.Data.SitemapSubmitted {
		t.Fatal("sitemap submission should be recorded")
	}
}

func TestPublishSubStepFailuresAreIsolated(t *testing.T) {
	refresher := &fakeRefresher{err: errors.New("token endpoint down")}
	submitter := &fakeSubmitter{sitemapErr: errors.New("quota exceeded")}
	p := NewPublisher(refresher, submitter, nil)

	pub := p.Publish(context.Background(), Input{
		Tree:          testTree,
		DeploymentURL: "https://acme.sites.example",
		Creds: &domain.SearchConsoleCreds{
			AccessToken:  "stale",
			RefreshToken: "r1",
			Expiry:       time.Now().Add(-time.Minute),
		},
	})

	if submitter.sitemapCalls != 1 {
		t.Fatal("failed refresh must not stop sitemap submission")
	}
	if submitter.indexingCalls == 0 {
		t.Fatal("failed sitemap submission must not stop indexing requests")
	}
	if pub.Data.SitemapSubmitted {
		t.Fatal("failed submission must not be recorded as success")
	}
	if len(pub.Data.Warnings) < 2 {
		t.Fatalf("expected warnings for refresh and sitemap failures, got %#v", pub.Data.Warnings)
	}
	if pub.Data.SitemapXML == "" || pub.Data.RobotsTxt == "" {
		t.Fatal("artifacts must be derived regardless of submission failures")
	}
}
