package content

import (
	"context"
	"errors"
	"strings"
	"testing"

	"server/internal/domain"
	"server/internal/providers/template"
)

type stubScraper struct {
	bundle *domain.ContentBundle
	err    error
	calls  int
}

func (s *stubScraper) Scrape(ctx context.Context, url string) (*domain.ContentBundle, error) {
	s.calls++
	return s.bundle, s.err
}

func newStage(scraper Scraper) *Stage {
	return NewStage(scraper, template.NewEngine(nil), nil)
}

func TestTemplateModeSkipsScraper(t *testing.T) {
	sc := &stubScraper{}
	st := newStage(sc)

	m, err := st.Fetch(context.Background(), Request{
		Mode:          domain.SiteModeTemplateService,
		TemplateID:    "T1",
		Questionnaire: domain.Questionnaire{"businessName": "Acme"},
	})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if sc.calls != 0 {
		t.Fatal("scraper must not be called in template mode")
	}
	if m.RawExtract != nil {
		t.Fatal("rawExtract must be absent in template mode")
	}

	res, err := st.Build(context.Background(), m)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if !strings.Contains(res.Seed.Title, "Acme") {
		t.Fatalf("seo seed should derive from business name, got %q", res.Seed.Title)
	}
	if len(res.TreeJSON) == 0 {
		t.Fatal("tree json must be populated")
	}
}

func TestScrapedModePropagatesScrapeError(t *testing.T) {
	sc := &stubScraper{err: errors.New("dns failure")}
	st := newStage(sc)

	_, err := st.Fetch(context.Background(), Request{
		Mode:      domain.SiteModeScraped,
		SourceURL: "https://bad.example",
	})
	if err == nil {
		t.Fatal("expected scrape error to propagate")
	}
}

func TestScrapedModeKeepsRawStructureWithoutTemplate(t *testing.T) {
	sc := &stubScraper{bundle: &domain.ContentBundle{
		URL:   "https://acme.example",
		Title: "Acme",
		Pages: []domain.ScrapedPage{
			{Path: "/", Title: "Acme", Text: "hello"},
			{Path: "/pricing", Title: "Pricing", Text: "cheap"},
		},
	}}
	st := newStage(sc)

	m, err := st.Fetch(context.Background(), Request{Mode: domain.SiteModeScraped, SourceURL: "https://acme.example"})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(m.RawExtract) == 0 {
		t.Fatal("rawExtract must be persisted for scraped mode")
	}

	res, err := st.Build(context.Background(), m)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(res.Tree.Pages) != 2 {
		t.Fatalf("raw scraped structure should be kept, got %d pages", len(res.Tree.Pages))
	}
	if res.Tree.Pages[1].ID != "pricing" {
		t.Fatalf("page id should derive from path, got %q", res.Tree.Pages[1].ID)
	}
}

func TestScrapedModeMergesIntoTemplateWhenIDSupplied(t *testing.T) {
	sc := &stubScraper{bundle: &domain.ContentBundle{
		URL:   "https://acme.example",
		Title: "Acme",
		Pages: []domain.ScrapedPage{
			{Path: "/", Title: "Acme", Text: "hello"},
			{Path: "/pricing", Title: "Pricing", Text: "cheap"},
		},
	}}
	st := newStage(sc)

	m, err := st.Fetch(context.Background(), Request{
		Mode:       domain.SiteModeScraped,
		SourceURL:  "https://acme.example",
		TemplateID: "service-classic",
	})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	res, err := st.Build(context.Background(), m)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	for _, p := range res.Tree.Pages {
		if p.Path == "/pricing" {
			t.Fatal("template structure should win over scraped layout")
		}
	}
}
