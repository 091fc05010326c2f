package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/providers/template"
)

// Scraper is the external scraping collaborator.
type Scraper interface {
	Scrape(ctx context.Context, sourceURL string) (*domain.ContentBundle, error)
}

// Renderer is the template-instantiation collaborator.
type Renderer interface {
	Render(ctx context.Context, kind template.Kind, templateID string, q domain.Questionnaire) (domain.PageTree, error)
	Merge(ctx context.Context, kind template.Kind, templateID string, bundle *domain.ContentBundle) (domain.PageTree, error)
}

// Stage acquires site content in two phases: Fetch pulls the raw material
// (scrape or questionnaire) and Build assembles the page tree from it. Both
// phases are required; any error aborts the pipeline.
type Stage struct {
	scraper Scraper
	engine  Renderer
	logger  *infra.Logger
}

// NewStage wires the acquisition stage.
func NewStage(scraper Scraper, engine Renderer, logger *infra.Logger) *Stage {
	return &Stage{scraper: scraper, engine: engine, logger: logger}
}

// Request describes what to acquire.
type Request struct {
	Mode          domain.SiteMode
	SourceURL     string
	TemplateID    string
	Questionnaire domain.Questionnaire
}

// Material is the fetched raw content. RawExtract is present only for scraped
// sites and is persisted verbatim for audit even if later stages fail.
type Material struct {
	Request    Request
	Bundle     *domain.ContentBundle
	RawExtract json.RawMessage
}

// Result is the assembled structure plus the site-level SEO seed.
type Result struct {
	Tree     domain.PageTree
	TreeJSON json.RawMessage
	Seed     domain.SEOData
}

// Fetch pulls the raw material for the requested mode.
func (s *Stage) Fetch(ctx context.Context, req Request) (*Material, error) {
	switch {
	case req.Mode == domain.SiteModeScraped:
		bundle, err := s.scraper.Scrape(ctx, req.SourceURL)
		if err != nil {
			return nil, fmt.Errorf("content: scrape %s: %w", req.SourceURL, err)
		}
		raw, err := json.Marshal(bundle)
		if err != nil {
			return nil, fmt.Errorf("content: encode extract: %w", err)
		}
		return &Material{Request: req, Bundle: bundle, RawExtract: raw}, nil
	case req.Mode.Template():
		return &Material{Request: req}, nil
	default:
		return nil, fmt.Errorf("content: unsupported mode %q", req.Mode)
	}
}

// Build assembles the page tree from fetched material.
func (s *Stage) Build(ctx context.Context, m *Material) (*Result, error) {
	req := m.Request
	var (
		tree domain.PageTree
		err  error
	)
	switch {
	case req.Mode == domain.SiteModeScraped && req.TemplateID != "":
		// Template structure wins; scraped content fills it in.
		tree, err = s.engine.Merge(ctx, kindForTemplateID(req.TemplateID), req.TemplateID, m.Bundle)
	case req.Mode == domain.SiteModeScraped:
		tree = treeFromBundle(m.Bundle)
	default:
		tree, err = s.engine.Render(ctx, kindForMode(req.Mode), req.TemplateID, req.Questionnaire)
	}
	if err != nil {
		return nil, fmt.Errorf("content: build structure: %w", err)
	}
	if len(tree.Pages) == 0 {
		return nil, fmt.Errorf("content: empty page tree")
	}

	raw, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("content: encode page tree: %w", err)
	}
	return &Result{Tree: tree, TreeJSON: raw, Seed: seedFrom(tree)}, nil
}

// treeFromBundle converts the raw scraped structure into a page tree directly.
func treeFromBundle(bundle *domain.ContentBundle) domain.PageTree {
	if bundle == nil {
		return domain.PageTree{}
	}
	tree := domain.PageTree{Pages: make([]domain.Page, 0, len(bundle.Pages))}
	for i, sp := range bundle.Pages {
		page := domain.Page{
			ID:    pageID(sp.Path, i),
			Path:  sp.Path,
			Title: sp.Title,
			SEO:   sp.SEO,
		}
		if page.SEO == nil {
			page.SEO = &domain.PageSEO{Title: sp.Title, Description: bundle.Description}
		}
		if sp.Text != "" {
			page.Sections = append(page.Sections, domain.Section{
				ID:      page.ID + "-text",
				Type:    "text",
				Content: map[string]any{"body": sp.Text},
			})
		}
		if len(sp.Images) > 0 {
			page.Sections = append(page.Sections, domain.Section{
				ID:      page.ID + "-gallery",
				Type:    "gallery",
				Content: map[string]any{"images": sp.Images},
			})
		}
		tree.Pages = append(tree.Pages, page)
	}
	return tree
}

func seedFrom(tree domain.PageTree) domain.SEOData {
	first := tree.Pages[0]
	seed := domain.SEOData{Title: first.Title}
	if first.SEO != nil {
		seed.Title = first.SEO.Title
		seed.Description = first.SEO.Description
		seed.Keywords = first.SEO.Keywords
	}
	return seed
}

func pageID(path string, idx int) string {
	if path == "/" || path == "" {
		return "home"
	}
	id := strings.Trim(strings.ReplaceAll(path, "/", "-"), "-")
	if id == "" {
		return fmt.Sprintf("page-%d", idx)
	}
	return id
}

func kindForMode(mode domain.SiteMode) template.Kind {
	if mode == domain.SiteModeTemplateProduct {
		return template.KindProduct
	}
	return template.KindService
}

func kindForTemplateID(templateID string) template.Kind {
	if strings.Contains(strings.ToLower(templateID), "product") {
		return template.KindProduct
	}
	return template.KindService
}
