package template

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"server/internal/domain"
	"server/internal/infra"
)

// Kind selects which built-in template catalog a site is instantiated from.
type Kind string

const (
	KindService Kind = "service"
	KindProduct Kind = "product"
)

// Engine instantiates page trees from the built-in template catalogs. It
// stands in for the external template-rendering collaborator and is fully
// deterministic so builds work in local and CI environments.
type Engine struct {
	logger *infra.Logger
	caser  cases.Caser
}

// NewEngine constructs a template engine.
func NewEngine(logger *infra.Logger) *Engine {
	return &Engine{logger: logger, caser: cases.Title(language.English)}
}

// Render instantiates the template identified by kind/templateID with the
// questionnaire answers. The first page's SEO object seeds the site-level SEO.
func (e *Engine) Render(ctx context.Context, kind Kind, templateID string, q domain.Questionnaire) (domain.PageTree, error) {
	if err := ctx.Err(); err != nil {
		return domain.PageTree{}, err
	}
	tpl, ok := catalog[kind]
	if !ok {
		return domain.PageTree{}, fmt.Errorf("template: no catalog for kind %q (id %q)", kind, templateID)
	}
	name := strings.TrimSpace(q.BusinessName())
	if name == "" {
		return domain.PageTree{}, fmt.Errorf("template: questionnaire is missing businessName")
	}
	tagline := strings.TrimSpace(q["description"])
	if tagline == "" {
		tagline = tpl.defaultTagline
	}
	industry := strings.TrimSpace(q["industry"])
	if industry != "" {
		industry = e.caser.String(industry)
	} else {
		industry = tpl.defaultIndustry
	}

	tree := domain.PageTree{Pages: make([]domain.Page, 0, len(tpl.pages))}
	for _, p := range tpl.pages {
		page := domain.Page{
			ID:    p.id,
			Path:  p.path,
			Title: expand(p.title, name, industry),
			SEO: &domain.PageSEO{
				Title:       expand(p.seoTitle, name, industry),
				Description: tagline,
				Keywords:    keywords(name, industry),
			},
		}
		for _, s := range p.sections {
			page.Sections = append(page.Sections, domain.Section{
				ID:   p.id + "-" + s.kind,
				Type: s.kind,
				Content: map[string]any{
					"heading": expand(s.heading, name, industry),
					"body":    expand(s.body, name, industry),
					"phone":   q["phone"],
					"email":   q["email"],
					"address": q["address"],
				},
			})
		}
		tree.Pages = append(tree.Pages, page)
	}
	if e.logger != nil {
		e.logger.Debug().Str("kind", string(kind)).Str("template_id", templateID).
			Int("pages", len(tree.Pages)).Msg("template: rendered")
	}
	return tree, nil
}

// Merge lays scraped content into the template's structure. The template wins
// for layout; scraped pages supply text, images and SEO where present.
func (e *Engine) Merge(ctx context.Context, kind Kind, templateID string, bundle *domain.ContentBundle) (domain.PageTree, error) {
	if bundle == nil {
		return domain.PageTree{}, fmt.Errorf("template: nil content bundle")
	}
	q := domain.Questionnaire{
		"businessName": bundle.Title,
		"description":  bundle.Description,
	}
	if q["businessName"] == "" {
		q["businessName"] = bundle.URL
	}
	tree, err := e.Render(ctx, kind, templateID, q)
	if err != nil {
		return domain.PageTree{}, err
	}

	scraped := make(map[string]domain.ScrapedPage, len(bundle.Pages))
	for _, sp := range bundle.Pages {
		scraped[sp.Path] = sp
	}
	for i := range tree.Pages {
		sp, ok := scraped[tree.Pages[i].Path]
		if !ok {
			continue
		}
		if sp.SEO != nil {
			if sp.SEO.Title != "" {
				tree.Pages[i].SEO.Title = sp.SEO.Title
			}
			if sp.SEO.Description != "" {
				tree.Pages[i].SEO.Description = sp.SEO.Description
			}
			if len(sp.SEO.Keywords) > 0 {
				tree.Pages[i].SEO.Keywords = sp.SEO.Keywords
			}
		}
		if sp.Text != "" {
			tree.Pages[i].Sections = append(tree.Pages[i].Sections, domain.Section{
				ID:      tree.Pages[i].ID + "-scraped",
				Type:    "text",
				Content: map[string]any{"body": sp.Text},
			})
		}
		if len(sp.Images) > 0 {
			tree.Pages[i].Sections = append(tree.Pages[i].Sections, domain.Section{
				ID:      tree.Pages[i].ID + "-gallery",
				Type:    "gallery",
				Content: map[string]any{"images": sp.Images},
			})
		}
	}
	return tree, nil
}

func expand(s, name, industry string) string {
	s = strings.ReplaceAll(s, "{name}", name)
	return strings.ReplaceAll(s, "{industry}", industry)
}

func keywords(name, industry string) []string {
	kw := []string{strings.ToLower(name)}
	for _, w := range strings.Fields(strings.ToLower(industry)) {
		kw = append(kw, w)
	}
	return kw
}
