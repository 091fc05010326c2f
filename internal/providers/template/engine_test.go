package template

import (
	"context"
	"strings"
	"testing"

	"server/internal/domain"
)

func TestRenderServiceTemplateSeedsSEOFromBusinessName(t *testing.T) {
	e := NewEngine(nil)
	tree, err := e.Render(context.Background(), KindService, "T1", domain.Questionnaire{
		"businessName": "Acme",
		"industry":     "plumbing services",
	})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if len(tree.Pages) == 0 {
		t.Fatal("expected pages")
	}
	home := tree.Pages[0]
	if home.Path != "/" {
		t.Fatalf("first page should be home, got %q", home.Path)
	}
	if home.SEO == nil || !strings.Contains(home.SEO.Title, "Acme") {
		t.Fatalf("home seo title should derive from business name, got %#v", home.SEO)
	}
	if !strings.Contains(home.SEO.Title, "Plumbing Services") {
		t.Fatalf("industry should be title-cased in seo title, got %q", home.SEO.Title)
	}
}

func TestRenderRequiresBusinessName(t *testing.T) {
	e := NewEngine(nil)
	if _, err := e.Render(context.Background(), KindService, "T1", domain.Questionnaire{}); err == nil {
		t.Fatal("expected error for missing businessName")
	}
}

func TestRenderUnknownKindFails(t *testing.T) {
	e := NewEngine(nil)
	if _, err := e.Render(context.Background(), Kind("portfolio"), "T9", domain.Questionnaire{"businessName": "X"}); err == nil {
		t.Fatal("expected error for unknown catalog kind")
	}
}

func TestMergeTemplateStructureWins(t *testing.T) {
	e := NewEngine(nil)
	bundle := &domain.ContentBundle{
		URL:         "https://acme.example",
		Title:       "Acme Plumbing",
		Description: "Plumbers since 1985",
		Pages: []domain.ScrapedPage{
			{
				Path:   "/",
				Title:  "Totally Different Layout",
				Text:   "Emergency repairs around the clock.",
				Images: []string{"https://acme.example/hero.jpg"},
				SEO:    &domain.PageSEO{Description: "24/7 emergency plumbing"},
			},
			{Path: "/pricing", Title: "Pricing", Text: "ignored, not in template"},
		},
	}

	tree, err := e.Merge(context.Background(), KindService, "T1", bundle)
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}

	paths := make(map[string]bool)
	for _, p := range tree.Pages {
		paths[p.Path] = true
	}
	if paths["/pricing"] {
		t.Fatal("template layout should win: /pricing must not appear")
	}

	home := tree.Home()
	if home == nil {
		t.Fatal("home page missing")
	}
	if home.SEO.Description != "24/7 emergency plumbing" {
		t.Fatalf("scraped seo should overlay, got %q", home.SEO.Description)
	}
	var hasText, hasGallery bool
	for _, s := range home.Sections {
		if s.Type == "text" && s.Content["body"] == bundle.Pages[0].Text {
			hasText = true
		}
		if s.Type == "gallery" {
			hasGallery = true
		}
	}
	if !hasText || !hasGallery {
		t.Fatalf("scraped text/images should be merged in, sections: %#v", home.Sections)
	}
}
