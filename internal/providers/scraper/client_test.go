package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestScrapeDirectExtractsTitleAndDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head>
<title>Acme Plumbing | Home</title>
<meta name="description" content="Trusted plumbers since 1985">
</head><body><h1>Acme Plumbing</h1><h2>Emergency repairs</h2></body></html>`))
	}))
	defer srv.Close()

	c := NewClient(Options{HTTPClient: srv.Client()})
	bundle, err := c.Scrape(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scrape returned error: %v", err)
	}
	if bundle.Title != "Acme Plumbing | Home" {
		t.Fatalf("title mismatch: %q", bundle.Title)
	}
	if bundle.Description != "Trusted plumbers since 1985" {
		t.Fatalf("description mismatch: %q", bundle.Description)
	}
	if len(bundle.Pages) != 1 || bundle.Pages[0].Path != "/" {
		t.Fatalf("expected single home page, got %#v", bundle.Pages)
	}
	if bundle.Pages[0].SEO == nil || bundle.Pages[0].SEO.Description != "Trusted plumbers since 1985" {
		t.Fatalf("seo seed missing: %#v", bundle.Pages[0].SEO)
	}
}

func TestScrapeRemoteDecodesBundle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/scrape" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"title":"Remote Co","pages":[{"path":"/","title":"Remote Co","text":"hello"}]}`))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	bundle, err := c.Scrape(context.Background(), "https://remote.example")
	if err != nil {
		t.Fatalf("Scrape returned error: %v", err)
	}
	if bundle.Title != "Remote Co" {
		t.Fatalf("title mismatch: %q", bundle.Title)
	}
	if bundle.URL != "https://remote.example" {
		t.Fatalf("expected source url backfilled, got %q", bundle.URL)
	}
}

func TestScrapeFailsOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Options{HTTPClient: srv.Client()})
	if _, err := c.Scrape(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error on non-200 source")
	}
}
