package seo

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"server/internal/domain"
)

type sitemapURL struct {
	XMLName  xml.Name `xml:"url"`
	Loc      string   `xml:"loc"`
	LastMod  string   `xml:"lastmod"`
	Priority string   `xml:"priority"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// BuildSitemap renders sitemap.xml for the page tree rooted at baseURL.
func BuildSitemap(tree domain.PageTree, baseURL string, now time.Time) (string, error) {
	base := strings.TrimRight(baseURL, "/")
	set := sitemapURLSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]sitemapURL, 0, len(tree.Pages)),
	}
	lastMod := now.UTC().Format("2006-01-02")
	for _, p := range tree.Pages {
		priority := "0.8"
		if p.Path == "/" || p.ID == "home" {
			priority = "1.0"
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:      pageURL(base, p.Path),
			LastMod:  lastMod,
			Priority: priority,
		})
	}
	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return "", fmt.Errorf("seo: marshal sitemap: %w", err)
	}
	return xml.Header + string(out) + "\n", nil
}

// BuildRobots renders robots.txt pointing crawlers at the sitemap.
func BuildRobots(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n\n")
	if base != "" {
		fmt.Fprintf(&b, "Sitemap: %s/sitemap.xml\n", base)
	}
	return b.String()
}

func pageURL(base, path string) string {
	if path == "" || path == "/" {
		return base + "/"
	}
	return base + "/" + strings.TrimLeft(path, "/")
}
