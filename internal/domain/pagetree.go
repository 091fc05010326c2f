package domain

import "encoding/json"

// PageTree is the structured document describing the generated site's pages.
type PageTree struct {
	Pages []Page `json:"pages"`
}

// Page is one page of the generated site.
type Page struct {
	ID       string    `json:"id"`
	Path     string    `json:"path"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections,omitempty"`
	SEO      *PageSEO  `json:"seo,omitempty"`
}

// Section is one content block within a page.
type Section struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	Content map[string]any `json:"content,omitempty"`
}

// PageSEO holds per-page SEO metadata.
type PageSEO struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords,omitempty"`
}

// Home returns the page identified as the home page: path "/" or id "home".
func (t PageTree) Home() *Page {
	for i := range t.Pages {
		if t.Pages[i].Path == "/" || t.Pages[i].ID == "home" {
			return &t.Pages[i]
		}
	}
	return nil
}

// SEOData is the site-level SEO artifact produced by the publication stage.
type SEOData struct {
	Title             string          `json:"title,omitempty"`
	Description       string          `json:"description,omitempty"`
	Keywords          []string        `json:"keywords,omitempty"`
	SitemapXML        string          `json:"sitemap_xml,omitempty"`
	RobotsTxt         string          `json:"robots_txt,omitempty"`
	StructuredData    json.RawMessage `json:"structured_data,omitempty"`
	SitemapSubmitted  bool            `json:"sitemap_submitted,omitempty"`
	IndexingRequested int             `json:"indexing_requested,omitempty"`
	Warnings          []string        `json:"warnings,omitempty"`
}

// ContentBundle is the scraper collaborator's output for one source site.
type ContentBundle struct {
	URL         string        `json:"url"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Pages       []ScrapedPage `json:"pages"`
}

// ScrapedPage is one extracted page from a scraped source.
type ScrapedPage struct {
	Path   string   `json:"path"`
	Title  string   `json:"title"`
	Text   string   `json:"text"`
	Images []string `json:"images,omitempty"`
	SEO    *PageSEO `json:"seo,omitempty"`
}

// Questionnaire holds the answers driving template instantiation.
type Questionnaire map[string]string

// BusinessName returns the questionnaire's business name answer, if any.
func (q Questionnaire) BusinessName() string {
	return q["businessName"]
}

// Business assembles BusinessInfo from well-known questionnaire keys.
func (q Questionnaire) Business() BusinessInfo {
	return BusinessInfo{
		Name:        q["businessName"],
		Description: q["description"],
		Industry:    q["industry"],
		Phone:       q["phone"],
		Email:       q["email"],
		Address:     q["address"],
	}
}
