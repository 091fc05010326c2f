package seo

import (
	"encoding/json"
	"fmt"
	"strings"

	"server/internal/domain"
)

// BuildStructuredData renders a JSON-LD document for the site's home page.
// Returns nil when the tree has no identifiable home page.
func BuildStructuredData(tree domain.PageTree, business domain.BusinessInfo, baseURL string) (json.RawMessage, error) {
	home := tree.Home()
	if home == nil {
		return nil, nil
	}
	base := strings.TrimRight(baseURL, "/")

	name := business.Name
	description := business.Description
	if home.SEO != nil {
		if name == "" {
			name = home.SEO.Title
		}
		if description == "" {
			description = home.SEO.Description
		}
	}

	doc := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "LocalBusiness",
		"name":        name,
		"description": description,
	}
	if base != "" {
		doc["url"] = base + "/"
	}
	if business.Phone != "" {
		doc["telephone"] = business.Phone
	}
	if business.Email != "" {
		doc["email"] = business.Email
	}
	if business.Address != "" {
		doc["address"] = business.Address
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("seo: marshal structured data: %w", err)
	}
	return raw, nil
}
