package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
	"server/pkg/zip"
)

// SitesExport bundles a finished site's build artifacts into a zip archive.
func (a *App) SitesExport(w http.ResponseWriter, r *http.Request) {
	siteID := chi.URLParam(r, "id")
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectSiteArtifacts, siteID)
	var name, slug, status string
	var pageTree, seoData []byte
	if err := row.Scan(&name, &slug, &status, &pageTree, &seoData); err != nil {
		if infra.IsNoRows(err) {
			a.error(w, http.StatusNotFound, "not_found", "site not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load site")
		return
	}
	if status != string(domain.SiteStatusReady) {
		a.error(w, http.StatusConflict, "conflict", "site build is not finished")
		return
	}

	assets := []zip.Asset{}
	if len(pageTree) > 0 {
		assets = append(assets, zip.Asset{Filename: "page-tree.json", MIME: "application/json", Data: pageTree})
	}
	var data domain.SEOData
	if len(seoData) > 0 && json.Unmarshal(seoData, &data) == nil {
		if data.SitemapXML != "" {
			assets = append(assets, zip.Asset{Filename: "sitemap.xml", MIME: "application/xml", Data: []byte(data.SitemapXML)})
		}
		if data.RobotsTxt != "" {
			assets = append(assets, zip.Asset{Filename: "robots.txt", MIME: "text/plain", Data: []byte(data.RobotsTxt)})
		}
		if len(data.StructuredData) > 0 {
			assets = append(assets, zip.Asset{Filename: "structured-data.json", MIME: "application/ld+json", Data: data.StructuredData})
		}
	}
	if len(assets) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no artifacts to export")
		return
	}

	archive := zip.ArchiveAssets(assets)
	if archive == nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", slug+".zip"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}
