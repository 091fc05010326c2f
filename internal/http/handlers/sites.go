package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"server/internal/build"
	"server/internal/domain"
	"server/internal/infra"
	"server/internal/middleware"
	"server/internal/sqlinline"
)

type createSiteRequest struct {
	TenantID      string               `json:"tenantId"`
	Name          string               `json:"name"`
	Mode          string               `json:"mode"`
	SourceURL     string               `json:"sourceUrl"`
	TemplateID    string               `json:"templateId"`
	Questionnaire domain.Questionnaire `json:"questionnaireAnswers"`
	EnableVoice   bool                 `json:"enableVoiceIntegration"`
	DefaultLocale string               `json:"defaultLocale"`
	SearchConsole *searchConsoleCreds  `json:"searchConsoleCreds"`
}

type searchConsoleCreds struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	Expiry       time.Time `json:"expiry"`
	SiteURL      string    `json:"siteUrl"`
}

// SitesCreate accepts a build request, creates the Site/BuildJob pair and
// returns 202 while the pipeline runs in the background.
func (a *App) SitesCreate(w http.ResponseWriter, r *http.Request) {
	var req createSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	locale := req.DefaultLocale
	if locale == "" {
		locale = middleware.LocaleFromContext(r.Context())
	}
	buildReq := build.BuildRequest{
		TenantID:      req.TenantID,
		Name:          req.Name,
		Mode:          domain.SiteMode(req.Mode),
		SourceURL:     req.SourceURL,
		TemplateID:    req.TemplateID,
		Questionnaire: req.Questionnaire,
		EnableVoice:   req.EnableVoice,
		DefaultLocale: locale,
	}
	if sc := req.SearchConsole; sc != nil {
		buildReq.SearchConsole = &domain.SearchConsoleCreds{
			AccessToken:  sc.AccessToken,
			RefreshToken: sc.RefreshToken,
			Expiry:       sc.Expiry,
			SiteURL:      sc.SiteURL,
		}
	}

	siteID, jobID, err := a.Builds.StartBuild(r.Context(), buildReq)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusAccepted, map[string]string{"site_id": siteID, "job_id": jobID})
}

// SitesStatus returns the lightweight polling view of a site.
func (a *App) SitesStatus(w http.ResponseWriter, r *http.Request) {
	siteID := chi.URLParam(r, "id")
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectSiteStatus, siteID)
	var id, status string
	var progress int
	if err := row.Scan(&id, &status, &progress); err != nil {
		if infra.IsNoRows(err) {
			a.error(w, http.StatusNotFound, "not_found", "site not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load site")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"id":             id,
		"status":         status,
		"build_progress": progress,
	})
}

// SitesGet returns the full site detail.
func (a *App) SitesGet(w http.ResponseWriter, r *http.Request) {
	siteID := chi.URLParam(r, "id")
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectSiteDetail, siteID)
	var (
		id, tenantID, name, slug, mode, status       string
		repoURL, deploymentURL, voiceAgentID         string
		progress                                     int
		createdAt, updatedAt                         time.Time
	)
	if err := row.Scan(&id, &tenantID, &name, &slug, &mode, &status, &progress,
		&repoURL, &deploymentURL, &voiceAgentID, &createdAt, &updatedAt); err != nil {
		if infra.IsNoRows(err) {
			a.error(w, http.StatusNotFound, "not_found", "site not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load site")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"id":             id,
		"tenant_id":      tenantID,
		"name":           name,
		"slug":           slug,
		"mode":           mode,
		"status":         status,
		"build_progress": progress,
		"repo_url":       repoURL,
		"deployment_url": deploymentURL,
		"voice_agent_id": voiceAgentID,
		"created_at":     createdAt,
		"updated_at":     updatedAt,
	})
}
