package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"server/internal/infra"
	"server/internal/sqlinline"
)

// JobsGet returns the polling view of a build job.
func (a *App) JobsGet(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectJobStatus, jobID)
	var id, siteID, status, errorMessage string
	var progress int
	if err := row.Scan(&id, &siteID, &status, &progress, &errorMessage); err != nil {
		if infra.IsNoRows(err) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}
	resp := map[string]any{
		"id":       id,
		"site_id":  siteID,
		"status":   status,
		"progress": progress,
	}
	if errorMessage != "" {
		resp["error_message"] = errorMessage
	}
	a.json(w, http.StatusOK, resp)
}
