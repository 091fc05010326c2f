package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"server/internal/build"
	"server/internal/domain"
	"server/internal/infra"
)

// BuildStarter is the synchronous entry point into the build pipeline.
type BuildStarter interface {
	StartBuild(ctx context.Context, req build.BuildRequest) (siteID, jobID string, err error)
}

type App struct {
	SQL    infra.SQLExecutor
	Builds BuildStarter
	Logger infra.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, slug, message string) {
	a.json(w, code, map[string]any{"error": map[string]string{"code": slug, "message": message}})
}

// domainError maps domain sentinel errors onto HTTP responses.
func (a *App) domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrSiteExists):
		a.error(w, http.StatusConflict, "conflict", "a site already exists for this tenant")
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	default:
		a.Logger.Error().Err(err).Msg("handlers: unexpected error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
