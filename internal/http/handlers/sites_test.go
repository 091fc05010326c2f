package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"server/internal/build"
	"server/internal/domain"
)

type fakeStarter struct {
	siteID, jobID string
	err           error
	got           build.BuildRequest
}

func (f *fakeStarter) StartBuild(ctx context.Context, req build.BuildRequest) (string, string, error) {
	f.got = req
	return f.siteID, f.jobID, f.err
}

// scanRow satisfies pgx.Row with canned scan values.
type scanRow struct {
	values []any
	err    error
}

func (r scanRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, v := range r.values {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *int:
			*d = v.(int)
		case *int64:
			*d = v.(int64)
		case *[]byte:
			if v != nil {
				*d = v.([]byte)
			}
		}
	}
	return nil
}

type fakeSQL struct {
	row scanRow
}

func (f *fakeSQL) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (f *fakeSQL) QueryRow(context.Context, string, ...any) pgx.Row {
	return f.row
}

func (f *fakeSQL) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func newTestApp(starter *fakeStarter, sql *fakeSQL) *App {
	if sql == nil {
		sql = &fakeSQL{}
	}
	return &App{SQL: sql, Builds: starter, Logger: zerolog.Nop()}
}

func TestSitesCreate_Accepted(t *testing.T) {
	starter := &fakeStarter{siteID: "s-1", jobID: "j-1"}
	app := newTestApp(starter, nil)

	body := `{"tenantId":"t1","name":"Acme","mode":"TEMPLATE_SERVICE","templateId":"T1","questionnaireAnswers":{"businessName":"Acme"}}`
	req := httptest.NewRequest("POST", "/v1/sites", strings.NewReader(body))
	rr := httptest.NewRecorder()

	app.SitesCreate(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rr.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["site_id"] != "s-1" || resp["job_id"] != "j-1" {
		t.Fatalf("unexpected ids: %v", resp)
	}
	if starter.got.Mode != domain.SiteModeTemplateService {
		t.Fatalf("mode not forwarded: %q", starter.got.Mode)
	}
	if starter.got.DefaultLocale == "" {
		t.Fatal("default locale should be filled from request context")
	}
}

func TestSitesCreate_ForwardsVoiceAndSearchConsoleFields(t *testing.T) {
	starter := &fakeStarter{siteID: "s-1", jobID: "j-1"}
	app := newTestApp(starter, nil)

	body := `{
		"tenantId": "t1",
		"name": "Acme",
		"mode": "TEMPLATE_SERVICE",
		"templateId": "T1",
		"questionnaireAnswers": {"businessName": "Acme"},
		"enableVoiceIntegration": true,
		"searchConsoleCreds": {"accessToken": "at", "refreshToken": "rt", "siteUrl": "https://acme.example"}
	}`
	req := httptest.NewRequest("POST", "/v1/sites", strings.NewReader(body))
	rr := httptest.NewRecorder()

	app.SitesCreate(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rr.Code)
	}
	if !starter.got.EnableVoice {
		t.Fatal("enableVoiceIntegration not forwarded")
	}
	sc := starter.got.SearchConsole
	if sc == nil || sc.AccessToken != "at" || sc.RefreshToken != "rt" || sc.SiteURL != "https://acme.example" {
		t.Fatalf("searchConsoleCreds not forwarded: %#v", sc)
	}
}

func TestSitesCreate_InvalidPayload(t *testing.T) {
	app := newTestApp(&fakeStarter{}, nil)
	req := httptest.NewRequest("POST", "/v1/sites", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()

	app.SitesCreate(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestSitesCreate_ValidationError(t *testing.T) {
	starter := &fakeStarter{err: domain.ErrValidation}
	app := newTestApp(starter, nil)
	req := httptest.NewRequest("POST", "/v1/sites", strings.NewReader(`{"name":"X"}`))
	rr := httptest.NewRecorder()

	app.SitesCreate(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestSitesCreate_Conflict(t *testing.T) {
	starter := &fakeStarter{err: domain.ErrSiteExists}
	app := newTestApp(starter, nil)
	req := httptest.NewRequest("POST", "/v1/sites", strings.NewReader(`{"tenantId":"t1","name":"Acme","mode":"SCRAPED","sourceUrl":"https://x"}`))
	rr := httptest.NewRecorder()

	app.SitesCreate(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rr.Code)
	}
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestSitesStatus_ReturnsProgress(t *testing.T) {
	app := newTestApp(&fakeStarter{}, &fakeSQL{row: scanRow{values: []any{"s-1", "BUILDING", 50}}})
	req := withURLParam(httptest.NewRequest("GET", "/v1/sites/s-1", nil), "id", "s-1")
	rr := httptest.NewRecorder()

	app.SitesStatus(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "BUILDING" || resp["build_progress"] != float64(50) {
		t.Fatalf("unexpected body: %v", resp)
	}
}

func TestSitesStatus_NotFound(t *testing.T) {
	app := newTestApp(&fakeStarter{}, &fakeSQL{row: scanRow{err: pgx.ErrNoRows}})
	req := withURLParam(httptest.NewRequest("GET", "/v1/sites/missing", nil), "id", "missing")
	rr := httptest.NewRecorder()

	app.SitesStatus(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestJobsGet_IncludesErrorMessageWhenFailed(t *testing.T) {
	app := newTestApp(&fakeStarter{}, &fakeSQL{row: scanRow{values: []any{"j-1", "s-1", "FAILED", 50, "resource provisioning: quota"}}})
	req := withURLParam(httptest.NewRequest("GET", "/v1/jobs/j-1", nil), "id", "j-1")
	rr := httptest.NewRecorder()

	app.JobsGet(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["error_message"] != "resource provisioning: quota" {
		t.Fatalf("error message missing: %v", resp)
	}
}

func TestJobsGet_OmitsEmptyErrorMessage(t *testing.T) {
	app := newTestApp(&fakeStarter{}, &fakeSQL{row: scanRow{values: []any{"j-1", "s-1", "IN_PROGRESS", 20, ""}}})
	req := withURLParam(httptest.NewRequest("GET", "/v1/jobs/j-1", nil), "id", "j-1")
	rr := httptest.NewRecorder()

	app.JobsGet(rr, req)

	var resp map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := resp["error_message"]; ok {
		t.Fatalf("error_message should be omitted: %v", resp)
	}
}
