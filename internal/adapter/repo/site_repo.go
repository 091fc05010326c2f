package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// SiteRepositoryPG implements domain.SiteRepository.
type SiteRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewSiteRepository creates a new site repository backed by PostgreSQL.
func NewSiteRepository(pool *pgxpool.Pool) *SiteRepositoryPG {
	return &SiteRepositoryPG{pool: pool}
}

const siteColumns = `
id, tenant_id, name, slug, mode, coalesce(source_url, ''), status, build_progress,
page_tree, seo_data, extracted_content,
coalesce(repo_url, ''), coalesce(db_url, ''), coalesce(hosting_project_id, ''), coalesce(deployment_url, ''),
coalesce(voice_agent_id, ''), voice_config,
coalesce(sc_access_token, ''), coalesce(sc_refresh_token, ''), sc_token_expiry, coalesce(sc_verified, false), coalesce(sc_site_url, ''),
coalesce(default_locale, ''), created_at, updated_at`

// Create inserts a new site record.
func (r *SiteRepositoryPG) Create(ctx context.Context, site *domain.Site) error {
	query := `
INSERT INTO sites (id, tenant_id, name, slug, mode, source_url, status, build_progress,
                   sc_access_token, sc_refresh_token, sc_token_expiry, sc_verified, sc_site_url,
                   default_locale)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
`
	var scAccess, scRefresh, scSiteURL *string
	var scExpiry *time.Time
	scVerified := false
	if sc := site.SearchConsole; sc != nil {
		scAccess = nullableText(sc.AccessToken)
		scRefresh = nullableText(sc.RefreshToken)
		scSiteURL = nullableText(sc.SiteURL)
		scVerified = sc.Verified
		if !sc.Expiry.IsZero() {
			expiry := sc.Expiry
			scExpiry = &expiry
		}
	}
	_, err := r.pool.Exec(ctx, query,
		site.ID,
		site.TenantID,
		site.Name,
		site.Slug,
		site.Mode,
		nullableText(site.SourceURL),
		site.Status,
		site.BuildProgress,
		scAccess,
		scRefresh,
		scExpiry,
		scVerified,
		scSiteURL,
		nullableText(site.DefaultLocale),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSiteExists
		}
		return err
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation. Two concurrent builds for one tenant can both pass the
// existence precheck; the loser trips the tenant_id constraint here and
// must surface as a conflict, not a server error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// GetByID fetches a site by its identifier.
func (r *SiteRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Site, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+siteColumns+` FROM sites WHERE id = $1;`, id)
	return scanSite(row)
}

// GetByTenant fetches the tenant's site, if one exists.
func (r *SiteRepositoryPG) GetByTenant(ctx context.Context, tenantID string) (*domain.Site, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+siteColumns+` FROM sites WHERE tenant_id = $1;`, tenantID)
	return scanSite(row)
}

// SetExtractedContent persists the raw scraper output for audit/debugging.
func (r *SiteRepositoryPG) SetExtractedContent(ctx context.Context, siteID string, raw json.RawMessage) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sites SET extracted_content = $2, updated_at = NOW() WHERE id = $1;`,
		siteID, nullableBytes(raw))
	return err
}

// SetPageTree persists the structure artifact.
func (r *SiteRepositoryPG) SetPageTree(ctx context.Context, siteID string, tree json.RawMessage) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sites SET page_tree = $2, updated_at = NOW() WHERE id = $1;`,
		siteID, nullableBytes(tree))
	return err
}

// SetResources persists the provisioning stage's handles.
func (r *SiteRepositoryPG) SetResources(ctx context.Context, siteID string, handles domain.ResourceHandles) error {
	_, err := r.pool.Exec(ctx, `
UPDATE sites
SET repo_url = $2,
    db_url = $3,
    hosting_project_id = $4,
    deployment_url = $5,
    updated_at = NOW()
WHERE id = $1;
`,
		siteID,
		nullableText(handles.RepoURL),
		nullableText(handles.DBURL),
		nullableText(handles.HostingProjectID),
		nullableText(handles.DeploymentURL),
	)
	return err
}

// SetVoiceAgent persists the optional voice integration result.
func (r *SiteRepositoryPG) SetVoiceAgent(ctx context.Context, siteID string, agent domain.VoiceAgent) error {
	_, err := r.pool.Exec(ctx, `
UPDATE sites
SET voice_agent_id = $2,
    voice_config = $3,
    updated_at = NOW()
WHERE id = $1;
`,
		siteID, nullableText(agent.AgentID), nullableBytes(agent.Config))
	return err
}

// SetSearchConsoleTokens persists rotated credentials after a token refresh.
// The refresh token is only overwritten when the provider returned a new one.
func (r *SiteRepositoryPG) SetSearchConsoleTokens(ctx context.Context, siteID string, tokens domain.TokenPair) error {
	_, err := r.pool.Exec(ctx, `
UPDATE sites
SET sc_access_token = $2,
    sc_refresh_token = COALESCE($3, sc_refresh_token),
    sc_token_expiry = $4,
    updated_at = NOW()
WHERE id = $1;
`,
		siteID, tokens.AccessToken, nullableText(tokens.RefreshToken), tokens.Expiry)
	return err
}

func scanSite(row pgx.Row) (*domain.Site, error) {
	var (
		site      domain.Site
		scAccess  string
		scRefresh string
		scExpiry  *time.Time
		scVerify  bool
		scSiteURL string
	)
	if err := row.Scan(
		&site.ID,
		&site.TenantID,
		&site.Name,
		&site.Slug,
		&site.Mode,
		&site.SourceURL,
		&site.Status,
		&site.BuildProgress,
		&site.PageTree,
		&site.SEOData,
		&site.ExtractedContent,
		&site.RepoURL,
		&site.DBURL,
		&site.HostingProjectID,
		&site.DeploymentURL,
		&site.VoiceAgentID,
		&site.VoiceConfig,
		&scAccess,
		&scRefresh,
		&scExpiry,
		&scVerify,
		&scSiteURL,
		&site.DefaultLocale,
		&site.CreatedAt,
		&site.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if scAccess != "" || scRefresh != "" {
		creds := &domain.SearchConsoleCreds{
			AccessToken:  scAccess,
			RefreshToken: scRefresh,
			Verified:     scVerify,
			SiteURL:      scSiteURL,
		}
		if scExpiry != nil {
			creds.Expiry = *scExpiry
		}
		site.SearchConsole = creds
	}
	return &site, nil
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}
