package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// ProgressPG writes checkpoints and terminal settlement to both records
// transactionally.
type ProgressPG struct {
	pool *pgxpool.Pool
}

// NewProgressWriter creates a checkpoint writer backed by PostgreSQL.
func NewProgressWriter(pool *pgxpool.Pool) *ProgressPG {
	return &ProgressPG{pool: pool}
}

// Checkpoint advances Site.build_progress and BuildJob.progress together.
// GREATEST keeps progress monotonically non-decreasing even if a stale write
// arrives out of order.
func (r *ProgressPG) Checkpoint(ctx context.Context, siteID, jobID string, progress int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin checkpoint: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE sites SET build_progress = GREATEST(build_progress, $2), updated_at = NOW() WHERE id = $1;`,
		siteID, progress); err != nil {
		return fmt.Errorf("checkpoint site: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE build_jobs SET progress = GREATEST(progress, $2) WHERE id = $1;`,
		jobID, progress); err != nil {
		return fmt.Errorf("checkpoint job: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit checkpoint: %w", err)
	}
	return nil
}

// Complete writes the combined artifact, marks the site READY and the job
// COMPLETED at full progress, all in one transaction. Absent artifact fields
// keep whatever the stages already persisted.
func (r *ProgressPG) Complete(ctx context.Context, siteID, jobID string, final domain.SiteFinal, completedAt time.Time) error {
	var repoURL, dbURL, hostingID, deployURL, agentID *string
	var voiceConfig []byte
	if final.Resources != nil {
		repoURL = nullableText(final.Resources.RepoURL)
		dbURL = nullableText(final.Resources.DBURL)
		hostingID = nullableText(final.Resources.HostingProjectID)
		deployURL = nullableText(final.Resources.DeploymentURL)
	}
	if final.VoiceAgent != nil {
		agentID = nullableText(final.VoiceAgent.AgentID)
		voiceConfig = final.VoiceAgent.Config
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin complete: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
UPDATE sites
SET page_tree = COALESCE($2, page_tree),
    seo_data = COALESCE($3, seo_data),
    repo_url = COALESCE($4, repo_url),
    db_url = COALESCE($5, db_url),
    hosting_project_id = COALESCE($6, hosting_project_id),
    deployment_url = COALESCE($7, deployment_url),
    voice_agent_id = COALESCE($8, voice_agent_id),
    voice_config = COALESCE($9, voice_config),
    status = 'READY',
    build_progress = 100,
    updated_at = NOW()
WHERE id = $1;
`,
		siteID,
		nullableBytes(final.PageTree),
		nullableBytes(final.SEOData),
		repoURL,
		dbURL,
		hostingID,
		deployURL,
		agentID,
		nullableBytes(voiceConfig),
	); err != nil {
		return fmt.Errorf("complete site: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE build_jobs SET status = 'COMPLETED', progress = 100, completed_at = $2 WHERE id = $1;`,
		jobID, completedAt); err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit complete: %w", err)
	}
	return nil
}

// Fail marks the site and the job FAILED together, recording the error on the
// job and leaving progress at its last checkpoint.
func (r *ProgressPG) Fail(ctx context.Context, siteID, jobID string, errMsg string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin fail: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE sites SET status = 'FAILED', updated_at = NOW() WHERE id = $1;`,
		siteID); err != nil {
		return fmt.Errorf("fail site: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE build_jobs SET status = 'FAILED', error_message = $2, completed_at = NOW() WHERE id = $1;`,
		jobID, errMsg); err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit fail: %w", err)
	}
	return nil
}

var _ domain.ProgressWriter = (*ProgressPG)(nil)
