package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// BuildJobRepositoryPG implements domain.BuildJobRepository.
type BuildJobRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewBuildJobRepository creates a new build job repository backed by PostgreSQL.
func NewBuildJobRepository(pool *pgxpool.Pool) *BuildJobRepositoryPG {
	return &BuildJobRepositoryPG{pool: pool}
}

// Create inserts a new build job record.
func (r *BuildJobRepositoryPG) Create(ctx context.Context, job *domain.BuildJob) error {
	query := `
INSERT INTO build_jobs (id, site_id, kind, status, progress, started_at)
VALUES ($1, $2, $3, $4, $5, $6);
`
	_, err := r.pool.Exec(ctx, query,
		job.ID,
		job.SiteID,
		job.Kind,
		job.Status,
		job.Progress,
		job.StartedAt,
	)
	return err
}

// GetByID fetches a build job by its identifier.
func (r *BuildJobRepositoryPG) GetByID(ctx context.Context, jobID string) (*domain.BuildJob, error) {
	query := `
SELECT id, site_id, kind, status, progress, coalesce(error_message, ''), started_at, completed_at
FROM build_jobs
WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, query, jobID)
	var job domain.BuildJob
	if err := row.Scan(
		&job.ID,
		&job.SiteID,
		&job.Kind,
		&job.Status,
		&job.Progress,
		&job.ErrorMessage,
		&job.StartedAt,
		&job.CompletedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}
