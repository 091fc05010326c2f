package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"

	"server/internal/domain"
	"server/internal/infra"
)

// Local provisions development-grade resources on the local machine: a real
// bare git repository plus deterministic database and hosting handles. It
// keeps the full pipeline runnable without any cloud account.
type Local struct {
	repoRoot string
	logger   *infra.Logger
}

// NewLocal creates a local provisioner rooted at repoRoot.
func NewLocal(repoRoot string, logger *infra.Logger) (*Local, error) {
	if repoRoot == "" {
		return nil, fmt.Errorf("provision: repo root is required")
	}
	if err := os.MkdirAll(repoRoot, 0o755); err != nil {
		return nil, fmt.Errorf("provision: ensure repo root: %w", err)
	}
	abs, err := filepath.Abs(repoRoot)
	if err != nil {
		return nil, fmt.Errorf("provision: resolve repo root: %w", err)
	}
	return &Local{repoRoot: abs, logger: logger}, nil
}

// Provision initializes a bare repository for the site and fabricates the
// remaining handles from the slug.
func (l *Local) Provision(ctx context.Context, req Request) (domain.ResourceHandles, error) {
	var handles domain.ResourceHandles
	if err := ctx.Err(); err != nil {
		return handles, err
	}
	if req.Slug == "" {
		return handles, fmt.Errorf("provision: slug is required")
	}

	repoPath := filepath.Join(l.repoRoot, req.Slug+".git")
	if _, err := git.PlainInit(repoPath, true); err != nil {
		if err != git.ErrRepositoryAlreadyExists {
			return handles, fmt.Errorf("provision: init repository: %w", err)
		}
	}

	handles = domain.ResourceHandles{
		RepoURL:          "file://" + repoPath,
		DBURL:            fmt.Sprintf("postgres://localhost:5432/%s", req.Slug),
		HostingProjectID: req.Slug,
		DeploymentURL:    fmt.Sprintf("https://%s.sites.localhost", req.Slug),
	}
	if l.logger != nil {
		l.logger.Info().Str("site_id", req.SiteID).Str("repo", handles.RepoURL).Msg("provision: local resources ready")
	}
	return handles, nil
}

var (
	_ Provisioner = (*Client)(nil)
	_ Provisioner = (*Local)(nil)
)
