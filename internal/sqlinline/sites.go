package sqlinline

const QSelectSiteStatus = `--sql 7c1f2d6e-9a40-4d0b-b6a1-f3a8e2c41d95
select id, status, build_progress
from sites
where id = $1;
`

const QSelectSiteArtifacts = `--sql 4f6d0c2a-8b1e-4c57-9a33-d12e8f7b6045
select name, slug, status, page_tree, seo_data
from sites
where id = $1;
`

const QSelectSiteDetail = `--sql 0b8e6a12-3f4c-4b89-9d5e-2a7c1f90e334
select id, tenant_id, name, slug, mode, status, build_progress,
       coalesce(repo_url, ''), coalesce(deployment_url, ''),
       coalesce(voice_agent_id, ''), created_at, updated_at
from sites
where id = $1;
`
