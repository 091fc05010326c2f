package sqlinline

const QSelectJobStatus = `--sql 5d2b9f71-6c3e-4a18-8e04-9b6d4c2a7f10
select id, site_id, status, progress, coalesce(error_message, '')
from build_jobs
where id = $1;
`

const QBuildStats = `--sql e94a7c55-1d2f-4b63-a08e-6f3b9d815c27
select status, count(*)
from build_jobs
group by status;
`
