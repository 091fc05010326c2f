package domain

import "time"

// JobKind enumerates supported build job categories.
type JobKind string

const (
	JobKindInitial JobKind = "INITIAL"
)

// JobStatus enumerates build job lifecycle states.
type JobStatus string

const (
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

// BuildJob records one execution attempt of the build pipeline for a Site.
// Progress mirrors Site.BuildProgress at every checkpoint and is monotonically
// non-decreasing for the lifetime of the job.
type BuildJob struct {
	ID           string
	SiteID       string
	Kind         JobKind
	Status       JobStatus
	Progress     int
	ErrorMessage string
	StartedAt    time.Time
	CompletedAt  *time.Time
}

// Progress checkpoints written to both records after the named stage completes.
const (
	CheckpointContentAcquired      = 20
	CheckpointStructureBuilt       = 50
	CheckpointResourcesProvisioned = 70
	CheckpointVoiceStageAttempted  = 85
	CheckpointSEOPublished         = 95
	CheckpointFinalized            = 100
)
