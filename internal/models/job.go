package models

import (
	"time"

	"gorm.io/datatypes"
)

// JobKind enumerates the self-scheduling chains that persist their
// successor invocation as a row rather than an in-process timer, so a
// crash between "schedule successor" and "run successor" does not lose
// the successor (spec.md §9 design note on ctx.scheduler.runAfter chains).
type JobKind string

const (
	JobKindBatch    JobKind = "batch"
	JobKindRepair   JobKind = "repair"
	JobKindBackfill JobKind = "backfill"
)

// JobStatus is the lifecycle state of a ScheduledJob.
type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// ScheduledJob is a durable, delayed-enqueue row backing one step of a
// worker/repair/backfill chain. The poller picks up rows whose RunAfter
// has elapsed, in ascending RunAfter order.
type ScheduledJob struct {
	ID        string             `json:"id" gorm:"primaryKey;size:36"`
	Kind      JobKind            `json:"kind" gorm:"size:16;index"`
	Payload   datatypes.JSONMap  `json:"payload" gorm:"type:jsonb"`
	RunAfter  time.Time          `json:"runAfter" gorm:"index"`
	Status    JobStatus          `json:"status" gorm:"size:16;index"`
	Attempts  int                `json:"attempts"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (ScheduledJob) TableName() string { return "scheduled_jobs" }
