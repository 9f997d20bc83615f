package models

import "time"

// SyncType enumerates the kinds of orchestrated runs.
type SyncType string

const (
	SyncTypeIncremental SyncType = "incremental"
	SyncTypeFull        SyncType = "full"
	SyncTypeHistorical  SyncType = "historical"
	SyncTypeRepair      SyncType = "repair"
	SyncTypeBackfill    SyncType = "backfill"
)

// SnapshotStatus is the lifecycle state of a SyncSnapshot.
type SnapshotStatus string

const (
	SnapshotRunning   SnapshotStatus = "running"
	SnapshotCompleted SnapshotStatus = "completed"
	SnapshotFailed    SnapshotStatus = "failed"
)

// SyncSnapshot is one per orchestrated run. A SyncSnapshot owns its
// progress counters; there is no back-reference from Bills. When two
// chains share a snapshot (one per bill type) they each write their own
// absolute, offset-derived counts, never deltas, so concurrent updates
// from overlapping chains are additive-safe (spec.md §5).
type SyncSnapshot struct {
	ID       string         `json:"id" gorm:"primaryKey;size:36"`
	SyncType SyncType       `json:"syncType" gorm:"size:16"`
	Congress int            `json:"congress" gorm:"index"`
	Status   SnapshotStatus `json:"status" gorm:"size:16;index"`

	StartedAt     time.Time  `json:"startedAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	TotalProcessed int       `json:"totalProcessed"`
	TotalSuccess   int       `json:"totalSuccess"`
	TotalFailed    int       `json:"totalFailed"`
	ErrorDetails   string     `json:"errorDetails,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (SyncSnapshot) TableName() string { return "sync_snapshots" }
