// Package jobqueue is the persistent job queue design note §9 calls for:
// a delayed-enqueue row that survives process restart, so a batch that
// schedules a successor and then crashes does not lose the successor. It
// backs the self-scheduling chains of the Batch Worker, Repair Worker, and
// legacy backfill (spec.md §4.4, §4.7).
package jobqueue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/billsync/ingestcore/internal/models"
)

// Queue wraps a *gorm.DB with enqueue/claim/complete operations over the
// scheduled_jobs table.
type Queue struct {
	db *gorm.DB
}

// New wraps an existing *gorm.DB.
func New(db *gorm.DB) *Queue { return &Queue{db: db} }

// Enqueue persists a job due at runAfter. payload is marshaled to JSONB so
// the handler on the other side can decode whatever shape it needs.
func (q *Queue) Enqueue(ctx context.Context, kind models.JobKind, payload any, runAfter time.Time) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	var asMap datatypes.JSONMap
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return "", err
	}

	job := models.ScheduledJob{
		ID:       uuid.NewString(),
		Kind:     kind,
		Payload:  asMap,
		RunAfter: runAfter,
		Status:   models.JobPending,
	}
	if err := q.db.WithContext(ctx).Create(&job).Error; err != nil {
		return "", err
	}
	return job.ID, nil
}

// Due returns up to limit pending jobs whose RunAfter has elapsed, oldest
// first, without claiming them.
func (q *Queue) Due(ctx context.Context, limit int) ([]models.ScheduledJob, error) {
	var jobs []models.ScheduledJob
	err := q.db.WithContext(ctx).
		Where("status = ? AND run_after <= ?", models.JobPending, time.Now()).
		Order("run_after asc").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

// MarkDone marks a job completed so the poller does not pick it up again.
func (q *Queue) MarkDone(ctx context.Context, id string) error {
	return q.db.WithContext(ctx).Model(&models.ScheduledJob{}).Where("id = ?", id).
		Updates(map[string]any{"status": models.JobDone}).Error
}

// MarkFailed records a failed attempt. Jobs are not automatically retried
// by the queue itself — the chain that enqueued the job decides whether
// to enqueue a fresh attempt (spec.md §7's circuit-breaker section: "no
// automatic retry").
func (q *Queue) MarkFailed(ctx context.Context, id string) error {
	return q.db.WithContext(ctx).Model(&models.ScheduledJob{}).Where("id = ?", id).
		Updates(map[string]any{"status": models.JobFailed, "attempts": gorm.Expr("attempts + 1")}).Error
}

// Decode unmarshals a job's JSONB payload into dst.
func Decode(job models.ScheduledJob, dst any) error {
	raw, err := json.Marshal(job.Payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
