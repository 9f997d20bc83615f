// Package worker is the Batch Worker (spec.md §4.4): it fetches one page
// of a bill-type listing, assembles every bill on the page, tracks a
// consecutive-failure circuit breaker, and self-schedules the next page
// through the job queue so the chain survives a process restart.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/billsync/ingestcore/internal/assembler"
	"github.com/billsync/ingestcore/internal/config"
	"github.com/billsync/ingestcore/internal/congress"
	"github.com/billsync/ingestcore/internal/jobqueue"
	"github.com/billsync/ingestcore/internal/models"
	"github.com/billsync/ingestcore/internal/store"
)

// Recomputer is implemented by internal/aggregate.Recomputer. The worker
// depends on this narrow interface rather than the aggregate package
// directly, so a stub can stand in for it in tests.
type Recomputer interface {
	Recompute(ctx context.Context, congress int) error
}

// Worker runs one page of one bill-type chain per Batch call.
type Worker struct {
	client     *congress.Client
	store      *store.Store
	queue      *jobqueue.Queue
	assembler  *assembler.Assembler
	recomputer Recomputer
	cfg        config.Config
	log        zerolog.Logger
}

// New constructs a Worker.
func New(client *congress.Client, st *store.Store, q *jobqueue.Queue, asm *assembler.Assembler, rec Recomputer, cfg config.Config, log zerolog.Logger) *Worker {
	return &Worker{client: client, store: st, queue: q, assembler: asm, recomputer: rec, cfg: cfg, log: log}
}

// BatchPayload is the job-queue payload for one page of a worker chain.
type BatchPayload struct {
	SnapshotID   string     `json:"snapshotId"`
	Congress     int        `json:"congress"`
	BillType     string     `json:"billType"`
	Offset       int        `json:"offset"`
	UpdatedSince *time.Time `json:"updatedSince,omitempty"`
	// Running success/failure totals of this chain up to Offset.
	TotalSuccess int `json:"totalSuccess,omitempty"`
	TotalFailed  int `json:"totalFailed,omitempty"`
}

// SyncBillBatch fetches one page of (congress, billType) starting at
// payload.Offset, assembles every bill returned, and either self-schedules
// the next page or closes out the snapshot (spec.md §4.4). An error
// returned here means the page itself could not be listed at all, or the
// next page could not be enqueued — the caller (the job-queue poller)
// marks the job failed without retry.
func (w *Worker) SyncBillBatch(ctx context.Context, payload BatchPayload) error {
	billType := models.BillType(payload.BillType)
	log := w.log.With().Str("snapshot_id", payload.SnapshotID).Int("congress", payload.Congress).
		Str("bill_type", payload.BillType).Int("offset", payload.Offset).Logger()

	page, err := w.client.FetchBillsPage(ctx, payload.Congress, payload.BillType, payload.Offset, w.cfg.BatchSize, payload.UpdatedSince)
	if err != nil {
		log.Error().Err(err).Msg("batch worker: failed to list bills page")
		w.failSnapshot(ctx, payload.SnapshotID, err)
		return fmt.Errorf("worker: list page failed: %w", err)
	}

	consecutiveFailures := 0
	processed, succeeded, failed := 0, 0, 0
	tripped := false

	for _, entry := range page.Bills {
		number, convErr := strconv.Atoi(entry.Number)
		if convErr != nil {
			log.Warn().Str("number", entry.Number).Msg("batch worker: unparseable bill number, skipping")
			continue
		}

		result, asmErr := w.assembler.Assemble(ctx, payload.Congress, billType, number, payload.SnapshotID)
		processed++
		if asmErr != nil || result == nil || !result.Success {
			failed++
			consecutiveFailures++
			if consecutiveFailures >= w.cfg.ConsecutiveFailLimit {
				log.Error().Int("consecutive_failures", consecutiveFailures).Msg("batch worker: consecutive failure limit reached, tripping circuit breaker")
				tripped = true
				break
			}
			continue
		}
		succeeded++
		consecutiveFailures = 0
	}

	nextOffset := payload.Offset + processed
	totalSuccess := payload.TotalSuccess + succeeded
	totalFailed := payload.TotalFailed + failed
	updates := map[string]any{
		"total_processed": nextOffset,
		"total_success":   totalSuccess,
		"total_failed":    totalFailed,
	}
	if err := w.store.UpdateSyncSnapshot(ctx, payload.SnapshotID, updates); err != nil {
		log.Error().Err(err).Msg("batch worker: failed to update snapshot counters")
	}

	if tripped {
		w.failSnapshot(ctx, payload.SnapshotID, fmt.Errorf("consecutive failure limit (%d) reached at offset %d", w.cfg.ConsecutiveFailLimit, payload.Offset))
		return nil
	}

	if len(page.Bills) < w.cfg.BatchSize {
		// Short page: this chain has reached the end of the listing.
		w.completeSnapshot(ctx, payload.SnapshotID, payload.Congress)
		return nil
	}

	next := BatchPayload{
		SnapshotID:   payload.SnapshotID,
		Congress:     payload.Congress,
		BillType:     payload.BillType,
		Offset:       nextOffset,
		UpdatedSince: payload.UpdatedSince,
		TotalSuccess: totalSuccess,
		TotalFailed:  totalFailed,
	}
	if _, err := w.queue.Enqueue(ctx, models.JobKindBatch, next, time.Now().Add(w.cfg.NextPageDelay)); err != nil {
		log.Error().Err(err).Msg("batch worker: failed to self-schedule next page")
		w.failSnapshot(ctx, payload.SnapshotID, err)
		return fmt.Errorf("worker: failed to enqueue next page: %w", err)
	}

	return nil
}

func (w *Worker) completeSnapshot(ctx context.Context, snapshotID string, congressNum int) {
	now := time.Now()
	err := w.store.UpdateSyncSnapshot(ctx, snapshotID, map[string]any{
		"status":       models.SnapshotCompleted,
		"completed_at": &now,
	})
	if err != nil {
		w.log.Error().Err(err).Str("snapshot_id", snapshotID).Msg("batch worker: failed to mark snapshot completed")
	}
	if w.recomputer != nil {
		if err := w.recomputer.Recompute(ctx, congressNum); err != nil {
			w.log.Error().Err(err).Int("congress", congressNum).Msg("batch worker: aggregate recompute failed after chain completion")
		}
	}
}

func (w *Worker) failSnapshot(ctx context.Context, snapshotID string, cause error) {
	now := time.Now()
	err := w.store.UpdateSyncSnapshot(ctx, snapshotID, map[string]any{
		"status":        models.SnapshotFailed,
		"completed_at":  &now,
		"error_details": cause.Error(),
	})
	if err != nil {
		w.log.Error().Err(err).Str("snapshot_id", snapshotID).Msg("batch worker: failed to mark snapshot failed")
	}
}
