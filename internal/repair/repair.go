// Package repair implements the Repair Worker and the one-time legacy
// backfill (spec.md §4.7): the Repair Worker re-runs the full Assembler for
// an incomplete bill, so all five sub-endpoints are fetched again, not only
// the missing ones; the legacy backfill computes a
// bill's bitmask purely from which child rows already exist, with no HTTP
// calls at all, for bills ingested before syncedEndpoints existed.
package repair

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/billsync/ingestcore/internal/assembler"
	"github.com/billsync/ingestcore/internal/bitmask"
	"github.com/billsync/ingestcore/internal/config"
	"github.com/billsync/ingestcore/internal/jobqueue"
	"github.com/billsync/ingestcore/internal/models"
	"github.com/billsync/ingestcore/internal/store"
)

// Worker re-fetches missing sub-endpoints for incomplete bills and runs
// the legacy bitmask backfill.
type Worker struct {
	store     *store.Store
	queue     *jobqueue.Queue
	assembler *assembler.Assembler
	cfg       config.Config
	log       zerolog.Logger
}

// New constructs a repair Worker.
func New(st *store.Store, q *jobqueue.Queue, asm *assembler.Assembler, cfg config.Config, log zerolog.Logger) *Worker {
	return &Worker{store: st, queue: q, assembler: asm, cfg: cfg, log: log}
}

// RepairPayload is the job-queue payload for one repair page.
type RepairPayload struct {
	Congress *int `json:"congress,omitempty"`
	Cursor   int  `json:"cursor"`
}

// RepairIncompleteBills selects up to RepairPageSize bills whose
// syncedEndpoints is below complete, re-runs the Assembler against each
// (which fetches all five sub-endpoints again, including those already
// stored; upserts are idempotent, so only what was missing changes), and
// self-schedules the next page via the job queue (spec.md §4.7).
func (w *Worker) RepairIncompleteBills(ctx context.Context, payload RepairPayload) error {
	log := w.log.With().Str("component", "repair").Logger()
	if payload.Congress != nil {
		log = log.With().Int("congress", *payload.Congress).Logger()
	}

	bills, err := w.store.BillsMissingEndpoints(ctx, payload.Congress, w.cfg.RepairPageSize)
	if err != nil {
		return fmt.Errorf("repair: failed to select incomplete bills: %w", err)
	}
	if len(bills) == 0 {
		log.Info().Msg("repair: no incomplete bills remaining, chain complete")
		return nil
	}

	consecutiveFailures := 0
	for _, bill := range bills {
		result, asmErr := w.assembler.Assemble(ctx, bill.Congress, bill.BillType, bill.BillNumber, "")
		if asmErr != nil || result == nil || !result.Success {
			consecutiveFailures++
			log.Warn().Str("bill_id", bill.BillID).Msg("repair: re-assembly failed")
			if consecutiveFailures >= w.cfg.ConsecutiveFailLimit {
				log.Error().Int("consecutive_failures", consecutiveFailures).Msg("repair: consecutive failure limit reached, halting chain")
				return fmt.Errorf("repair: consecutive failure limit (%d) reached", w.cfg.ConsecutiveFailLimit)
			}
			continue
		}
		consecutiveFailures = 0
	}

	next := RepairPayload{Congress: payload.Congress, Cursor: payload.Cursor + len(bills)}
	if _, err := w.queue.Enqueue(ctx, models.JobKindRepair, next, time.Now().Add(w.cfg.RepairDelay)); err != nil {
		return fmt.Errorf("repair: failed to self-schedule next page: %w", err)
	}
	return nil
}

// BackfillPayload is the job-queue payload for one legacy-backfill page.
type BackfillPayload struct {
	Offset int `json:"offset"`
}

// BackfillSyncStatus is the one-time legacy migration (spec.md §4.7): it
// walks every Bill whose syncedEndpoints is still the legacy zero value,
// computes a bitmask purely from which child rows exist (no HTTP calls),
// and writes it back. It self-schedules in BackfillPageSize pages with no
// failure breaker, since there is nothing that can fail here but the
// store itself.
func (w *Worker) BackfillSyncStatus(ctx context.Context, payload BackfillPayload) error {
	log := w.log.With().Str("component", "backfill").Int("offset", payload.Offset).Logger()

	var bills []models.Bill
	err := w.store.DB().WithContext(ctx).Where("synced_endpoints = ?", 0).
		Order("last_sync_attempt asc").Limit(w.cfg.BackfillPageSize).Find(&bills).Error
	if err != nil {
		return fmt.Errorf("backfill: failed to select bills: %w", err)
	}
	if len(bills) == 0 {
		log.Info().Msg("backfill: no legacy bills remaining, chain complete")
		return nil
	}

	for _, bill := range bills {
		hasActions, _ := w.store.HasActions(ctx, bill.BillID)
		hasSubject, _ := w.store.HasSubject(ctx, bill.BillID)
		hasSummary, _ := w.store.HasSummary(ctx, bill.BillID)
		hasText, _ := w.store.HasText(ctx, bill.BillID)

		mask := bitmask.FromChildPresence(hasActions, hasSubject, hasSummary, hasText)
		if err := w.store.UpdateBillSyncStatus(ctx, bill.BillID, mask, bill.LastSyncAttempt); err != nil {
			log.Error().Err(err).Str("bill_id", bill.BillID).Msg("backfill: failed to write computed bitmask")
		}
	}

	next := BackfillPayload{Offset: payload.Offset + len(bills)}
	if _, err := w.queue.Enqueue(ctx, models.JobKindBackfill, next, time.Now().Add(w.cfg.BackfillDelay)); err != nil {
		return fmt.Errorf("backfill: failed to self-schedule next page: %w", err)
	}
	return nil
}
